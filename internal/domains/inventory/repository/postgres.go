package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"returns-backend/internal/domains/inventory/model"
)

// postgresRepository implements RepositoryInterface
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) IncrementSkuStockWithTx(ctx context.Context, tx pgx.Tx, skuID uuid.UUID, qty int) error {
	// Không filter theo status: sku archived vẫn nhận lại hàng trả
	query := `
		UPDATE skus
		SET stock = stock + $1, updated_at = NOW()
		WHERE id = $2
	`

	tag, err := tx.Exec(ctx, query, qty, skuID)
	if err != nil {
		return fmt.Errorf("increment sku stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewSkuNotFound(skuID)
	}

	return nil
}

func (r *postgresRepository) IncrementFlashSaleQuantityWithTx(ctx context.Context, tx pgx.Tx, flashSaleItemID uuid.UUID, qty int) error {
	query := `
		UPDATE flash_sale_items
		SET quantity = quantity + $1, updated_at = NOW()
		WHERE id = $2
	`

	tag, err := tx.Exec(ctx, query, qty, flashSaleItemID)
	if err != nil {
		return fmt.Errorf("increment flash sale quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewFlashSaleNotFound(flashSaleItemID)
	}

	return nil
}

func (r *postgresRepository) GetSku(ctx context.Context, skuID uuid.UUID) (*model.Sku, error) {
	query := `
		SELECT id, name, stock, status, updated_at
		FROM skus
		WHERE id = $1
	`

	var sku model.Sku
	err := r.pool.QueryRow(ctx, query, skuID).Scan(
		&sku.ID, &sku.Name, &sku.Stock, &sku.Status, &sku.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.NewSkuNotFound(skuID)
	}
	if err != nil {
		return nil, fmt.Errorf("get sku: %w", err)
	}

	return &sku, nil
}

func (r *postgresRepository) ListSkus(ctx context.Context, skuIDs []uuid.UUID) ([]model.Sku, error) {
	if len(skuIDs) == 0 {
		return []model.Sku{}, nil
	}

	query := `
		SELECT id, name, stock, status, updated_at
		FROM skus
		WHERE id = ANY($1)
	`

	rows, err := r.pool.Query(ctx, query, skuIDs)
	if err != nil {
		return nil, fmt.Errorf("list skus: %w", err)
	}
	defer rows.Close()

	skus := make([]model.Sku, 0, len(skuIDs))
	for rows.Next() {
		var sku model.Sku
		if err := rows.Scan(&sku.ID, &sku.Name, &sku.Stock, &sku.Status, &sku.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan sku: %w", err)
		}
		skus = append(skus, sku)
	}

	return skus, rows.Err()
}
