package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"returns-backend/internal/domains/order/model"
)

// querier là phần chung của *pgxpool.Pool và pgx.Tx
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type postgresOrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &postgresOrderRepository{pool: pool}
}

const selectOrderColumns = `
	SELECT
		id, order_number, user_id, subtotal, shipping_fee, total,
		payment_method, payment_status, paid_at,
		momo_trans_id, vnpay_transaction_no, zalopay_zp_trans_id,
		zalopay_app_trans_id, stripe_payment_intent_id,
		created_at, updated_at
	FROM orders
	WHERE id = $1
`

// =====================================================
// GET ORDER
// =====================================================

func (r *postgresOrderRepository) GetByID(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	return r.load(ctx, r.pool, selectOrderColumns, orderID)
}

func (r *postgresOrderRepository) GetByIDWithTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (*model.Order, error) {
	return r.load(ctx, tx, selectOrderColumns, orderID)
}

func (r *postgresOrderRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (*model.Order, error) {
	return r.load(ctx, tx, selectOrderColumns+" FOR UPDATE", orderID)
}

func (r *postgresOrderRepository) load(ctx context.Context, q querier, query string, orderID uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := q.QueryRow(ctx, query, orderID).Scan(
		&order.ID,
		&order.OrderNumber,
		&order.UserID,
		&order.Subtotal,
		&order.ShippingFee,
		&order.Total,
		&order.PaymentMethod,
		&order.PaymentStatus,
		&order.PaidAt,
		&order.MomoTransID,
		&order.VNPayTransactionNo,
		&order.ZaloPayZpTransID,
		&order.ZaloPayAppTransID,
		&order.StripePaymentIntentID,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewOrderNotFound(orderID)
		}
		return nil, fmt.Errorf("failed to get order by id: %w", err)
	}

	items, err := r.items(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return &order, nil
}

// =====================================================
// ORDER ITEMS
// =====================================================

func (r *postgresOrderRepository) items(ctx context.Context, q querier, orderID uuid.UUID) ([]model.OrderItem, error) {
	query := `
		SELECT oi.id, oi.order_id, oi.sku_id, COALESCE(s.name, ''), oi.quantity,
		       oi.price, oi.flash_sale_item_id, oi.created_at
		FROM order_items oi
		LEFT JOIN skus s ON s.id = oi.sku_id
		WHERE oi.order_id = $1
		ORDER BY oi.created_at, oi.id
	`

	rows, err := q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(
			&it.ID,
			&it.OrderID,
			&it.SkuID,
			&it.SkuName,
			&it.Quantity,
			&it.Price,
			&it.FlashSaleItemID,
			&it.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, it)
	}

	return items, rows.Err()
}

// =====================================================
// UPDATE PAYMENT STATUS
// =====================================================

func (r *postgresOrderRepository) UpdatePaymentStatusWithTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status string) error {
	query := `
		UPDATE orders
		SET payment_status = $1, updated_at = NOW()
		WHERE id = $2
	`

	tag, err := tx.Exec(ctx, query, status, orderID)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewOrderNotFound(orderID)
	}

	return nil
}
