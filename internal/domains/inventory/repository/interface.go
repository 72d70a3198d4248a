package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"returns-backend/internal/domains/inventory/model"
)

// RepositoryInterface định nghĩa các thao tác trên skus / flash_sale_items
// Counter chỉ được thay đổi bằng atomic increment, không read-modify-write
type RepositoryInterface interface {
	// IncrementSkuStockWithTx: UPDATE skus SET stock = stock + qty
	// Trả NotFound nếu không có row nào bị ảnh hưởng
	IncrementSkuStockWithTx(ctx context.Context, tx pgx.Tx, skuID uuid.UUID, qty int) error

	// IncrementFlashSaleQuantityWithTx: UPDATE flash_sale_items SET quantity = quantity + qty
	IncrementFlashSaleQuantityWithTx(ctx context.Context, tx pgx.Tx, flashSaleItemID uuid.UUID, qty int) error

	GetSku(ctx context.Context, skuID uuid.UUID) (*model.Sku, error)
	ListSkus(ctx context.Context, skuIDs []uuid.UUID) ([]model.Sku, error)
}
