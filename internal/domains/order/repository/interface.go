package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"returns-backend/internal/domains/order/model"
)

// OrderRepository - đọc order/order_items và ghi payment_status
// Các method *WithTx chạy trong transaction của caller
type OrderRepository interface {
	// GetByID trả order kèm Items
	GetByID(ctx context.Context, orderID uuid.UUID) (*model.Order, error)

	// GetByIDWithTx đọc order kèm Items trong tx, không lock
	GetByIDWithTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (*model.Order, error)

	// GetByIDForUpdate đọc và lock row orders (SELECT ... FOR UPDATE)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (*model.Order, error)

	UpdatePaymentStatusWithTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status string) error
}
