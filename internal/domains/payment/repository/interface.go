package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"returns-backend/internal/domains/payment/model"
)

// =====================================================
// REFUND REQUEST REPOSITORY INTERFACE
// =====================================================
type RefundRepoInterface interface {
	// ============================================
	// TRANSACTION-AWARE METHODS
	// ============================================

	// CreateWithTx: unique(return_request_id) đảm bảo tối đa một refund cho mỗi return
	CreateWithTx(ctx context.Context, tx pgx.Tx, refund *model.RefundRequest) error

	// GetByIDForUpdate lock row refund_requests
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.RefundRequest, error)

	// UpdateStatusWithTx chỉ đổi status và note (không chạm amount / gateway id)
	UpdateStatusWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string, note *string) error

	// MarkRefundedWithTx ghi gateway transaction id (nil → NULL) + refunded_at.
	// Chỉ update row còn pending
	MarkRefundedWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, gatewayTxnID *string, refundedAt time.Time, note *string) error

	ExistsForReturnWithTx(ctx context.Context, tx pgx.Tx, returnRequestID uuid.UUID) (bool, error)

	// ============================================
	// STANDALONE METHODS
	// ============================================

	GetByID(ctx context.Context, id uuid.UUID) (*model.RefundRequest, error)

	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*model.RefundRequest, error)
}
