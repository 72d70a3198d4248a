package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// REFUND REQUEST ENTITY
// =====================================================
type RefundRequest struct {
	ID              uuid.UUID       `json:"id"`
	OrderID         uuid.UUID       `json:"order_id"`
	ReturnRequestID *uuid.UUID      `json:"return_request_id,omitempty"`
	UserID          uuid.UUID       `json:"user_id"`
	Amount          decimal.Decimal `json:"amount"`
	Reason          string          `json:"reason"`
	Status          string          `json:"status"`
	ResponseNote    *string         `json:"response_note,omitempty"`

	// Gateway tracking, bất biến sau khi refunded
	GatewayTransactionID *string    `json:"gateway_transaction_id,omitempty"`
	RefundedAt           *time.Time `json:"refunded_at,omitempty"`
	IdempotencyKey       string     `json:"idempotency_key"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewRefundRequest tạo refund pending với idempotency key riêng
// Key được gửi kèm mọi lần gọi gateway cho refund này
func NewRefundRequest(orderID, userID uuid.UUID, returnRequestID *uuid.UUID, amount decimal.Decimal, reason string, now time.Time) *RefundRequest {
	id := uuid.New()
	return &RefundRequest{
		ID:              id,
		OrderID:         orderID,
		ReturnRequestID: returnRequestID,
		UserID:          userID,
		Amount:          amount,
		Reason:          reason,
		Status:          RefundStatusPending,
		IdempotencyKey:  "rf_" + id.String(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// IsFinalized: refunded và rejected là terminal, không cho phép cập nhật nữa
func (r *RefundRequest) IsFinalized() bool {
	return r.Status == RefundStatusRefunded || r.Status == RefundStatusRejected
}
