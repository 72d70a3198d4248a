package model

import (
	"fmt"

	"github.com/google/uuid"

	"returns-backend/internal/shared"
)

// =====================================================
// CUSTOM ERROR TYPE
// =====================================================
type PaymentError struct {
	Code    string
	Message string
	Err     error
}

func (e *PaymentError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

func NewPaymentError(code, message string, err error) *PaymentError {
	return &PaymentError{Code: code, Message: message, Err: err}
}

func NewRefundNotFound(id uuid.UUID) *PaymentError {
	// Refund không tồn tại được coi là InvalidState ở tầng orchestrator
	return NewPaymentError(ErrCodeRefundNotFound, fmt.Sprintf("refund request %s not found", id), shared.ErrInvalidState)
}

func NewRefundFinalized(id uuid.UUID) *PaymentError {
	return NewPaymentError(ErrCodeRefundFinalized, fmt.Sprintf("refund request %s already finalized", id), shared.ErrInvalidState)
}

func NewUnsupportedProvider(provider string) *PaymentError {
	return NewPaymentError(ErrCodeUnsupportedProvider, fmt.Sprintf("provider %q does not support refunds", provider), shared.ErrMissingProviderData)
}

// =====================================================
// MISSING PROVIDER DATA
// =====================================================
type MissingProviderDataError struct {
	Provider string
	Field    string
}

func (e *MissingProviderDataError) Error() string {
	return fmt.Sprintf("order is missing %s required by %s refund", e.Field, e.Provider)
}

func (e *MissingProviderDataError) Unwrap() error {
	return shared.ErrMissingProviderData
}

// =====================================================
// GATEWAY ERROR
// =====================================================
// GatewayError giữ raw response của provider để operator xem và quyết định retry
type GatewayError struct {
	Provider    string
	ErrorCode   string // PAY015 timeout, PAY016 còn lại
	Code        string // provider response code nếu có
	RawResponse string
	Err         error
}

func (e *GatewayError) Error() string {
	msg := fmt.Sprintf("%s refund failed", e.Provider)
	if e.Code != "" {
		msg += " (code " + e.Code + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is cho phép errors.Is(err, shared.ErrGateway) trong khi Unwrap vẫn trả lỗi gốc
// (ví dụ context.DeadlineExceeded)
func (e *GatewayError) Is(target error) bool {
	return target == shared.ErrGateway
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
