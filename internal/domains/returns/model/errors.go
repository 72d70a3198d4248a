package model

import (
	"fmt"

	"github.com/google/uuid"

	"returns-backend/internal/shared"
)

// =====================================================
// CUSTOM ERROR CODES
// =====================================================
const (
	ErrCodeReturnNotFound     = "RET001"
	ErrCodeInvalidTransition  = "RET002"
	ErrCodeNotOwner           = "RET003"
	ErrCodeQuantityExceeded   = "RET004"
	ErrCodeSkuNotInOrder      = "RET005"
	ErrCodeOrderNotReturnable = "RET006"
	ErrCodeRefundExists       = "RET007"
	ErrCodeDeadlinePassed     = "RET008"
)

// =====================================================
// CUSTOM ERROR TYPE
// =====================================================
type ReturnError struct {
	Code    string
	Message string
	Err     error
}

func (e *ReturnError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ReturnError) Unwrap() error {
	return e.Err
}

func NewReturnError(code, message string, err error) *ReturnError {
	return &ReturnError{Code: code, Message: message, Err: err}
}

func NewReturnNotFound(id uuid.UUID) *ReturnError {
	return NewReturnError(ErrCodeReturnNotFound, fmt.Sprintf("return request %s", id), shared.ErrNotFound)
}

// TransitionError mang theo trạng thái hiện tại và trạng thái yêu cầu
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition return request from %q to %q", e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return shared.ErrInvalidTransition
}
