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
	ErrCodeOrderNotFound = "ORD001"
	ErrCodeUnauthorized  = "ORD014"
)

// =====================================================
// CUSTOM ERROR TYPE
// =====================================================
type OrderError struct {
	Code    string
	Message string
	Err     error
}

func (e *OrderError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *OrderError) Unwrap() error {
	return e.Err
}

// NewOrderError creates a new OrderError
func NewOrderError(code, message string, err error) *OrderError {
	return &OrderError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewOrderNotFound(id uuid.UUID) *OrderError {
	return NewOrderError(ErrCodeOrderNotFound, fmt.Sprintf("order %s", id), shared.ErrNotFound)
}
