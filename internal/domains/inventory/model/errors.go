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
	ErrCodeSkuNotFound       = "INV001"
	ErrCodeFlashSaleNotFound = "INV002"
	ErrCodeInvalidQuantity   = "INV003"
)

// =====================================================
// CUSTOM ERROR TYPE
// =====================================================
type InventoryError struct {
	Code    string
	Message string
	Err     error
}

func (e *InventoryError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *InventoryError) Unwrap() error {
	return e.Err
}

func NewSkuNotFound(id uuid.UUID) *InventoryError {
	return &InventoryError{
		Code:    ErrCodeSkuNotFound,
		Message: fmt.Sprintf("sku %s", id),
		Err:     shared.ErrNotFound,
	}
}

func NewFlashSaleNotFound(id uuid.UUID) *InventoryError {
	return &InventoryError{
		Code:    ErrCodeFlashSaleNotFound,
		Message: fmt.Sprintf("flash sale item %s", id),
		Err:     shared.ErrNotFound,
	}
}

func NewInvalidQuantity(skuID uuid.UUID, qty int) *InventoryError {
	return &InventoryError{
		Code:    ErrCodeInvalidQuantity,
		Message: fmt.Sprintf("restock quantity %d for sku %s", qty, skuID),
		Err:     shared.ErrValidation,
	}
}
