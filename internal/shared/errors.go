package shared

import "errors"

// =====================================================
// ERROR KINDS
// =====================================================
// Các domain error wrap một trong những sentinel này để handler
// map sang HTTP status bằng errors.Is
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrInvalidState        = errors.New("invalid state")
	ErrMissingProviderData = errors.New("missing provider data")
	ErrGateway             = errors.New("payment gateway error")
	ErrForeignKeyConflict  = errors.New("foreign key conflict")
	ErrForbidden           = errors.New("forbidden")
	ErrValidation          = errors.New("validation failed")
)
