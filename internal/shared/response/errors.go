package response

import (
	"errors"
	"net/http"

	"returns-backend/internal/shared"
)

// StatusFromError map error kind (shared sentinel) sang HTTP status
func StatusFromError(err error) (int, string) {
	switch {
	case errors.Is(err, shared.ErrValidation):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, shared.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, shared.ErrInvalidTransition):
		return http.StatusConflict, "INVALID_TRANSITION"
	case errors.Is(err, shared.ErrInvalidState):
		return http.StatusConflict, "INVALID_STATE"
	case errors.Is(err, shared.ErrMissingProviderData):
		return http.StatusUnprocessableEntity, "MISSING_PROVIDER_DATA"
	case errors.Is(err, shared.ErrGateway):
		return http.StatusBadGateway, "GATEWAY_ERROR"
	case errors.Is(err, shared.ErrForeignKeyConflict):
		return http.StatusConflict, "FOREIGN_KEY_CONFLICT"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
