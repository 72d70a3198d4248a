package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"returns-backend/internal/domains/payment/model"
	"returns-backend/internal/domains/payment/service"
	res "returns-backend/internal/shared/response"
)

type RefundHandler struct {
	refundService service.RefundService
}

// NewRefundHandler creates new refund handler
func NewRefundHandler(refundService service.RefundService) *RefundHandler {
	return &RefundHandler{refundService: refundService}
}

// =====================================================
// ADMIN REFUND ENDPOINTS
// =====================================================

// ListByOrder lists refund requests of an order
// GET /api/v1/admin/orders/:orderId/refunds
func (h *RefundHandler) ListByOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		res.BadRequest(c, "Invalid order ID", nil)
		return
	}

	refunds, err := h.refundService.ListByOrder(c.Request.Context(), orderID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	res.Success(c, http.StatusOK, "Success", refunds)
}

// UpdateStatus issues (or rejects) a refund request
// PUT /api/v1/admin/refunds/:id/status
func (h *RefundHandler) UpdateStatus(c *gin.Context) {
	// Step 1: Parse refund ID
	refundID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		res.BadRequest(c, "Invalid refund ID", nil)
		return
	}

	// Step 2: Bind + validate
	var req model.UpdateRefundStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		res.BadRequest(c, "Invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		res.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err)
		return
	}

	// Step 3: Call service
	refund, err := h.refundService.IssueRefund(c.Request.Context(), refundID, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	res.Success(c, http.StatusOK, "Refund updated", refund)
}

// =====================================================
// ERROR MAPPING
// =====================================================

// handleServiceError: status theo error kind, code + details theo error cụ thể
func handleServiceError(c *gin.Context, err error) {
	status, code := res.StatusFromError(err)
	var details interface{}

	var paymentErr *model.PaymentError
	var missingErr *model.MissingProviderDataError
	var gatewayErr *model.GatewayError

	switch {
	case errors.As(err, &gatewayErr):
		if gatewayErr.ErrorCode != "" {
			code = gatewayErr.ErrorCode
		}
		details = gin.H{
			"provider":      gatewayErr.Provider,
			"provider_code": gatewayErr.Code,
			"raw_response":  gatewayErr.RawResponse,
		}
	case errors.As(err, &missingErr):
		details = gin.H{"provider": missingErr.Provider, "field": missingErr.Field}
	case errors.As(err, &paymentErr):
		code = paymentErr.Code
	}

	if status == http.StatusInternalServerError {
		c.Error(err)
		res.InternalServerError(c, "Internal server error")
		return
	}

	res.ErrorWithDetails(c, status, code, err.Error(), details)
}
