package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"returns-backend/internal/domains/returns/model"
	"returns-backend/internal/domains/returns/service"
	"returns-backend/internal/shared"
	res "returns-backend/internal/shared/response"
)

type ReturnHandler struct {
	returnService service.ReturnService
}

func NewReturnHandler(returnService service.ReturnService) *ReturnHandler {
	return &ReturnHandler{returnService: returnService}
}

// =====================================================
// ADMIN ENDPOINTS
// =====================================================

// ListByOrder lists return requests of an order
// GET /api/v1/admin/orders/:orderId/returns?status=&from=&to=&search=&page=&limit=
func (h *ReturnHandler) ListByOrder(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		res.Unauthorized(c, "Unauthorized")
		return
	}

	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		res.BadRequest(c, "Invalid order ID", nil)
		return
	}

	var q model.ListReturnsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		res.BadRequest(c, "Invalid query parameters", err.Error())
		return
	}
	if err := q.Validate(); err != nil {
		res.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err)
		return
	}

	list, total, err := h.returnService.ListByOrder(c.Request.Context(), orderID, q, actor)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	res.SuccessWithMeta(c, http.StatusOK, list, res.NewMeta(q.Page, q.Limit, total))
}

// GetDetail gets a return request with media, matched items and refund estimate
// GET /api/v1/admin/returns/:id, GET /api/v1/returns/:id
func (h *ReturnHandler) GetDetail(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		res.Unauthorized(c, "Unauthorized")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		res.BadRequest(c, "Invalid return request ID", nil)
		return
	}

	detail, err := h.returnService.GetDetail(c.Request.Context(), id, actor)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	res.Success(c, http.StatusOK, "Success", detail)
}

// UpdateStatus transitions a return request
// PUT /api/v1/admin/returns/:id/status
func (h *ReturnHandler) UpdateStatus(c *gin.Context) {
	// Step 1: Actor + ID
	actor, ok := actorFrom(c)
	if !ok {
		res.Unauthorized(c, "Unauthorized")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		res.BadRequest(c, "Invalid return request ID", nil)
		return
	}

	// Step 2: Bind + validate
	var req model.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		res.BadRequest(c, "Invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		res.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err)
		return
	}

	// Step 3: Transition
	updated, err := h.returnService.Transition(c.Request.Context(), id, req, actor)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	res.Success(c, http.StatusOK, "Return request updated", updated)
}

// =====================================================
// CUSTOMER ENDPOINTS
// =====================================================

// Create creates a return request for an order
// POST /api/v1/orders/:orderId/returns
func (h *ReturnHandler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		res.Unauthorized(c, "Unauthorized")
		return
	}

	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		res.BadRequest(c, "Invalid order ID", nil)
		return
	}

	var req model.CreateReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		res.BadRequest(c, "Invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		res.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err)
		return
	}

	created, err := h.returnService.Create(c.Request.Context(), orderID, req, actor)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	res.Success(c, http.StatusCreated, "Return request created", created)
}

// ChooseMethod - khách chọn awaiting_pickup / pickup_booked
// PUT /api/v1/returns/:id/method
func (h *ReturnHandler) ChooseMethod(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		res.Unauthorized(c, "Unauthorized")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		res.BadRequest(c, "Invalid return request ID", nil)
		return
	}

	var req model.ChooseMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		res.BadRequest(c, "Invalid request body", err.Error())
		return
	}

	updated, err := h.returnService.ChooseMethod(c.Request.Context(), id, req, actor)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	res.Success(c, http.StatusOK, "Return method updated", updated)
}

// Cancel
// POST /api/v1/returns/:id/cancel
func (h *ReturnHandler) Cancel(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		res.Unauthorized(c, "Unauthorized")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		res.BadRequest(c, "Invalid return request ID", nil)
		return
	}

	updated, err := h.returnService.Cancel(c.Request.Context(), id, actor)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	res.Success(c, http.StatusOK, "Return request cancelled", updated)
}

// =====================================================
// HELPERS
// =====================================================

func actorFrom(c *gin.Context) (model.Actor, bool) {
	raw, exists := c.Get(shared.CtxUserID)
	if !exists {
		return model.Actor{}, false
	}
	userID, ok := raw.(uuid.UUID)
	if !ok {
		return model.Actor{}, false
	}
	return model.Actor{ID: userID, Role: c.GetString(shared.CtxRole)}, true
}

func handleServiceError(c *gin.Context, err error) {
	status, code := res.StatusFromError(err)
	var details interface{}

	var trErr *model.TransitionError
	var retErr *model.ReturnError
	switch {
	case errors.As(err, &trErr):
		details = gin.H{"current_status": trErr.From, "requested_status": trErr.To}
	case errors.As(err, &retErr):
		code = retErr.Code
	}

	if status == http.StatusInternalServerError {
		c.Error(err)
		res.InternalServerError(c, "Internal server error")
		return
	}

	res.ErrorWithDetails(c, status, code, err.Error(), details)
}
