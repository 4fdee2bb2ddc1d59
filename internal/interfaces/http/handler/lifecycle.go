package handler

import (
	"context"

	appshipping "github.com/erp/carrier-transport/internal/application/shipping"
	"github.com/erp/carrier-transport/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// LifecycleProcessor handles infrastructure lifecycle requests
type LifecycleProcessor interface {
	HandleLifecycle(ctx context.Context, req appshipping.LifecycleRequest) (*appshipping.ProvisionResult, error)
}

// LifecycleHandler provisions the carrier record on deployment
type LifecycleHandler struct {
	BaseHandler
	processor LifecycleProcessor
}

// NewLifecycleHandler creates a new LifecycleHandler
func NewLifecycleHandler(processor LifecycleProcessor) *LifecycleHandler {
	return &LifecycleHandler{processor: processor}
}

// RegisterRoutes registers the lifecycle routes
func (h *LifecycleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/lifecycle", h.HandleLifecycle)
}

// HandleLifecycle handles POST /lifecycle. A failed provisioning is reported in
// the result's reason; only a failure to report back is an error.
func (h *LifecycleHandler) HandleLifecycle(c *gin.Context) {
	var req appshipping.LifecycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, dto.ErrCodeInvalidJSON, err.Error())
		return
	}
	switch req.RequestType {
	case appshipping.LifecycleCreate, appshipping.LifecycleUpdate, appshipping.LifecycleDelete:
	default:
		h.BadRequest(c, dto.ErrCodeValidation, "unknown RequestType "+string(req.RequestType))
		return
	}

	result, err := h.processor.HandleLifecycle(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
