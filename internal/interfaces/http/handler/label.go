package handler

import (
	"errors"
	"net/http"

	appshipping "github.com/erp/carrier-transport/internal/application/shipping"
	"github.com/erp/carrier-transport/internal/infrastructure/event"
	"github.com/erp/carrier-transport/internal/infrastructure/logger"
	"github.com/erp/carrier-transport/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// CompletionMarker is returned once a label request has been handled
const CompletionMarker = "done"

// LabelHandler accepts shipping label request events
type LabelHandler struct {
	BaseHandler
	requester appshipping.LabelRequester
}

// NewLabelHandler creates a new LabelHandler
func NewLabelHandler(requester appshipping.LabelRequester) *LabelHandler {
	return &LabelHandler{requester: requester}
}

// LabelRequestResponse is the body of a handled label request
type LabelRequestResponse struct {
	Status string                   `json:"status"`
	Result *appshipping.LabelResult `json:"result"`
}

// RegisterRoutes registers the label request routes
func (h *LabelHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/events/shipping-label-requests", h.RequestLabels)
}

// RequestLabels handles POST /events/shipping-label-requests.
// The body is the event envelope; a rejected shipment is still a 200.
func (h *LabelHandler) RequestLabels(c *gin.Context) {
	var env event.Envelope
	if err := c.ShouldBindJSON(&env); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, err.Error())
			return
		}
		h.BadRequest(c, dto.ErrCodeInvalidJSON, err.Error())
		return
	}
	if err := env.Validate(); err != nil {
		h.BadRequest(c, dto.ErrCodeValidation, err.Error())
		return
	}

	req := env.Detail.LabelRequest()
	ctx, _ := logger.WithLabelRequest(c.Request.Context(), logger.GetGinLogger(c), req.EventID, req.ShipmentID)

	result, err := h.requester.RequestLabels(ctx, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, LabelRequestResponse{Status: CompletionMarker, Result: result})
}
