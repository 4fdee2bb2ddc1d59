package handler

import (
	"net/http"

	"github.com/erp/carrier-transport/internal/infrastructure/logger"
	"github.com/erp/carrier-transport/internal/interfaces/http/dto"
	"github.com/erp/carrier-transport/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponse(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, code, message string) {
	h.Error(c, http.StatusBadRequest, code, message)
}

// HandleError classifies err and sends the matching error response.
// The error text is passed through; callers are internal systems, not end users.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	code := dto.ErrorCode(err)
	status := dto.GetHTTPStatus(code)

	_ = c.Error(err)
	if status >= http.StatusInternalServerError {
		logger.GetGinLogger(c).Error("request failed", zap.String("code", code), zap.Error(err))
	}
	h.Error(c, status, code, err.Error())
}
