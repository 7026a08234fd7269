package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/UniFlow-2025/enrollment-service/internal/services"
	"github.com/UniFlow-2025/enrollment-service/internal/utils"
	"github.com/UniFlow-2025/enrollment-service/internal/validator"
)

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Message string                      `json:"message"`
	Details string                      `json:"details,omitempty"`
	Fields  validator.ValidationErrors  `json:"fields,omitempty"`
}

// SuccessResponse wraps successful payloads that carry no natural top level.
type SuccessResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler carries the logging and error translation shared by all
// handlers.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...interface{}) {
	utils.FromContext(c.Request.Context(), h.logger).Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...interface{}) {
	utils.FromContext(c.Request.Context(), h.logger).Error(msg, append(args, "error", err)...)
}

// parseIDParam parses a numeric path parameter; on failure it writes the 400
// response and returns 0.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) uint {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name + " parameter",
			Details: raw,
		})
		return 0
	}
	return uint(id)
}

// wantsHTML reports whether the client is a browser form submission rather
// than an API consumer.
func wantsHTML(c *gin.Context) bool {
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "text/html")
}

// handleServiceError maps service-layer errors onto HTTP semantics. Permission
// failures from browser flows bounce the user to their own profile instead of
// rendering a denial page.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Fields:  verrs,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid credentials"})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
	case errors.Is(err, services.ErrForbidden):
		if wantsHTML(c) {
			setFlashMessage(c, "You do not have access to that page.")
			c.Redirect(http.StatusSeeOther, "/profile")
			return
		}
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Forbidden", Details: err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Message: err.Error()})
	default:
		h.LogError(c, err, "unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error"})
	}
}
