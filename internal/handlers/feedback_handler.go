package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/UniFlow-2025/enrollment-service/internal/services"
	"github.com/UniFlow-2025/enrollment-service/internal/utils"
)

type FeedbackHandler struct {
	BaseHandler
	feedbackService services.FeedbackService
}

func NewFeedbackHandler(feedbackService services.FeedbackService, logger utils.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		BaseHandler:     NewBaseHandler(logger),
		feedbackService: feedbackService,
	}
}

// Submit accepts the public contact form
// @Summary Submit feedback
// @Description Validates the form and parks it for the one-shot success page
// @Tags feedback
// @Accept json
// @Produce json
// @Param feedback body services.FeedbackRequest true "Contact form"
// @Success 201 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /feedback [post]
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req services.FeedbackRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	token := uuid.New().String()
	if err := h.feedbackService.Submit(c.Request.Context(), token, &req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	if wantsHTML(c) {
		c.Redirect(http.StatusSeeOther, "/feedback/success?token="+token)
		return
	}
	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Feedback received",
		Data:    gin.H{"token": token},
	})
}

// Success shows the submitted form exactly once
// @Summary Feedback success page
// @Tags feedback
// @Produce json
// @Param token query string true "Submission token"
// @Success 200 {object} services.FeedbackRequest
// @Failure 404 {object} ErrorResponse
// @Router /feedback/success [get]
func (h *FeedbackHandler) Success(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Missing token parameter"})
		return
	}

	submission, err := h.feedbackService.TakeSubmission(c.Request.Context(), token)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, submission)
}
