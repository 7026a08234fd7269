package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/UniFlow-2025/enrollment-service/internal/services"
	"github.com/UniFlow-2025/enrollment-service/internal/utils"
)

type DashboardHandler struct {
	BaseHandler
	dashboardService services.DashboardService
}

func NewDashboardHandler(dashboardService services.DashboardService, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler:      NewBaseHandler(logger),
		dashboardService: dashboardService,
	}
}

// Landing serves the public landing page data
// @Summary Landing page stats
// @Tags dashboard
// @Produce json
// @Success 200 {object} repositories.LandingStats
// @Router / [get]
func (h *DashboardHandler) Landing(c *gin.Context) {
	stats, err := h.dashboardService.GetLandingStats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// About serves the static about page data
// @Summary About page
// @Tags dashboard
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /about [get]
func (h *DashboardHandler) About(c *gin.Context) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: gin.H{
			"name":        "UniFlow Enrollment",
			"description": "Course enrollment management for students, teachers and administrators.",
		},
	})
}

// StudentDashboard shows the signed-in student's enrollments
// @Summary Student dashboard
// @Tags dashboard
// @Produce json
// @Success 200 {object} services.StudentDashboardResponse
// @Failure 401 {object} ErrorResponse
// @Router /dashboard/student [get]
func (h *DashboardHandler) StudentDashboard(c *gin.Context) {
	accountID, err := GetAccountIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
		return
	}

	resp, err := h.dashboardService.GetStudentDashboard(c.Request.Context(), accountID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// TeacherDashboard shows the signed-in teacher's courses with enrollment stats
// @Summary Teacher dashboard
// @Tags dashboard
// @Produce json
// @Success 200 {object} services.TeacherDashboardResponse
// @Failure 403 {object} ErrorResponse
// @Router /dashboard/teacher [get]
func (h *DashboardHandler) TeacherDashboard(c *gin.Context) {
	accountID, err := GetAccountIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
		return
	}

	resp, err := h.dashboardService.GetTeacherDashboard(c.Request.Context(), accountID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AdminDashboard shows system-wide counts and recent registrations
// @Summary Admin dashboard
// @Tags dashboard
// @Produce json
// @Success 200 {object} services.AdminDashboardResponse
// @Failure 403 {object} ErrorResponse
// @Router /dashboard/admin [get]
func (h *DashboardHandler) AdminDashboard(c *gin.Context) {
	resp, err := h.dashboardService.GetAdminDashboard(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
