package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/UniFlow-2025/enrollment-service/internal/services"
	"github.com/UniFlow-2025/enrollment-service/internal/utils"
)

type EnrollmentHandler struct {
	BaseHandler
	enrollmentService services.EnrollmentService
	exportService     services.ExportService
}

func NewEnrollmentHandler(enrollmentService services.EnrollmentService, exportService services.ExportService, logger utils.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		enrollmentService: enrollmentService,
		exportService:     exportService,
	}
}

// Enroll enrolls the signed-in student into a course
// @Summary Enroll in course
// @Tags enrollments
// @Accept json
// @Produce json
// @Param enrollment body services.EnrollRequest true "Course to enroll into"
// @Success 201 {object} models.Enrollment
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	accountID, err := GetAccountIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
		return
	}

	var req services.EnrollRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Enrolling", "account_id", accountID, "course_id", req.CourseID)

	enrollment, err := h.enrollmentService.Enroll(c.Request.Context(), accountID, req.CourseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if wantsHTML(c) {
		setFlashMessage(c, "You are enrolled in "+enrollment.Course.Title+".")
		c.Redirect(http.StatusSeeOther, "/dashboard/student")
		return
	}
	c.JSON(http.StatusCreated, enrollment)
}

// EnrollOnBehalf enrolls a named student, for staff
// @Summary Enroll a student
// @Tags enrollments
// @Accept json
// @Produce json
// @Param student_id path uint true "Student account ID"
// @Param enrollment body services.EnrollRequest true "Course to enroll into"
// @Success 201 {object} models.Enrollment
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /enrollments/{student_id} [post]
func (h *EnrollmentHandler) EnrollOnBehalf(c *gin.Context) {
	studentID := h.parseIDParam(c, "student_id")
	if studentID == 0 {
		return
	}

	var req services.EnrollRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Enrolling on behalf", "student_id", studentID, "course_id", req.CourseID)

	enrollment, err := h.enrollmentService.Enroll(c.Request.Context(), studentID, req.CourseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, enrollment)
}

// ListOwn lists the signed-in account's enrollments
// @Summary Own enrollments
// @Tags enrollments
// @Produce json
// @Success 200 {array} models.Enrollment
// @Router /enrollments [get]
func (h *EnrollmentHandler) ListOwn(c *gin.Context) {
	accountID, err := GetAccountIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
		return
	}

	enrollments, err := h.enrollmentService.ListForAccount(c.Request.Context(), accountID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, enrollments)
}

// ManageCourse shows the roster management view for a course
// @Summary Course roster
// @Tags courses
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} services.CourseRosterResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/manage [get]
func (h *EnrollmentHandler) ManageCourse(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}
	accountID, err := GetAccountIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
		return
	}

	roster, err := h.enrollmentService.GetCourseRoster(c.Request.Context(), accountID, courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, roster)
}

// RecordGrade records a grade for one student on the course
// @Summary Record grade
// @Tags courses
// @Accept json
// @Produce json
// @Param id path uint true "Course ID"
// @Param grade body services.GradeRequest true "Student and grade"
// @Success 200 {object} models.Enrollment
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id}/manage/grade [post]
func (h *EnrollmentHandler) RecordGrade(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}
	accountID, err := GetAccountIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
		return
	}

	var req services.GradeRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	enrollment, err := h.enrollmentService.RecordGrade(c.Request.Context(), accountID, courseID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if wantsHTML(c) {
		c.Redirect(http.StatusSeeOther, fmt.Sprintf("/courses/%d/manage", courseID))
		return
	}
	c.JSON(http.StatusOK, enrollment)
}

// UpdateStatus moves one enrollment through the status transition table
// @Summary Update enrollment status
// @Tags courses
// @Accept json
// @Produce json
// @Param id path uint true "Course ID"
// @Param status body services.StatusUpdateRequest true "Student and new status"
// @Success 200 {object} models.Enrollment
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /courses/{id}/manage/status [post]
func (h *EnrollmentHandler) UpdateStatus(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}
	accountID, err := GetAccountIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
		return
	}

	var req services.StatusUpdateRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	enrollment, err := h.enrollmentService.UpdateStatus(c.Request.Context(), accountID, courseID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if wantsHTML(c) {
		c.Redirect(http.StatusSeeOther, fmt.Sprintf("/courses/%d/manage", courseID))
		return
	}
	c.JSON(http.StatusOK, enrollment)
}

// ExportRoster downloads the roster as an xlsx workbook
// @Summary Export course roster
// @Tags courses
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path uint true "Course ID"
// @Success 200 {file} binary
// @Failure 403 {object} ErrorResponse
// @Router /courses/{id}/manage/export [get]
func (h *EnrollmentHandler) ExportRoster(c *gin.Context) {
	courseID := h.parseIDParam(c, "id")
	if courseID == 0 {
		return
	}
	accountID, err := GetAccountIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
		return
	}

	filename := fmt.Sprintf("roster-course-%d-%s.xlsx", courseID, time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := h.exportService.ExportCourseRoster(c.Request.Context(), accountID, courseID, c.Writer); err != nil {
		// Headers may already be written; log and fall back to the error path
		// only if nothing was streamed yet.
		if !c.Writer.Written() {
			c.Header("Content-Disposition", "")
			c.Header("Content-Type", "application/json")
			h.handleServiceError(c, err)
			return
		}
		h.LogError(c, err, "roster export failed mid-stream", "course_id", courseID)
	}
}
