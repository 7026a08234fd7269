package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/UniFlow-2025/enrollment-service/internal/models"
	"github.com/UniFlow-2025/enrollment-service/internal/repositories"
	"github.com/UniFlow-2025/enrollment-service/internal/services"
	"github.com/UniFlow-2025/enrollment-service/internal/utils"
)

// StudentHandler covers the staff-facing account administration views.
type StudentHandler struct {
	BaseHandler
	authService services.AuthService
}

func NewStudentHandler(authService services.AuthService, logger utils.Logger) *StudentHandler {
	return &StudentHandler{
		BaseHandler: NewBaseHandler(logger),
		authService: authService,
	}
}

// ListStudents lists student accounts with search and paging
// @Summary Student list
// @Tags students
// @Produce json
// @Param q query string false "Search in name, username and email"
// @Param faculty query string false "Faculty filter"
// @Success 200 {object} services.AccountListResponse
// @Router /students [get]
func (h *StudentHandler) ListStudents(c *gin.Context) {
	role := models.RoleStudent
	filters := repositories.AccountFilters{
		Query:     c.Query("q"),
		Role:      &role,
		SortBy:    c.DefaultQuery("sort", "last_name"),
		SortOrder: c.DefaultQuery("order", "asc"),
	}
	filters.Limit, filters.Offset = parsePaging(c)

	if raw := c.Query("faculty"); raw != "" {
		faculty := models.Faculty(raw)
		if faculty.Valid() {
			filters.Faculty = &faculty
		}
	}

	list, err := h.authService.ListAccounts(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetStudent shows one account. Staff may view anyone, students only
// themselves.
// @Summary Account detail
// @Tags students
// @Produce json
// @Param id path uint true "Account ID"
// @Success 200 {object} services.AccountResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /students/{id} [get]
func (h *StudentHandler) GetStudent(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	role, _ := GetRoleFromContext(c)
	if role == models.RoleStudent {
		callerID, err := GetAccountIDFromContext(c)
		if err != nil || callerID != id {
			h.handleServiceError(c, services.NewPermissionError(callerID, "account", "view", "not your account"))
			return
		}
	}

	account, err := h.authService.GetAccount(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

// CreateAccount provisions an account with any role
// @Summary Create account
// @Tags students
// @Accept json
// @Produce json
// @Param account body services.RegisterRequest true "Account data"
// @Success 201 {object} services.AccountResponse
// @Failure 400 {object} ErrorResponse
// @Router /students [post]
func (h *StudentHandler) CreateAccount(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Provisioning account", "username", req.Username, "role", req.RoleRequest)

	account, err := h.authService.CreateAccount(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, services.AccountResponse{Account: account, Role: account.Role()})
}

// DeleteAccount removes an account with its profile and enrollments
// @Summary Delete account
// @Tags students
// @Param id path uint true "Account ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /students/{id} [delete]
func (h *StudentHandler) DeleteAccount(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	// Self-deletion through the admin view is almost always a mistake.
	if callerID, err := GetAccountIDFromContext(c); err == nil && callerID == id {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Cannot delete your own account"})
		return
	}

	if err := h.authService.DeleteAccount(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PromoteToTeacher grants the teacher role and ensures the instructor record
// @Summary Promote to teacher
// @Tags students
// @Param id path uint true "Account ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /students/{id}/promote [post]
func (h *StudentHandler) PromoteToTeacher(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.authService.PromoteToTeacher(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
