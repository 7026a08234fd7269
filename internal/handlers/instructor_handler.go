package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/UniFlow-2025/enrollment-service/internal/models"
	"github.com/UniFlow-2025/enrollment-service/internal/repositories"
	"github.com/UniFlow-2025/enrollment-service/internal/services"
	"github.com/UniFlow-2025/enrollment-service/internal/utils"
)

type InstructorHandler struct {
	BaseHandler
	catalogService services.CatalogService
}

func NewInstructorHandler(catalogService services.CatalogService, logger utils.Logger) *InstructorHandler {
	return &InstructorHandler{
		BaseHandler:    NewBaseHandler(logger),
		catalogService: catalogService,
	}
}

// ListInstructors lists teaching staff
// @Summary Instructor list
// @Tags instructors
// @Produce json
// @Param q query string false "Search in name and email"
// @Param faculty query string false "Faculty filter"
// @Success 200 {object} services.InstructorListResponse
// @Router /instructors [get]
func (h *InstructorHandler) ListInstructors(c *gin.Context) {
	filters := repositories.InstructorFilters{
		Query:      c.Query("q"),
		ActiveOnly: c.DefaultQuery("active", "true") == "true",
	}
	filters.Limit, filters.Offset = parsePaging(c)

	if raw := c.Query("faculty"); raw != "" {
		faculty := models.Faculty(raw)
		if faculty.Valid() {
			filters.Faculty = &faculty
		}
	}

	list, err := h.catalogService.ListInstructors(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetInstructor shows one instructor
// @Summary Instructor detail
// @Tags instructors
// @Produce json
// @Param id path uint true "Instructor ID"
// @Success 200 {object} models.Instructor
// @Failure 404 {object} ErrorResponse
// @Router /instructors/{id} [get]
func (h *InstructorHandler) GetInstructor(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	instructor, err := h.catalogService.GetInstructor(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, instructor)
}

// CreateInstructor adds a teaching staff record
// @Summary Create instructor
// @Tags instructors
// @Accept json
// @Produce json
// @Param instructor body services.InstructorCreateRequest true "Instructor data"
// @Success 201 {object} models.Instructor
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /instructors [post]
func (h *InstructorHandler) CreateInstructor(c *gin.Context) {
	var req services.InstructorCreateRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	instructor, err := h.catalogService.CreateInstructor(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, instructor)
}

// UpdateInstructor edits a teaching staff record
// @Summary Update instructor
// @Tags instructors
// @Accept json
// @Produce json
// @Param id path uint true "Instructor ID"
// @Param instructor body services.InstructorUpdateRequest true "Fields to change"
// @Success 200 {object} models.Instructor
// @Failure 404 {object} ErrorResponse
// @Router /instructors/{id}/edit [post]
func (h *InstructorHandler) UpdateInstructor(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.InstructorUpdateRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	instructor, err := h.catalogService.UpdateInstructor(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, instructor)
}
