package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/UniFlow-2025/enrollment-service/internal/repositories"
	"github.com/UniFlow-2025/enrollment-service/internal/services"
	"github.com/UniFlow-2025/enrollment-service/internal/utils"
)

const defaultPageSize = 20

type CourseHandler struct {
	BaseHandler
	catalogService services.CatalogService
}

func NewCourseHandler(catalogService services.CatalogService, logger utils.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler:    NewBaseHandler(logger),
		catalogService: catalogService,
	}
}

// ListCourses lists active courses with search and paging
// @Summary Course catalog
// @Tags courses
// @Produce json
// @Param q query string false "Search in title and description"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} services.CourseListResponse
// @Router /courses [get]
func (h *CourseHandler) ListCourses(c *gin.Context) {
	filters := repositories.CourseFilters{
		Query:      c.Query("q"),
		ActiveOnly: true,
		SortBy:     c.DefaultQuery("sort", "title"),
		SortOrder:  c.DefaultQuery("order", "asc"),
	}
	filters.Limit, filters.Offset = parsePaging(c)

	if raw := c.Query("instructor_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			instructorID := uint(id)
			filters.InstructorID = &instructorID
		}
	}

	list, err := h.catalogService.ListActiveCourses(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetCourse shows one course
// @Summary Course detail
// @Tags courses
// @Produce json
// @Param id path uint true "Course ID"
// @Success 200 {object} models.Course
// @Failure 404 {object} ErrorResponse
// @Router /courses/{id} [get]
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	course, err := h.catalogService.GetCourse(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

// CreateCourse adds a course to the catalog
// @Summary Create course
// @Tags courses
// @Accept json
// @Produce json
// @Param course body services.CourseCreateRequest true "Course data"
// @Success 201 {object} models.Course
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /courses [post]
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req services.CourseCreateRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Creating course", "title", req.Title)

	course, err := h.catalogService.CreateCourse(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

// parsePaging reads page/size query params into limit and offset.
func parsePaging(c *gin.Context) (limit, offset int) {
	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(defaultPageSize)))
	if err != nil || size <= 0 || size > 100 {
		size = defaultPageSize
	}
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page <= 0 {
		page = 1
	}
	return size, (page - 1) * size
}
