package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UniFlow-2025/enrollment-service/internal/cache"
	"github.com/UniFlow-2025/enrollment-service/internal/models"
	"github.com/UniFlow-2025/enrollment-service/internal/repositories"
	"github.com/UniFlow-2025/enrollment-service/internal/validator"
)

type catalogService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	cache     *cache.CacheHelper
}

func NewCatalogService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator, cacheHelper *cache.CacheHelper) CatalogService {
	return &catalogService{
		repo:      repo,
		logger:    logger,
		validator: v,
		cache:     cacheHelper,
	}
}

// ===== COURSES =====

func (s *catalogService) ListActiveCourses(ctx context.Context, filters repositories.CourseFilters) (*CourseListResponse, error) {
	filters.ActiveOnly = true

	courses, total, err := s.repo.Course().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	// Enrollment counts are display data; one grouped query for the page.
	ids := make([]uint, len(courses))
	for i, c := range courses {
		ids[i] = c.ID
	}
	stats, err := s.repo.Enrollment().GetCourseStats(ctx, ids)
	if err != nil {
		s.logger.Error("failed to load enrollment counts", "error", err)
		stats = nil
	}
	counts := make(map[uint]int64, len(stats))
	for _, st := range stats {
		counts[st.CourseID] = st.EnrollmentCount
	}

	responses := make([]*CourseResponse, len(courses))
	for i, c := range courses {
		c.EnrollmentCount = counts[c.ID]
		responses[i] = &CourseResponse{Course: c, CanEnroll: c.IsActive}
	}

	page := 1
	if filters.Limit > 0 {
		page = filters.Offset/filters.Limit + 1
	}

	return &CourseListResponse{
		Courses: responses,
		Total:   total,
		Page:    page,
		Size:    filters.Limit,
	}, nil
}

func (s *catalogService) GetCourse(ctx context.Context, id uint) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("course", id)
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

func (s *catalogService) GetCourseWithRoster(ctx context.Context, id uint) (*models.Course, error) {
	course, err := s.repo.Course().GetByIDWithRoster(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("course", id)
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return course, nil
}

func (s *catalogService) CreateCourse(ctx context.Context, req *CourseCreateRequest) (*models.Course, error) {
	if errs := s.validator.GetBusinessValidator().ValidateCourseCreate(req); len(errs) > 0 {
		return nil, errs
	}

	taken, err := s.repo.Course().ExistsByTitle(ctx, req.Title)
	if err != nil {
		return nil, fmt.Errorf("failed to check course title: %w", err)
	}
	if taken {
		return nil, NewConflictError("course", "title")
	}

	if _, err := s.repo.Instructor().GetByID(ctx, req.InstructorID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("instructor", req.InstructorID)
		}
		return nil, fmt.Errorf("failed to get instructor: %w", err)
	}

	course := &models.Course{
		Title:         req.Title,
		Description:   req.Description,
		DurationHours: req.DurationHours,
		InstructorID:  req.InstructorID,
		IsActive:      true,
	}

	err = s.repo.WithTransaction(ctx, func(r repositories.Repository) error {
		return r.Course().Create(ctx, nil, course)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, NewConflictError("course", "title")
		}
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.invalidateStats(ctx)
	s.logger.Info("course created", "course_id", course.ID, "title", course.Title)
	return course, nil
}

// ===== INSTRUCTORS =====

func (s *catalogService) ListInstructors(ctx context.Context, filters repositories.InstructorFilters) (*InstructorListResponse, error) {
	instructors, total, err := s.repo.Instructor().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list instructors: %w", err)
	}

	page := 1
	if filters.Limit > 0 {
		page = filters.Offset/filters.Limit + 1
	}

	return &InstructorListResponse{
		Instructors: instructors,
		Total:       total,
		Page:        page,
		Size:        filters.Limit,
	}, nil
}

func (s *catalogService) GetInstructor(ctx context.Context, id uint) (*models.Instructor, error) {
	instructor, err := s.repo.Instructor().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("instructor", id)
		}
		return nil, fmt.Errorf("failed to get instructor: %w", err)
	}
	return instructor, nil
}

func (s *catalogService) CreateInstructor(ctx context.Context, req *InstructorCreateRequest) (*models.Instructor, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	taken, err := s.repo.Instructor().ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check instructor email: %w", err)
	}
	if taken {
		return nil, NewConflictError("instructor", "email")
	}

	faculty := models.FacultyIT
	if req.Faculty.Valid() {
		faculty = req.Faculty
	}

	instructor := &models.Instructor{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Specialization: req.Specialization,
		Faculty:        faculty,
		IsActive:       true,
	}

	err = s.repo.WithTransaction(ctx, func(r repositories.Repository) error {
		return r.Instructor().Create(ctx, nil, instructor)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, NewConflictError("instructor", "email")
		}
		return nil, fmt.Errorf("failed to create instructor: %w", err)
	}

	s.logger.Info("instructor created", "instructor_id", instructor.ID)
	return instructor, nil
}

func (s *catalogService) UpdateInstructor(ctx context.Context, id uint, req *InstructorUpdateRequest) (*models.Instructor, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	instructor, err := s.repo.Instructor().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("instructor", id)
		}
		return nil, fmt.Errorf("failed to get instructor: %w", err)
	}

	if req.FirstName != nil {
		instructor.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		instructor.LastName = *req.LastName
	}
	if req.Email != nil {
		instructor.Email = *req.Email
	}
	if req.Specialization != nil {
		instructor.Specialization = *req.Specialization
	}
	if req.Faculty != nil {
		instructor.Faculty = *req.Faculty
	}
	if req.IsActive != nil {
		instructor.IsActive = *req.IsActive
	}

	err = s.repo.WithTransaction(ctx, func(r repositories.Repository) error {
		return r.Instructor().Update(ctx, nil, instructor)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, NewConflictError("instructor", "email")
		}
		return nil, fmt.Errorf("failed to update instructor: %w", err)
	}

	return instructor, nil
}

// invalidateStats drops cached landing stats after catalog mutations so the
// public page picks the change up before TTL expiry.
func (s *catalogService) invalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, "landing"); err != nil &&
		!errors.Is(err, cache.ErrCacheNotAvailable) {
		s.logger.Warn("failed to invalidate stats cache", "error", err)
	}
}
