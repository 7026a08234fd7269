package postgres

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/UniFlow-2025/enrollment-service/internal/models"
	"github.com/UniFlow-2025/enrollment-service/internal/repositories"
)

type courseRepository struct {
	db *gorm.DB
}

func NewCoursePostgreSQL(db *gorm.DB) repositories.CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *courseRepository) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	if err := r.getDB(tx).WithContext(ctx).Create(course).Error; err != nil {
		return fmt.Errorf("failed to create course: %w", translateError(err))
	}
	return nil
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).
		Preload("Instructor").
		First(&course, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &course, nil
}

func (r *courseRepository) GetByIDWithRoster(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	err := r.db.WithContext(ctx).
		Preload("Instructor").
		Preload("Enrollments", func(db *gorm.DB) *gorm.DB {
			return db.Order("enrollments.enrolled_at DESC")
		}).
		Preload("Enrollments.Account").
		Preload("Enrollments.Account.Profile").
		First(&course, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &course, nil
}

func (r *courseRepository) List(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Course{})

	if filters.Query != "" {
		search := "%" + strings.ToLower(filters.Query) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", search, search)
	}
	if filters.InstructorID != nil {
		query = query.Where("instructor_id = ?", *filters.InstructorID)
	}
	if filters.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count courses: %w", err)
	}

	query = query.Preload("Instructor").Order(courseOrderClause(filters))
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}

	var courses []*models.Course
	if err := query.Find(&courses).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list courses: %w", err)
	}

	return courses, total, nil
}

func (r *courseRepository) ListByInstructor(ctx context.Context, instructorID uint) ([]*models.Course, error) {
	var courses []*models.Course
	err := r.db.WithContext(ctx).
		Where("instructor_id = ?", instructorID).
		Order("title ASC").
		Find(&courses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list courses by instructor: %w", err)
	}
	return courses, nil
}

func (r *courseRepository) GetRecentActive(ctx context.Context, limit int) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.WithContext(ctx).
		Preload("Instructor").
		Where("is_active = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&courses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get recent courses: %w", err)
	}
	return courses, nil
}

func (r *courseRepository) Update(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	if err := r.getDB(tx).WithContext(ctx).Save(course).Error; err != nil {
		return fmt.Errorf("failed to update course: %w", translateError(err))
	}
	return nil
}

func (r *courseRepository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Course{}).
		Where("LOWER(title) = ?", strings.ToLower(title)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check course title: %w", err)
	}
	return count > 0, nil
}

func courseOrderClause(filters repositories.CourseFilters) string {
	column := "title"
	if filters.SortBy == "created_at" {
		column = "created_at"
	}
	direction := "ASC"
	if strings.EqualFold(filters.SortOrder, "desc") {
		direction = "DESC"
	}
	return column + " " + direction
}
