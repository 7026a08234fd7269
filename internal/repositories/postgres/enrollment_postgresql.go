package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/UniFlow-2025/enrollment-service/internal/models"
	"github.com/UniFlow-2025/enrollment-service/internal/repositories"
)

type enrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentPostgreSQL(db *gorm.DB) repositories.EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *enrollmentRepository) Create(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error {
	if err := r.getDB(tx).WithContext(ctx).Create(enrollment).Error; err != nil {
		return fmt.Errorf("failed to create enrollment: %w", translateError(err))
	}
	return nil
}

func (r *enrollmentRepository) GetByAccountAndCourse(ctx context.Context, accountID, courseID uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND course_id = ?", accountID, courseID).
		First(&enrollment).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &enrollment, nil
}

func (r *enrollmentRepository) ListByAccount(ctx context.Context, accountID uint) ([]*models.Enrollment, error) {
	var enrollments []*models.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Course.Instructor").
		Where("account_id = ?", accountID).
		Order("enrolled_at DESC").
		Find(&enrollments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments by account: %w", err)
	}
	return enrollments, nil
}

func (r *enrollmentRepository) ListByCourse(ctx context.Context, courseID uint) ([]*models.Enrollment, error) {
	var enrollments []*models.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Account").
		Preload("Account.Profile").
		Where("course_id = ?", courseID).
		Order("enrolled_at DESC").
		Find(&enrollments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments by course: %w", err)
	}
	return enrollments, nil
}

func (r *enrollmentRepository) Update(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error {
	if err := r.getDB(tx).WithContext(ctx).Save(enrollment).Error; err != nil {
		return fmt.Errorf("failed to update enrollment: %w", translateError(err))
	}
	return nil
}

func (r *enrollmentRepository) CountByCourse(ctx context.Context, courseID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("course_id = ?", courseID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count enrollments: %w", err)
	}
	return count, nil
}

func (r *enrollmentRepository) HasAnyGrade(ctx context.Context, courseID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("course_id = ? AND grade IS NOT NULL", courseID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check grades: %w", err)
	}
	return count > 0, nil
}

func (r *enrollmentRepository) GetCourseStats(ctx context.Context, courseIDs []uint) ([]repositories.CourseEnrollmentStats, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}

	type row struct {
		CourseID   uint
		Total      int64
		GradeCount int64
	}

	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Select("course_id, COUNT(*) AS total, COUNT(grade) AS grade_count").
		Where("course_id IN ?", courseIDs).
		Group("course_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get course enrollment stats: %w", err)
	}

	byID := make(map[uint]row, len(rows))
	for _, r := range rows {
		byID[r.CourseID] = r
	}

	// Preserve input order; courses without enrollments get zero rows.
	stats := make([]repositories.CourseEnrollmentStats, 0, len(courseIDs))
	for _, id := range courseIDs {
		r := byID[id]
		stats = append(stats, repositories.CourseEnrollmentStats{
			CourseID:        id,
			EnrollmentCount: r.Total,
			HasAnyGrade:     r.GradeCount > 0,
		})
	}

	return stats, nil
}
