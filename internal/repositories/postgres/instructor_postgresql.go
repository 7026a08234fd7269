package postgres

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/UniFlow-2025/enrollment-service/internal/models"
	"github.com/UniFlow-2025/enrollment-service/internal/repositories"
)

type instructorRepository struct {
	db *gorm.DB
}

func NewInstructorPostgreSQL(db *gorm.DB) repositories.InstructorRepository {
	return &instructorRepository{db: db}
}

func (r *instructorRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *instructorRepository) Create(ctx context.Context, tx *gorm.DB, instructor *models.Instructor) error {
	if err := r.getDB(tx).WithContext(ctx).Create(instructor).Error; err != nil {
		return fmt.Errorf("failed to create instructor: %w", translateError(err))
	}
	return nil
}

func (r *instructorRepository) GetByID(ctx context.Context, id uint) (*models.Instructor, error) {
	var instructor models.Instructor
	err := r.db.WithContext(ctx).First(&instructor, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &instructor, nil
}

func (r *instructorRepository) GetByEmail(ctx context.Context, email string) (*models.Instructor, error) {
	var instructor models.Instructor
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		First(&instructor).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &instructor, nil
}

func (r *instructorRepository) GetByAccountID(ctx context.Context, accountID uint) (*models.Instructor, error) {
	var instructor models.Instructor
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&instructor).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &instructor, nil
}

func (r *instructorRepository) List(ctx context.Context, filters repositories.InstructorFilters) ([]*models.Instructor, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Instructor{})

	if filters.Query != "" {
		search := "%" + strings.ToLower(filters.Query) + "%"
		query = query.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(specialization) LIKE ?",
			search, search, search, search)
	}
	if filters.Faculty != nil {
		query = query.Where("faculty = ?", *filters.Faculty)
	}
	if filters.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count instructors: %w", err)
	}

	query = query.Order("last_name ASC, first_name ASC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}

	var instructors []*models.Instructor
	if err := query.Find(&instructors).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list instructors: %w", err)
	}

	return instructors, total, nil
}

func (r *instructorRepository) Update(ctx context.Context, tx *gorm.DB, instructor *models.Instructor) error {
	if err := r.getDB(tx).WithContext(ctx).Save(instructor).Error; err != nil {
		return fmt.Errorf("failed to update instructor: %w", translateError(err))
	}
	return nil
}

func (r *instructorRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Instructor{}).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check instructor email: %w", err)
	}
	return count > 0, nil
}
