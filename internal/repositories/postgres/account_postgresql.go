package postgres

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/UniFlow-2025/enrollment-service/internal/models"
	"github.com/UniFlow-2025/enrollment-service/internal/repositories"
)

type accountRepository struct {
	db *gorm.DB
}

func NewAccountPostgreSQL(db *gorm.DB) repositories.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *accountRepository) Create(ctx context.Context, tx *gorm.DB, account *models.Account) error {
	if err := r.getDB(tx).WithContext(ctx).Create(account).Error; err != nil {
		return fmt.Errorf("failed to create account: %w", translateError(err))
	}
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).
		Preload("Profile").
		First(&account, id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &account, nil
}

func (r *accountRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.Account, error) {
	identifier = strings.ToLower(strings.TrimSpace(identifier))

	var account models.Account
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Where("LOWER(username) = ? OR LOWER(email) = ?", identifier, identifier).
		First(&account).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &account, nil
}

func (r *accountRepository) List(ctx context.Context, filters repositories.AccountFilters) ([]*models.Account, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Account{}).
		Joins("LEFT JOIN profiles ON profiles.account_id = accounts.id")

	if filters.Query != "" {
		search := "%" + strings.ToLower(filters.Query) + "%"
		query = query.Where(
			"LOWER(accounts.username) LIKE ? OR LOWER(accounts.email) LIKE ? OR LOWER(accounts.first_name) LIKE ? OR LOWER(accounts.last_name) LIKE ?",
			search, search, search, search)
	}
	if filters.Role != nil {
		query = query.Where("profiles.role = ?", *filters.Role)
	}
	if filters.Faculty != nil {
		query = query.Where("profiles.faculty = ?", *filters.Faculty)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count accounts: %w", err)
	}

	query = query.Preload("Profile").Order(accountOrderClause(filters))
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}

	var accounts []*models.Account
	if err := query.Find(&accounts).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list accounts: %w", err)
	}

	return accounts, total, nil
}

func (r *accountRepository) GetRecent(ctx context.Context, limit int) ([]*models.Account, error) {
	var accounts []*models.Account
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Order("created_at DESC").
		Limit(limit).
		Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get recent accounts: %w", err)
	}
	return accounts, nil
}

func (r *accountRepository) Update(ctx context.Context, tx *gorm.DB, account *models.Account) error {
	if err := r.getDB(tx).WithContext(ctx).Save(account).Error; err != nil {
		return fmt.Errorf("failed to update account: %w", translateError(err))
	}
	return nil
}

func (r *accountRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := r.getDB(tx).WithContext(ctx)

	// Dependent rows first; accounts are soft-deleted so DB-level cascades
	// never fire for them.
	if err := db.Where("account_id = ?", id).Delete(&models.Profile{}).Error; err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if err := db.Where("account_id = ?", id).Delete(&models.Enrollment{}).Error; err != nil {
		return fmt.Errorf("failed to delete enrollments: %w", err)
	}
	if err := db.Delete(&models.Account{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

func (r *accountRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("LOWER(username) = ?", strings.ToLower(username)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return count > 0, nil
}

func (r *accountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

func accountOrderClause(filters repositories.AccountFilters) string {
	column := "accounts.created_at"
	switch filters.SortBy {
	case "username":
		column = "accounts.username"
	case "last_name":
		column = "accounts.last_name"
	}
	direction := "DESC"
	if strings.EqualFold(filters.SortOrder, "asc") {
		direction = "ASC"
	}
	return column + " " + direction
}

// ===== PROFILE REPOSITORY =====

type profileRepository struct {
	db *gorm.DB
}

func NewProfilePostgreSQL(db *gorm.DB) repositories.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *profileRepository) Create(ctx context.Context, tx *gorm.DB, profile *models.Profile) error {
	if err := r.getDB(tx).WithContext(ctx).Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create profile: %w", translateError(err))
	}
	return nil
}

func (r *profileRepository) GetByAccountID(ctx context.Context, accountID uint) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&profile).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &profile, nil
}

func (r *profileRepository) Update(ctx context.Context, tx *gorm.DB, profile *models.Profile) error {
	if err := r.getDB(tx).WithContext(ctx).Save(profile).Error; err != nil {
		return fmt.Errorf("failed to update profile: %w", translateError(err))
	}
	return nil
}
