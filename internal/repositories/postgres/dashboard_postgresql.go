package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/UniFlow-2025/enrollment-service/internal/cache"
	"github.com/UniFlow-2025/enrollment-service/internal/models"
	"github.com/UniFlow-2025/enrollment-service/internal/repositories"
)

const recentCourseLimit = 3

type dashboardRepository struct {
	db    *gorm.DB
	cache *cache.CacheHelper
}

func NewDashboardPostgreSQL(db *gorm.DB, cacheHelper *cache.CacheHelper) repositories.DashboardRepository {
	return &dashboardRepository{db: db, cache: cacheHelper}
}

// GetLandingStats returns the public landing page aggregates. The result is
// cached briefly; staleness is acceptable for a marketing counter.
func (r *dashboardRepository) GetLandingStats(ctx context.Context) (*repositories.LandingStats, error) {
	const cacheKey = "landing"

	var cached repositories.LandingStats
	if err := r.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrCacheNotFound) && !errors.Is(err, cache.ErrCacheNotAvailable) {
		return nil, err
	}

	stats := &repositories.LandingStats{}

	err := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("role = ?", models.RoleStudent).
		Count(&stats.TotalStudents).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count students: %w", err)
	}

	err = r.db.WithContext(ctx).
		Model(&models.Course{}).
		Where("is_active = ?", true).
		Count(&stats.ActiveCourses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count active courses: %w", err)
	}

	err = r.db.WithContext(ctx).
		Preload("Instructor").
		Where("is_active = ?", true).
		Order("created_at DESC").
		Limit(recentCourseLimit).
		Find(&stats.RecentCourses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get recent courses: %w", err)
	}

	_ = r.cache.Set(ctx, cacheKey, stats, cache.StatsCacheConfig.TTL)

	return stats, nil
}

func (r *dashboardRepository) GetAdminStats(ctx context.Context) (*repositories.AdminStats, error) {
	stats := &repositories.AdminStats{}

	counts := []struct {
		model interface{}
		scope func(*gorm.DB) *gorm.DB
		dest  *int64
		what  string
	}{
		{&models.Account{}, nil, &stats.TotalAccounts, "accounts"},
		{&models.Profile{}, func(db *gorm.DB) *gorm.DB {
			return db.Where("role = ?", models.RoleStudent)
		}, &stats.TotalStudents, "students"},
		{&models.Instructor{}, nil, &stats.TotalInstructors, "instructors"},
		{&models.Course{}, nil, &stats.TotalCourses, "courses"},
		{&models.Enrollment{}, nil, &stats.TotalEnrollments, "enrollments"},
	}

	for _, c := range counts {
		query := r.db.WithContext(ctx).Model(c.model)
		if c.scope != nil {
			query = c.scope(query)
		}
		if err := query.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.what, err)
		}
	}

	return stats, nil
}
