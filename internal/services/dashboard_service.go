package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UniFlow-2025/enrollment-service/internal/models"
	"github.com/UniFlow-2025/enrollment-service/internal/repositories"
)

const recentAccountLimit = 5

type dashboardService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewDashboardService(repo repositories.Repository, logger *slog.Logger) DashboardService {
	return &dashboardService{repo: repo, logger: logger}
}

func (s *dashboardService) GetLandingStats(ctx context.Context) (*repositories.LandingStats, error) {
	stats, err := s.repo.Dashboard().GetLandingStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get landing stats: %w", err)
	}
	return stats, nil
}

func (s *dashboardService) GetStudentDashboard(ctx context.Context, accountID uint) (*StudentDashboardResponse, error) {
	account, err := s.repo.Account().GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("account", accountID)
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	enrollments, err := s.repo.Enrollment().ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	return &StudentDashboardResponse{
		Account:     &AccountResponse{Account: account, Role: account.Role()},
		Enrollments: enrollments,
	}, nil
}

func (s *dashboardService) GetTeacherDashboard(ctx context.Context, accountID uint) (*TeacherDashboardResponse, error) {
	instructor, err := s.resolveInstructor(ctx, accountID)
	if err != nil {
		return nil, err
	}

	courses, err := s.repo.Course().ListByInstructor(ctx, instructor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	ids := make([]uint, len(courses))
	for i, c := range courses {
		ids[i] = c.ID
	}
	stats, err := s.repo.Enrollment().GetCourseStats(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get course stats: %w", err)
	}
	byCourse := make(map[uint]repositories.CourseEnrollmentStats, len(stats))
	for _, st := range stats {
		byCourse[st.CourseID] = st
	}

	summaries := make([]TeacherCourseSummary, len(courses))
	for i, c := range courses {
		st := byCourse[c.ID]
		c.EnrollmentCount = st.EnrollmentCount
		summaries[i] = TeacherCourseSummary{
			Course:          c,
			EnrollmentCount: st.EnrollmentCount,
			HasAnyGrade:     st.HasAnyGrade,
		}
	}

	return &TeacherDashboardResponse{Instructor: instructor, Courses: summaries}, nil
}

func (s *dashboardService) GetAdminDashboard(ctx context.Context) (*AdminDashboardResponse, error) {
	stats, err := s.repo.Dashboard().GetAdminStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get admin stats: %w", err)
	}

	recent, err := s.repo.Account().GetRecent(ctx, recentAccountLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent accounts: %w", err)
	}
	responses := make([]*AccountResponse, len(recent))
	for i, a := range recent {
		responses[i] = &AccountResponse{Account: a, Role: a.Role()}
	}

	return &AdminDashboardResponse{Stats: stats, RecentAccounts: responses}, nil
}

// resolveInstructor finds the teaching record behind an account, by link first
// and by email as fallback for records that predate the account.
func (s *dashboardService) resolveInstructor(ctx context.Context, accountID uint) (*models.Instructor, error) {
	instructor, err := s.repo.Instructor().GetByAccountID(ctx, accountID)
	if err == nil {
		return instructor, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up instructor: %w", err)
	}

	account, err := s.repo.Account().GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("account", accountID)
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	instructor, err = s.repo.Instructor().GetByEmail(ctx, account.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewPermissionError(accountID, "teacher dashboard", "view", "no instructor record for this account")
		}
		return nil, fmt.Errorf("failed to look up instructor: %w", err)
	}
	return instructor, nil
}
