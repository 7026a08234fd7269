package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/UniFlow-2025/enrollment-service/internal/events"
	"github.com/UniFlow-2025/enrollment-service/internal/models"
	"github.com/UniFlow-2025/enrollment-service/internal/repositories"
	"github.com/UniFlow-2025/enrollment-service/internal/validator"
)

type enrollmentService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewEnrollmentService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher) EnrollmentService {
	return &enrollmentService{
		repo:      repo,
		logger:    logger,
		validator: v,
		publisher: publisher,
	}
}

// ===== ENROLLMENT =====

func (s *enrollmentService) Enroll(ctx context.Context, accountID, courseID uint) (*models.Enrollment, error) {
	course, err := s.repo.Course().GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("course", courseID)
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if !course.IsActive {
		return nil, NewPermissionError(accountID, "course", "enroll in", "course is not open for enrollment")
	}

	enrollment := &models.Enrollment{
		AccountID: accountID,
		CourseID:  courseID,
		Status:    models.EnrollmentActive,
	}

	err = s.repo.WithTransaction(ctx, func(r repositories.Repository) error {
		return r.Enrollment().Create(ctx, nil, enrollment)
	})
	if err != nil {
		// The unique (account, course) index is the arbiter under concurrency.
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, NewConflictError("enrollment", "course")
		}
		return nil, fmt.Errorf("failed to enroll account %d in course %d: %w", accountID, courseID, err)
	}

	s.logger.Info("enrollment created", "account_id", accountID, "course_id", courseID)

	if err := s.publisher.Publish(ctx, events.Event{
		Type: events.TypeEnrollmentCreated,
		Data: map[string]interface{}{"account_id": accountID, "course_id": courseID},
	}); err != nil {
		s.logger.Error("failed to publish enrollment event", "error", err)
	}

	enrollment.Course = *course
	return enrollment, nil
}

// ===== GRADING AND STATUS =====

func (s *enrollmentService) RecordGrade(ctx context.Context, callerAccountID, courseID uint, req *GradeRequest) (*models.Enrollment, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	if _, err := s.authorizeCourseManagement(ctx, callerAccountID, courseID, "grade"); err != nil {
		return nil, err
	}

	enrollment, err := s.repo.Enrollment().GetByAccountAndCourse(ctx, req.AccountID, courseID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("enrollment", req.AccountID)
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}

	grade := req.Grade
	enrollment.Grade = &grade

	err = s.repo.WithTransaction(ctx, func(r repositories.Repository) error {
		return r.Enrollment().Update(ctx, nil, enrollment)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record grade: %w", err)
	}

	s.logger.Info("grade recorded",
		"course_id", courseID, "account_id", req.AccountID, "grade", grade, "graded_by", callerAccountID)

	if err := s.publisher.Publish(ctx, events.Event{
		Type: events.TypeGradeRecorded,
		Data: map[string]interface{}{"account_id": req.AccountID, "course_id": courseID, "grade": grade},
	}); err != nil {
		s.logger.Error("failed to publish grade event", "error", err)
	}

	return enrollment, nil
}

func (s *enrollmentService) UpdateStatus(ctx context.Context, callerAccountID, courseID uint, req *StatusUpdateRequest) (*models.Enrollment, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, errs
	}

	if _, err := s.authorizeCourseManagement(ctx, callerAccountID, courseID, "update"); err != nil {
		return nil, err
	}

	enrollment, err := s.repo.Enrollment().GetByAccountAndCourse(ctx, req.AccountID, courseID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("enrollment", req.AccountID)
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}

	if errs := s.validator.GetBusinessValidator().ValidateStatusTransition(enrollment.Status, req.Status); len(errs) > 0 {
		return nil, errs
	}
	if enrollment.Status == req.Status {
		return enrollment, nil
	}

	enrollment.Status = req.Status

	err = s.repo.WithTransaction(ctx, func(r repositories.Repository) error {
		return r.Enrollment().Update(ctx, nil, enrollment)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update enrollment status: %w", err)
	}

	s.logger.Info("enrollment status changed",
		"course_id", courseID, "account_id", req.AccountID, "status", req.Status)

	return enrollment, nil
}

// ===== QUERIES =====

func (s *enrollmentService) ListForAccount(ctx context.Context, accountID uint) ([]*models.Enrollment, error) {
	enrollments, err := s.repo.Enrollment().ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return enrollments, nil
}

func (s *enrollmentService) GetCourseRoster(ctx context.Context, callerAccountID, courseID uint) (*CourseRosterResponse, error) {
	if _, err := s.authorizeCourseManagement(ctx, callerAccountID, courseID, "view the roster of"); err != nil {
		return nil, err
	}

	course, err := s.repo.Course().GetByIDWithRoster(ctx, courseID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("course", courseID)
		}
		return nil, fmt.Errorf("failed to get course roster: %w", err)
	}

	roster := make([]RosterEntry, 0, len(course.Enrollments))
	hasGrades := false
	for _, e := range course.Enrollments {
		entry := RosterEntry{
			EnrollmentID: e.ID,
			AccountID:    e.AccountID,
			Status:       e.Status,
			Grade:        e.Grade,
			EnrolledAt:   e.EnrolledAt,
		}
		if e.Account.ID != 0 {
			entry.StudentName = e.Account.FullName()
			entry.Email = e.Account.Email
		}
		if e.Grade != nil {
			hasGrades = true
		}
		roster = append(roster, entry)
	}

	return &CourseRosterResponse{Course: course, Roster: roster, HasGrades: hasGrades}, nil
}

// authorizeCourseManagement resolves the course and checks that the caller is
// either an admin or the instructor bound to the course. The binding is the
// account link when present, with an email match as fallback for catalog
// records created before the account existed.
func (s *enrollmentService) authorizeCourseManagement(ctx context.Context, callerAccountID, courseID uint, action string) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("course", courseID)
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	caller, err := s.repo.Account().GetByID(ctx, callerAccountID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewNotFoundError("account", callerAccountID)
		}
		return nil, fmt.Errorf("failed to get caller account: %w", err)
	}
	if caller.Role() == models.RoleAdmin {
		return course, nil
	}

	instructor, err := s.repo.Instructor().GetByID(ctx, course.InstructorID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, NewPermissionError(callerAccountID, "course", action, "course has no instructor assigned")
		}
		return nil, fmt.Errorf("failed to get instructor: %w", err)
	}

	if instructor.AccountID != nil && *instructor.AccountID == callerAccountID {
		return course, nil
	}
	if instructor.AccountID == nil && strings.EqualFold(instructor.Email, caller.Email) {
		return course, nil
	}

	return nil, NewPermissionError(callerAccountID, "course", action, "not the assigned instructor")
}
