package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/UniFlow-2025/enrollment-service/internal/events"
	"github.com/UniFlow-2025/enrollment-service/internal/models"
	"github.com/UniFlow-2025/enrollment-service/internal/validator"
)

type enrollmentFixture struct {
	svc       EnrollmentService
	repo      *mockRepository
	publisher *events.MockEventPublisher

	student    *models.Account
	teacher    *models.Account
	admin      *models.Account
	instructor *models.Instructor
	course     *models.Course
}

func newEnrollmentFixture(t *testing.T) *enrollmentFixture {
	t.Helper()
	ctx := context.Background()

	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	v := validator.New()
	auth := NewAuthService(repo, testLogger(), v, publisher)
	svc := NewEnrollmentService(repo, testLogger(), v, publisher)

	f := &enrollmentFixture{svc: svc, repo: repo, publisher: publisher}

	var err error
	f.student, err = auth.Register(ctx, &RegisterRequest{
		Username: "student", Email: "student@example.com",
		Password: "correct-horse", PasswordConfirm: "correct-horse",
		FirstName: "Sam", LastName: "Student",
	})
	if err != nil {
		t.Fatalf("seed student: %v", err)
	}
	f.teacher, err = auth.Register(ctx, &RegisterRequest{
		Username: "teacher", Email: "teacher@example.com",
		Password: "correct-horse", PasswordConfirm: "correct-horse",
		FirstName: "Tess", LastName: "Teacher",
		RoleRequest: models.RoleTeacher,
	})
	if err != nil {
		t.Fatalf("seed teacher: %v", err)
	}
	f.admin, err = auth.CreateAccount(ctx, &RegisterRequest{
		Username: "admin", Email: "admin@example.com",
		Password: "correct-horse", PasswordConfirm: "correct-horse",
		FirstName: "Ada", LastName: "Admin",
		RoleRequest: models.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	f.instructor, err = repo.Instructor().GetByAccountID(ctx, f.teacher.ID)
	if err != nil {
		t.Fatalf("teacher has no instructor record: %v", err)
	}

	f.course = &models.Course{
		Title:         "Distributed Systems",
		Description:   "Consensus and replication",
		DurationHours: 120,
		InstructorID:  f.instructor.ID,
		IsActive:      true,
	}
	if err := repo.Course().Create(ctx, nil, f.course); err != nil {
		t.Fatalf("seed course: %v", err)
	}

	publisher.ClearEvents()
	return f
}

func TestEnrollCreatesExactlyOneRow(t *testing.T) {
	f := newEnrollmentFixture(t)
	ctx := context.Background()

	enrollment, err := f.svc.Enroll(ctx, f.student.ID, f.course.ID)
	if err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}
	if enrollment.Status != models.EnrollmentActive {
		t.Errorf("status = %v, want active", enrollment.Status)
	}
	if enrollment.Grade != nil {
		t.Errorf("grade = %v, want nil on fresh enrollment", *enrollment.Grade)
	}

	_, err = f.svc.Enroll(ctx, f.student.ID, f.course.ID)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("second Enroll() error = %v, want ConflictError", err)
	}
	if !errors.Is(err, ErrConflict) {
		t.Error("ConflictError does not unwrap to ErrConflict")
	}
	if n := len(f.repo.enrollments); n != 1 {
		t.Errorf("enrollment rows = %d, want exactly 1", n)
	}

	created := 0
	for _, e := range f.publisher.GetPublishedEvents() {
		if e.Type == events.TypeEnrollmentCreated {
			created++
		}
	}
	if created != 1 {
		t.Errorf("enrollment events = %d, want 1", created)
	}
}

func TestEnrollRejectsInactiveCourse(t *testing.T) {
	f := newEnrollmentFixture(t)
	ctx := context.Background()

	f.course.IsActive = false
	if _, err := f.svc.Enroll(ctx, f.student.ID, f.course.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("Enroll() on inactive course error = %v, want ErrForbidden", err)
	}
}

func TestEnrollUnknownCourse(t *testing.T) {
	f := newEnrollmentFixture(t)

	_, err := f.svc.Enroll(context.Background(), f.student.ID, 9999)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Enroll() error = %v, want NotFoundError", err)
	}
	if nf.Resource != "course" {
		t.Errorf("missing resource = %q, want course", nf.Resource)
	}
}

func TestRecordGradeByAssignedInstructor(t *testing.T) {
	f := newEnrollmentFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Enroll(ctx, f.student.ID, f.course.ID); err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}

	enrollment, err := f.svc.RecordGrade(ctx, f.teacher.ID, f.course.ID, &GradeRequest{
		AccountID: f.student.ID,
		Grade:     87.5,
	})
	if err != nil {
		t.Fatalf("RecordGrade() error = %v", err)
	}
	if enrollment.Grade == nil || *enrollment.Grade != 87.5 {
		t.Errorf("grade = %v, want 87.5", enrollment.Grade)
	}
}

func TestRecordGradePermissions(t *testing.T) {
	f := newEnrollmentFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Enroll(ctx, f.student.ID, f.course.ID); err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}
	req := &GradeRequest{AccountID: f.student.ID, Grade: 60}

	// A student is not the assigned instructor.
	_, err := f.svc.RecordGrade(ctx, f.student.ID, f.course.ID, req)
	var perm *PermissionError
	if !errors.As(err, &perm) {
		t.Fatalf("student RecordGrade() error = %v, want PermissionError", err)
	}

	// Admins may manage any course.
	if _, err := f.svc.RecordGrade(ctx, f.admin.ID, f.course.ID, req); err != nil {
		t.Errorf("admin RecordGrade() error = %v", err)
	}
}

func TestRecordGradeWithoutEnrollment(t *testing.T) {
	f := newEnrollmentFixture(t)

	_, err := f.svc.RecordGrade(context.Background(), f.teacher.ID, f.course.ID, &GradeRequest{
		AccountID: f.student.ID,
		Grade:     75,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("RecordGrade() error = %v, want ErrNotFound", err)
	}
}

func TestRecordGradeValidatesRange(t *testing.T) {
	f := newEnrollmentFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Enroll(ctx, f.student.ID, f.course.ID); err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}

	for _, grade := range []float64{-1, 100.5} {
		_, err := f.svc.RecordGrade(ctx, f.teacher.ID, f.course.ID, &GradeRequest{
			AccountID: f.student.ID,
			Grade:     grade,
		})
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			t.Errorf("RecordGrade(grade=%v) error = %v, want ValidationErrors", grade, err)
		}
	}
}

func TestUpdateStatusFollowsTransitionTable(t *testing.T) {
	f := newEnrollmentFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Enroll(ctx, f.student.ID, f.course.ID); err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}

	step := func(status models.EnrollmentStatus) error {
		_, err := f.svc.UpdateStatus(ctx, f.teacher.ID, f.course.ID, &StatusUpdateRequest{
			AccountID: f.student.ID,
			Status:    status,
		})
		return err
	}

	// active -> dropped -> active -> completed is a legal path.
	for _, status := range []models.EnrollmentStatus{
		models.EnrollmentDropped,
		models.EnrollmentActive,
		models.EnrollmentCompleted,
	} {
		if err := step(status); err != nil {
			t.Fatalf("UpdateStatus(%v) error = %v", status, err)
		}
	}

	// Completed is terminal.
	if err := step(models.EnrollmentActive); err == nil {
		t.Error("UpdateStatus() allowed leaving completed")
	}

	// Same-status update is a no-op, not an error.
	if err := step(models.EnrollmentCompleted); err != nil {
		t.Errorf("same-status UpdateStatus() error = %v", err)
	}
}

func TestGetCourseRoster(t *testing.T) {
	f := newEnrollmentFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Enroll(ctx, f.student.ID, f.course.ID); err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}
	if _, err := f.svc.RecordGrade(ctx, f.teacher.ID, f.course.ID, &GradeRequest{
		AccountID: f.student.ID, Grade: 91,
	}); err != nil {
		t.Fatalf("RecordGrade() error = %v", err)
	}

	roster, err := f.svc.GetCourseRoster(ctx, f.teacher.ID, f.course.ID)
	if err != nil {
		t.Fatalf("GetCourseRoster() error = %v", err)
	}
	if len(roster.Roster) != 1 {
		t.Fatalf("roster entries = %d, want 1", len(roster.Roster))
	}
	entry := roster.Roster[0]
	if entry.StudentName != "Sam Student" {
		t.Errorf("student name = %q", entry.StudentName)
	}
	if entry.Grade == nil || *entry.Grade != 91 {
		t.Errorf("grade = %v, want 91", entry.Grade)
	}
	if !roster.HasGrades {
		t.Error("HasGrades = false after grading")
	}

	if _, err := f.svc.GetCourseRoster(ctx, f.student.ID, f.course.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("student GetCourseRoster() error = %v, want ErrForbidden", err)
	}
}

func TestExportCourseRosterWritesWorkbook(t *testing.T) {
	f := newEnrollmentFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Enroll(ctx, f.student.ID, f.course.ID); err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}

	export := NewExportService(f.svc, f.repo, testLogger())

	var buf bytes.Buffer
	if err := export.ExportCourseRoster(ctx, f.teacher.ID, f.course.ID, &buf); err != nil {
		t.Fatalf("ExportCourseRoster() error = %v", err)
	}
	// xlsx files are zip archives.
	if buf.Len() == 0 || buf.Bytes()[0] != 'P' || buf.Bytes()[1] != 'K' {
		t.Error("export output is not a zip-based workbook")
	}

	if err := export.ExportCourseRoster(ctx, f.student.ID, f.course.ID, &buf); !errors.Is(err, ErrForbidden) {
		t.Errorf("student export error = %v, want ErrForbidden", err)
	}
}
