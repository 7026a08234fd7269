package services

import (
	"context"
	"errors"
	"testing"

	"github.com/UniFlow-2025/enrollment-service/internal/models"
	"github.com/UniFlow-2025/enrollment-service/internal/repositories"
	"github.com/UniFlow-2025/enrollment-service/internal/validator"
)

func newCatalogFixture(t *testing.T) (CatalogService, *mockRepository, *models.Instructor) {
	t.Helper()
	repo := newMockRepository()
	svc := NewCatalogService(repo, testLogger(), validator.New(), nil)

	instructor := &models.Instructor{
		FirstName: "Tess", LastName: "Teacher",
		Email:          "teacher@example.com",
		Specialization: "Networks",
		Faculty:        models.FacultyIT,
		IsActive:       true,
	}
	if err := repo.Instructor().Create(context.Background(), nil, instructor); err != nil {
		t.Fatalf("seed instructor: %v", err)
	}
	return svc, repo, instructor
}

func TestCreateCourse(t *testing.T) {
	svc, _, instructor := newCatalogFixture(t)
	ctx := context.Background()

	course, err := svc.CreateCourse(ctx, &CourseCreateRequest{
		Title:         "Computer Networks",
		Description:   "Sockets and routing",
		DurationHours: 90,
		InstructorID:  instructor.ID,
	})
	if err != nil {
		t.Fatalf("CreateCourse() error = %v", err)
	}
	if !course.IsActive {
		t.Error("new course is not active")
	}

	// Duplicate title is a conflict, not a validation failure.
	_, err = svc.CreateCourse(ctx, &CourseCreateRequest{
		Title:         "Computer Networks",
		Description:   "Again",
		DurationHours: 60,
		InstructorID:  instructor.ID,
	})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate CreateCourse() error = %v, want ErrConflict", err)
	}
}

func TestCreateCourseValidation(t *testing.T) {
	svc, _, instructor := newCatalogFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *CourseCreateRequest
	}{
		{"zero duration", &CourseCreateRequest{Title: "X", Description: "d", DurationHours: 0, InstructorID: instructor.ID}},
		{"duration too long", &CourseCreateRequest{Title: "X", Description: "d", DurationHours: 301, InstructorID: instructor.ID}},
		{"missing title", &CourseCreateRequest{Description: "d", DurationHours: 10, InstructorID: instructor.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateCourse(ctx, tt.req)
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				t.Errorf("CreateCourse() error = %v, want ValidationErrors", err)
			}
		})
	}
}

func TestCreateCourseUnknownInstructor(t *testing.T) {
	svc, _, _ := newCatalogFixture(t)

	_, err := svc.CreateCourse(context.Background(), &CourseCreateRequest{
		Title:         "Orphan Course",
		Description:   "d",
		DurationHours: 10,
		InstructorID:  9999,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("CreateCourse() error = %v, want ErrNotFound", err)
	}
}

func TestListActiveCoursesFiltersInactive(t *testing.T) {
	svc, repo, instructor := newCatalogFixture(t)
	ctx := context.Background()

	active := &models.Course{Title: "Active", Description: "d", DurationHours: 10, InstructorID: instructor.ID, IsActive: true}
	hidden := &models.Course{Title: "Hidden", Description: "d", DurationHours: 10, InstructorID: instructor.ID, IsActive: false}
	for _, c := range []*models.Course{active, hidden} {
		if err := repo.Course().Create(ctx, nil, c); err != nil {
			t.Fatalf("seed course: %v", err)
		}
	}

	list, err := svc.ListActiveCourses(ctx, repositories.CourseFilters{})
	if err != nil {
		t.Fatalf("ListActiveCourses() error = %v", err)
	}
	if len(list.Courses) != 1 || list.Courses[0].Title != "Active" {
		t.Errorf("listed %d courses, want only the active one", len(list.Courses))
	}
}

func TestCreateAndUpdateInstructor(t *testing.T) {
	svc, _, seeded := newCatalogFixture(t)
	ctx := context.Background()

	// Duplicate email conflicts with the seeded record.
	_, err := svc.CreateInstructor(ctx, &InstructorCreateRequest{
		FirstName: "Other", LastName: "Person",
		Email:          "teacher@example.com",
		Specialization: "Anything",
	})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate CreateInstructor() error = %v, want ErrConflict", err)
	}

	spec := "Distributed Systems"
	inactive := false
	updated, err := svc.UpdateInstructor(ctx, seeded.ID, &InstructorUpdateRequest{
		Specialization: &spec,
		IsActive:       &inactive,
	})
	if err != nil {
		t.Fatalf("UpdateInstructor() error = %v", err)
	}
	if updated.Specialization != spec || updated.IsActive {
		t.Errorf("update not applied: %+v", updated)
	}
	if updated.Email != "teacher@example.com" {
		t.Errorf("email changed unexpectedly to %q", updated.Email)
	}
}
