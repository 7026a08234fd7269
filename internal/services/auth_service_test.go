package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/UniFlow-2025/enrollment-service/internal/events"
	"github.com/UniFlow-2025/enrollment-service/internal/models"
	"github.com/UniFlow-2025/enrollment-service/internal/validator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAuthFixture(t *testing.T) (AuthService, *mockRepository, *events.MockEventPublisher) {
	t.Helper()
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	svc := NewAuthService(repo, testLogger(), validator.New(), publisher)
	return svc, repo, publisher
}

func validRegisterRequest() *RegisterRequest {
	return &RegisterRequest{
		Username:        "jdoe",
		Email:           "jdoe@example.com",
		Password:        "correct-horse",
		PasswordConfirm: "correct-horse",
		FirstName:       "Jane",
		LastName:        "Doe",
		Faculty:         models.FacultyMath,
	}
}

func TestRegisterCreatesAccountAndProfile(t *testing.T) {
	svc, repo, publisher := newAuthFixture(t)

	account, err := svc.Register(context.Background(), validRegisterRequest())
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if account.ID == 0 {
		t.Fatal("expected account ID to be assigned")
	}
	if account.Profile == nil {
		t.Fatal("expected profile to be created with the account")
	}
	if got := account.Profile.Role; got != models.RoleStudent {
		t.Errorf("profile role = %v, want STUDENT", got)
	}
	if got := account.Profile.Faculty; got != models.FacultyMath {
		t.Errorf("profile faculty = %v, want MATH", got)
	}
	if account.PasswordHash == "correct-horse" {
		t.Error("password stored in plaintext")
	}
	if len(repo.instructors) != 0 {
		t.Errorf("student registration created %d instructor records", len(repo.instructors))
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 || published[0].Type != events.TypeAccountRegistered {
		t.Errorf("published events = %+v, want one %s", published, events.TypeAccountRegistered)
	}
}

func TestRegisterTeacherCreatesInstructor(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)

	req := validRegisterRequest()
	req.RoleRequest = models.RoleTeacher

	account, err := svc.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if got := account.Profile.Role; got != models.RoleTeacher {
		t.Fatalf("profile role = %v, want TEACHER", got)
	}

	if len(repo.instructors) != 1 {
		t.Fatalf("instructor records = %d, want 1", len(repo.instructors))
	}
	for _, instructor := range repo.instructors {
		if instructor.AccountID == nil || *instructor.AccountID != account.ID {
			t.Errorf("instructor not linked to account %d", account.ID)
		}
		if instructor.Specialization != models.DefaultSpecialization {
			t.Errorf("specialization = %q, want %q", instructor.Specialization, models.DefaultSpecialization)
		}
	}
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, validRegisterRequest()); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	req := validRegisterRequest()
	req.Email = "other@example.com"
	_, err := svc.Register(ctx, req)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("second Register() error = %v, want ValidationErrors", err)
	}
	found := false
	for _, ve := range verrs {
		if ve.Field == "username" {
			found = true
		}
	}
	if !found {
		t.Errorf("validation errors %v do not mention username", verrs)
	}
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	req := validRegisterRequest()
	req.RoleRequest = models.RoleAdmin

	if _, err := svc.Register(context.Background(), req); err == nil {
		t.Fatal("Register() accepted an ADMIN self-registration")
	}
}

func TestRegisterRejectsPasswordMismatch(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	req := validRegisterRequest()
	req.PasswordConfirm = "different-horse"

	if _, err := svc.Register(context.Background(), req); err == nil {
		t.Fatal("Register() accepted mismatched password confirmation")
	}
}

func TestAuthenticateByUsernameAndEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, validRegisterRequest()); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tests := []struct {
		name       string
		identifier string
	}{
		{"by username", "jdoe"},
		{"by email", "jdoe@example.com"},
		{"username case-insensitive", "JDoe"},
		{"email case-insensitive", "JDOE@Example.COM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account, err := svc.Authenticate(ctx, &LoginRequest{Identifier: tt.identifier, Password: "correct-horse"})
			if err != nil {
				t.Fatalf("Authenticate(%q) error = %v", tt.identifier, err)
			}
			if account.Username != "jdoe" {
				t.Errorf("resolved account %q, want jdoe", account.Username)
			}
		})
	}
}

func TestAuthenticateFailuresAreOpaque(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, validRegisterRequest()); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// Deactivate for the inactive case.
	inactive, err := svc.Register(ctx, &RegisterRequest{
		Username: "gone", Email: "gone@example.com",
		Password: "correct-horse", PasswordConfirm: "correct-horse",
		FirstName: "Gone", LastName: "User",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	repo.accounts[inactive.ID].IsActive = false

	tests := []struct {
		name       string
		identifier string
		password   string
	}{
		{"unknown identifier", "nobody", "correct-horse"},
		{"wrong password", "jdoe", "wrong-horse"},
		{"inactive account", "gone", "correct-horse"},
		{"empty password", "jdoe", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Authenticate(ctx, &LoginRequest{Identifier: tt.identifier, Password: tt.password})
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Authenticate() error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestPromoteToTeacherIsIdempotent(t *testing.T) {
	svc, repo, publisher := newAuthFixture(t)
	ctx := context.Background()

	account, err := svc.Register(ctx, validRegisterRequest())
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	publisher.ClearEvents()

	if err := svc.PromoteToTeacher(ctx, account.ID); err != nil {
		t.Fatalf("first PromoteToTeacher() error = %v", err)
	}
	if err := svc.PromoteToTeacher(ctx, account.ID); err != nil {
		t.Fatalf("second PromoteToTeacher() error = %v", err)
	}

	if len(repo.instructors) != 1 {
		t.Errorf("instructor records = %d, want exactly 1", len(repo.instructors))
	}
	profile, err := repo.Profile().GetByAccountID(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetByAccountID() error = %v", err)
	}
	if profile.Role != models.RoleTeacher {
		t.Errorf("profile role = %v, want TEACHER", profile.Role)
	}

	promoted := 0
	for _, e := range publisher.GetPublishedEvents() {
		if e.Type == events.TypeTeacherPromoted {
			promoted++
		}
	}
	if promoted != 1 {
		t.Errorf("promotion events = %d, want 1", promoted)
	}
}

func TestPromoteAdoptsExistingInstructorByEmail(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)
	ctx := context.Background()

	// Catalog record created by an admin before the person registered.
	existing := &models.Instructor{
		FirstName: "Jane", LastName: "Doe",
		Email:          "jdoe@example.com",
		Specialization: "Databases",
		IsActive:       true,
	}
	if err := repo.Instructor().Create(ctx, nil, existing); err != nil {
		t.Fatalf("seed instructor: %v", err)
	}

	account, err := svc.Register(ctx, validRegisterRequest())
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := svc.PromoteToTeacher(ctx, account.ID); err != nil {
		t.Fatalf("PromoteToTeacher() error = %v", err)
	}

	if len(repo.instructors) != 1 {
		t.Fatalf("instructor records = %d, want the existing one adopted", len(repo.instructors))
	}
	adopted, err := repo.Instructor().GetByAccountID(ctx, account.ID)
	if err != nil {
		t.Fatalf("instructor not linked: %v", err)
	}
	if adopted.Specialization != "Databases" {
		t.Errorf("specialization = %q, adoption overwrote the record", adopted.Specialization)
	}
}

func TestDeleteAccountRemovesDependents(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)
	ctx := context.Background()

	account, err := svc.Register(ctx, validRegisterRequest())
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := svc.DeleteAccount(ctx, account.ID); err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}
	if _, err := repo.Account().GetByID(ctx, account.ID); err == nil {
		t.Error("account still present after delete")
	}
	if _, err := repo.Profile().GetByAccountID(ctx, account.ID); err == nil {
		t.Error("profile still present after delete")
	}

	var nf *NotFoundError
	err = svc.DeleteAccount(ctx, account.ID)
	if !errors.As(err, &nf) {
		t.Errorf("second DeleteAccount() error = %v, want NotFoundError", err)
	}
}

func TestUpdateProfileAppliesPartialChanges(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	account, err := svc.Register(ctx, validRegisterRequest())
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	bio := "Part-time lab assistant"
	faculty := models.FacultyPhys
	profile, err := svc.UpdateProfile(ctx, account.ID, &ProfileUpdateRequest{
		Bio:     &bio,
		Faculty: &faculty,
	})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if profile.Bio != bio {
		t.Errorf("bio = %q, want %q", profile.Bio, bio)
	}
	if profile.Faculty != models.FacultyPhys {
		t.Errorf("faculty = %v, want PHYS", profile.Faculty)
	}
	if profile.Phone != "" {
		t.Errorf("phone changed unexpectedly to %q", profile.Phone)
	}
}
