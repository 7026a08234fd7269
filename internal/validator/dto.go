package validator

import (
	"time"

	"github.com/UniFlow-2025/enrollment-service/internal/models"
)

// RegisterRequest is the registration form payload.
type RegisterRequest struct {
	Username        string          `json:"username" form:"username" validate:"required,username"`
	Email           string          `json:"email" form:"email" validate:"required,email,max=255"`
	Password        string          `json:"password" form:"password" validate:"required,min=8,max=128"`
	PasswordConfirm string          `json:"password_confirm" form:"password_confirm" validate:"required"`
	FirstName       string          `json:"first_name" form:"first_name" validate:"required,max=100"`
	LastName        string          `json:"last_name" form:"last_name" validate:"required,max=100"`
	RoleRequest     models.UserRole `json:"role_request" form:"role_request" validate:"omitempty,user_role"`
	Faculty         models.Faculty  `json:"faculty" form:"faculty" validate:"omitempty,faculty"`
	Phone           string          `json:"phone" form:"phone" validate:"omitempty,max=17"`
}

// LoginRequest carries the credential pair; Identifier matches username or
// email.
type LoginRequest struct {
	Identifier string `json:"identifier" form:"identifier" validate:"required"`
	Password   string `json:"password" form:"password" validate:"required"`
}

// FeedbackRequest is the public contact form.
type FeedbackRequest struct {
	Name    string `json:"name" form:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" form:"email" validate:"required,email"`
	Subject string `json:"subject" form:"subject" validate:"required,max=200"`
	Message string `json:"message" form:"message" validate:"required,min=10"`
}

// ProfileUpdateRequest is the self-service profile edit payload.
type ProfileUpdateRequest struct {
	FirstName   *string         `json:"first_name" form:"first_name" validate:"omitempty,max=100"`
	LastName    *string         `json:"last_name" form:"last_name" validate:"omitempty,max=100"`
	Phone       *string         `json:"phone" form:"phone" validate:"omitempty,max=17"`
	Bio         *string         `json:"bio" form:"bio" validate:"omitempty,max=2000"`
	Faculty     *models.Faculty `json:"faculty" form:"faculty" validate:"omitempty,faculty"`
	DateOfBirth *time.Time      `json:"date_of_birth" form:"date_of_birth" time_format:"2006-01-02"`
	AvatarPath  *string         `json:"-" form:"-"`
}

// CourseCreateRequest creates a catalog course.
type CourseCreateRequest struct {
	Title         string `json:"title" form:"title" validate:"required,min=1,max=200"`
	Description   string `json:"description" form:"description" validate:"required"`
	DurationHours int    `json:"duration_hours" form:"duration_hours" validate:"required,course_duration"`
	InstructorID  uint   `json:"instructor_id" form:"instructor_id" validate:"required"`
}

// InstructorCreateRequest creates a teaching staff record.
type InstructorCreateRequest struct {
	FirstName      string         `json:"first_name" form:"first_name" validate:"required,max=100"`
	LastName       string         `json:"last_name" form:"last_name" validate:"required,max=100"`
	Email          string         `json:"email" form:"email" validate:"required,email,max=255"`
	Specialization string         `json:"specialization" form:"specialization" validate:"required,max=200"`
	Faculty        models.Faculty `json:"faculty" form:"faculty" validate:"omitempty,faculty"`
}

// InstructorUpdateRequest mutates an existing instructor; nil fields are left
// untouched.
type InstructorUpdateRequest struct {
	FirstName      *string         `json:"first_name" form:"first_name" validate:"omitempty,max=100"`
	LastName       *string         `json:"last_name" form:"last_name" validate:"omitempty,max=100"`
	Email          *string         `json:"email" form:"email" validate:"omitempty,email,max=255"`
	Specialization *string         `json:"specialization" form:"specialization" validate:"omitempty,max=200"`
	Faculty        *models.Faculty `json:"faculty" form:"faculty" validate:"omitempty,faculty"`
	IsActive       *bool           `json:"is_active" form:"is_active"`
}

// EnrollRequest enrolls the target account into a course.
type EnrollRequest struct {
	CourseID uint `json:"course_id" form:"course_id" validate:"required"`
}

// GradeRequest records a grade on an enrollment.
type GradeRequest struct {
	AccountID uint    `json:"account_id" form:"account_id" validate:"required"`
	Grade     float64 `json:"grade" form:"grade" validate:"grade_range"`
}

// StatusUpdateRequest moves an enrollment through the status transition table.
type StatusUpdateRequest struct {
	AccountID uint                    `json:"account_id" form:"account_id" validate:"required"`
	Status    models.EnrollmentStatus `json:"status" form:"status" validate:"required,enrollment_status"`
}
