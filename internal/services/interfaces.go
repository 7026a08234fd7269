package services

import (
	"context"
	"io"
	"time"

	"github.com/UniFlow-2025/enrollment-service/internal/models"
	"github.com/UniFlow-2025/enrollment-service/internal/repositories"
	"github.com/UniFlow-2025/enrollment-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Request DTOs live next to their validation rules.
type RegisterRequest = validator.RegisterRequest
type LoginRequest = validator.LoginRequest
type FeedbackRequest = validator.FeedbackRequest
type ProfileUpdateRequest = validator.ProfileUpdateRequest
type CourseCreateRequest = validator.CourseCreateRequest
type InstructorCreateRequest = validator.InstructorCreateRequest
type InstructorUpdateRequest = validator.InstructorUpdateRequest
type EnrollRequest = validator.EnrollRequest
type GradeRequest = validator.GradeRequest
type StatusUpdateRequest = validator.StatusUpdateRequest

type AccountResponse struct {
	*models.Account
	Role models.UserRole `json:"role"`
}

type AccountListResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	Size     int                `json:"size"`
}

type CourseResponse struct {
	*models.Course
	CanEnroll bool `json:"can_enroll"`
}

type CourseListResponse struct {
	Courses []*CourseResponse `json:"courses"`
	Total   int64             `json:"total"`
	Page    int               `json:"page"`
	Size    int               `json:"size"`
}

type InstructorListResponse struct {
	Instructors []*models.Instructor `json:"instructors"`
	Total       int64                `json:"total"`
	Page        int                  `json:"page"`
	Size        int                  `json:"size"`
}

type RosterEntry struct {
	EnrollmentID uint                    `json:"enrollment_id"`
	AccountID    uint                    `json:"account_id"`
	StudentName  string                  `json:"student_name"`
	Email        string                  `json:"email"`
	Status       models.EnrollmentStatus `json:"status"`
	Grade        *float64                `json:"grade"`
	EnrolledAt   time.Time               `json:"enrolled_at"`
}

type CourseRosterResponse struct {
	Course  *models.Course `json:"course"`
	Roster  []RosterEntry  `json:"roster"`
	HasGrades bool         `json:"has_grades"`
}

// ===== DASHBOARD DTOs =====

type StudentDashboardResponse struct {
	Account     *AccountResponse     `json:"account"`
	Enrollments []*models.Enrollment `json:"enrollments"`
}

type TeacherCourseSummary struct {
	Course          *models.Course `json:"course"`
	EnrollmentCount int64          `json:"enrollment_count"`
	HasAnyGrade     bool           `json:"has_any_grade"`
}

type TeacherDashboardResponse struct {
	Instructor *models.Instructor     `json:"instructor"`
	Courses    []TeacherCourseSummary `json:"courses"`
}

type AdminDashboardResponse struct {
	Stats          *repositories.AdminStats `json:"stats"`
	RecentAccounts []*AccountResponse       `json:"recent_accounts"`
}

// ===== SERVICE INTERFACES =====

// AuthService resolves credentials, registers accounts and manages profiles
// and role assignment.
type AuthService interface {
	// Authenticate resolves identifier (username or email, case-insensitive)
	// and verifies the password. Any failure yields ErrInvalidCredentials.
	Authenticate(ctx context.Context, req *LoginRequest) (*models.Account, error)

	// Register creates Account + Profile atomically; teacher registrations
	// also get-or-create a linked Instructor record.
	Register(ctx context.Context, req *RegisterRequest) (*models.Account, error)

	GetAccount(ctx context.Context, id uint) (*AccountResponse, error)
	ListAccounts(ctx context.Context, filters repositories.AccountFilters) (*AccountListResponse, error)

	// CreateAccount is the administrative creation path (same factory as
	// Register, without the self-service rules).
	CreateAccount(ctx context.Context, req *RegisterRequest) (*models.Account, error)
	DeleteAccount(ctx context.Context, id uint) error

	GetProfile(ctx context.Context, accountID uint) (*models.Profile, error)
	UpdateProfile(ctx context.Context, accountID uint, req *ProfileUpdateRequest) (*models.Profile, error)

	// PromoteToTeacher sets the profile role and get-or-creates the matching
	// Instructor. Idempotent.
	PromoteToTeacher(ctx context.Context, accountID uint) error
}

// EnrollmentService maintains the account-course relationship.
type EnrollmentService interface {
	// Enroll creates an active, ungraded enrollment; a second call for the
	// same pair fails with a ConflictError and leaves exactly one row.
	Enroll(ctx context.Context, accountID, courseID uint) (*models.Enrollment, error)

	// RecordGrade is restricted to the instructor bound to the course.
	RecordGrade(ctx context.Context, callerAccountID, courseID uint, req *GradeRequest) (*models.Enrollment, error)

	UpdateStatus(ctx context.Context, callerAccountID, courseID uint, req *StatusUpdateRequest) (*models.Enrollment, error)

	ListForAccount(ctx context.Context, accountID uint) ([]*models.Enrollment, error)
	GetCourseRoster(ctx context.Context, callerAccountID, courseID uint) (*CourseRosterResponse, error)
}

// CatalogService maintains courses and instructors as reference data.
type CatalogService interface {
	ListActiveCourses(ctx context.Context, filters repositories.CourseFilters) (*CourseListResponse, error)
	GetCourse(ctx context.Context, id uint) (*models.Course, error)
	GetCourseWithRoster(ctx context.Context, id uint) (*models.Course, error)
	CreateCourse(ctx context.Context, req *CourseCreateRequest) (*models.Course, error)

	ListInstructors(ctx context.Context, filters repositories.InstructorFilters) (*InstructorListResponse, error)
	GetInstructor(ctx context.Context, id uint) (*models.Instructor, error)
	CreateInstructor(ctx context.Context, req *InstructorCreateRequest) (*models.Instructor, error)
	UpdateInstructor(ctx context.Context, id uint, req *InstructorUpdateRequest) (*models.Instructor, error)
}

// DashboardService builds the role-gated summary views.
type DashboardService interface {
	GetLandingStats(ctx context.Context) (*repositories.LandingStats, error)
	GetStudentDashboard(ctx context.Context, accountID uint) (*StudentDashboardResponse, error)
	GetTeacherDashboard(ctx context.Context, accountID uint) (*TeacherDashboardResponse, error)
	GetAdminDashboard(ctx context.Context) (*AdminDashboardResponse, error)
}

// FeedbackService validates the public contact form and parks the submission
// in the one-shot flash store until the success page reads it.
type FeedbackService interface {
	Submit(ctx context.Context, token string, req *FeedbackRequest) error
	TakeSubmission(ctx context.Context, token string) (*FeedbackRequest, error)
}

// ExportService produces downloadable artifacts.
type ExportService interface {
	// ExportCourseRoster writes the roster workbook for the caller's course.
	ExportCourseRoster(ctx context.Context, callerAccountID, courseID uint, w io.Writer) error
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Auth() AuthService
	Enrollment() EnrollmentService
	Catalog() CatalogService
	Dashboard() DashboardService
	Feedback() FeedbackService
	Export() ExportService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
