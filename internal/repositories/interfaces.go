package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/UniFlow-2025/enrollment-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type AccountFilters struct {
	Query     string // Search query for name, username or email
	Role      *models.UserRole
	Faculty   *models.Faculty
	Limit     int
	Offset    int
	SortBy    string // "created_at", "username", "last_name"
	SortOrder string // "asc", "desc"
}

type InstructorFilters struct {
	Query      string
	Faculty    *models.Faculty
	ActiveOnly bool
	Limit      int
	Offset     int
}

type CourseFilters struct {
	Query        string
	InstructorID *uint
	ActiveOnly   bool
	Limit        int
	Offset       int
	SortBy       string // "title", "created_at"
	SortOrder    string
}

type EnrollmentFilters struct {
	AccountID *uint
	CourseID  *uint
	Status    *models.EnrollmentStatus
	Limit     int
	Offset    int
}

// ===== SHARED STATISTICS STRUCTS =====

type LandingStats struct {
	TotalStudents int64           `json:"total_students"`
	ActiveCourses int64           `json:"active_courses"`
	RecentCourses []models.Course `json:"recent_courses"`
}

type AdminStats struct {
	TotalAccounts    int64 `json:"total_accounts"`
	TotalStudents    int64 `json:"total_students"`
	TotalInstructors int64 `json:"total_instructors"`
	TotalCourses     int64 `json:"total_courses"`
	TotalEnrollments int64 `json:"total_enrollments"`
}

type CourseEnrollmentStats struct {
	CourseID        uint  `json:"course_id"`
	EnrollmentCount int64 `json:"enrollment_count"`
	HasAnyGrade     bool  `json:"has_any_grade"`
}

// ===== PER-ENTITY REPOSITORY INTERFACES =====

type AccountRepository interface {
	Create(ctx context.Context, tx *gorm.DB, account *models.Account) error
	GetByID(ctx context.Context, id uint) (*models.Account, error)
	// GetByIdentifier resolves a login credential matching either the username
	// or the email, case-insensitively.
	GetByIdentifier(ctx context.Context, identifier string) (*models.Account, error)
	List(ctx context.Context, filters AccountFilters) ([]*models.Account, int64, error)
	GetRecent(ctx context.Context, limit int) ([]*models.Account, error)
	Update(ctx context.Context, tx *gorm.DB, account *models.Account) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type ProfileRepository interface {
	Create(ctx context.Context, tx *gorm.DB, profile *models.Profile) error
	GetByAccountID(ctx context.Context, accountID uint) (*models.Profile, error)
	Update(ctx context.Context, tx *gorm.DB, profile *models.Profile) error
}

type InstructorRepository interface {
	Create(ctx context.Context, tx *gorm.DB, instructor *models.Instructor) error
	GetByID(ctx context.Context, id uint) (*models.Instructor, error)
	GetByEmail(ctx context.Context, email string) (*models.Instructor, error)
	GetByAccountID(ctx context.Context, accountID uint) (*models.Instructor, error)
	List(ctx context.Context, filters InstructorFilters) ([]*models.Instructor, int64, error)
	Update(ctx context.Context, tx *gorm.DB, instructor *models.Instructor) error

	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type CourseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, course *models.Course) error
	GetByID(ctx context.Context, id uint) (*models.Course, error)
	GetByIDWithRoster(ctx context.Context, id uint) (*models.Course, error)
	List(ctx context.Context, filters CourseFilters) ([]*models.Course, int64, error)
	ListByInstructor(ctx context.Context, instructorID uint) ([]*models.Course, error)
	GetRecentActive(ctx context.Context, limit int) ([]models.Course, error)
	Update(ctx context.Context, tx *gorm.DB, course *models.Course) error

	ExistsByTitle(ctx context.Context, title string) (bool, error)
}

type EnrollmentRepository interface {
	// Create inserts the enrollment; a second row for the same (account,
	// course) pair fails with ErrDuplicate from the unique index.
	Create(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error
	GetByAccountAndCourse(ctx context.Context, accountID, courseID uint) (*models.Enrollment, error)
	ListByAccount(ctx context.Context, accountID uint) ([]*models.Enrollment, error)
	ListByCourse(ctx context.Context, courseID uint) ([]*models.Enrollment, error)
	Update(ctx context.Context, tx *gorm.DB, enrollment *models.Enrollment) error

	CountByCourse(ctx context.Context, courseID uint) (int64, error)
	HasAnyGrade(ctx context.Context, courseID uint) (bool, error)
	GetCourseStats(ctx context.Context, courseIDs []uint) ([]CourseEnrollmentStats, error)
}

type DashboardRepository interface {
	GetLandingStats(ctx context.Context) (*LandingStats, error)
	GetAdminStats(ctx context.Context) (*AdminStats, error)
}
