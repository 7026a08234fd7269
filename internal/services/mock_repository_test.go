package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/UniFlow-2025/enrollment-service/internal/models"
	"github.com/UniFlow-2025/enrollment-service/internal/repositories"
)

// mockRepository is an in-memory Repository for service tests. It enforces the
// same uniqueness rules the real schema does, so conflict paths behave alike.
type mockRepository struct {
	accounts    map[uint]*models.Account
	profiles    map[uint]*models.Profile
	instructors map[uint]*models.Instructor
	courses     map[uint]*models.Course
	enrollments map[uint]*models.Enrollment
	nextID      uint
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		accounts:    make(map[uint]*models.Account),
		profiles:    make(map[uint]*models.Profile),
		instructors: make(map[uint]*models.Instructor),
		courses:     make(map[uint]*models.Course),
		enrollments: make(map[uint]*models.Enrollment),
	}
}

func (m *mockRepository) id() uint {
	m.nextID++
	return m.nextID
}

func (m *mockRepository) Account() repositories.AccountRepository       { return (*mockAccounts)(m) }
func (m *mockRepository) Profile() repositories.ProfileRepository       { return (*mockProfiles)(m) }
func (m *mockRepository) Instructor() repositories.InstructorRepository { return (*mockInstructors)(m) }
func (m *mockRepository) Course() repositories.CourseRepository         { return (*mockCourses)(m) }
func (m *mockRepository) Enrollment() repositories.EnrollmentRepository { return (*mockEnrollments)(m) }
func (m *mockRepository) Dashboard() repositories.DashboardRepository   { return (*mockDashboard)(m) }

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

// ===== ACCOUNTS =====

type mockAccounts mockRepository

func (m *mockAccounts) Create(_ context.Context, _ *gorm.DB, account *models.Account) error {
	for _, a := range m.accounts {
		if strings.EqualFold(a.Username, account.Username) || strings.EqualFold(a.Email, account.Email) {
			return repositories.ErrDuplicate
		}
	}
	account.ID = (*mockRepository)(m).id()
	account.CreatedAt = time.Now()
	m.accounts[account.ID] = account
	return nil
}

func (m *mockAccounts) GetByID(_ context.Context, id uint) (*models.Account, error) {
	account, ok := m.accounts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	m.attachProfile(account)
	return account, nil
}

func (m *mockAccounts) GetByIdentifier(_ context.Context, identifier string) (*models.Account, error) {
	for _, a := range m.accounts {
		if strings.EqualFold(a.Username, identifier) || strings.EqualFold(a.Email, identifier) {
			m.attachProfile(a)
			return a, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *mockAccounts) attachProfile(account *models.Account) {
	for _, p := range m.profiles {
		if p.AccountID == account.ID {
			account.Profile = p
			return
		}
	}
}

func (m *mockAccounts) List(_ context.Context, filters repositories.AccountFilters) ([]*models.Account, int64, error) {
	var out []*models.Account
	for _, a := range m.accounts {
		m.attachProfile(a)
		if filters.Role != nil && a.Role() != *filters.Role {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (m *mockAccounts) GetRecent(_ context.Context, limit int) ([]*models.Account, error) {
	all, _, _ := m.List(context.Background(), repositories.AccountFilters{})
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (m *mockAccounts) Update(_ context.Context, _ *gorm.DB, account *models.Account) error {
	if _, ok := m.accounts[account.ID]; !ok {
		return repositories.ErrNotFound
	}
	m.accounts[account.ID] = account
	return nil
}

func (m *mockAccounts) Delete(_ context.Context, _ *gorm.DB, id uint) error {
	if _, ok := m.accounts[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.accounts, id)
	for pid, p := range m.profiles {
		if p.AccountID == id {
			delete(m.profiles, pid)
		}
	}
	for eid, e := range m.enrollments {
		if e.AccountID == id {
			delete(m.enrollments, eid)
		}
	}
	return nil
}

func (m *mockAccounts) ExistsByUsername(_ context.Context, username string) (bool, error) {
	for _, a := range m.accounts {
		if strings.EqualFold(a.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAccounts) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, a := range m.accounts {
		if strings.EqualFold(a.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

// ===== PROFILES =====

type mockProfiles mockRepository

func (m *mockProfiles) Create(_ context.Context, _ *gorm.DB, profile *models.Profile) error {
	for _, p := range m.profiles {
		if p.AccountID == profile.AccountID {
			return repositories.ErrDuplicate
		}
	}
	profile.ID = (*mockRepository)(m).id()
	m.profiles[profile.ID] = profile
	return nil
}

func (m *mockProfiles) GetByAccountID(_ context.Context, accountID uint) (*models.Profile, error) {
	for _, p := range m.profiles {
		if p.AccountID == accountID {
			return p, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *mockProfiles) Update(_ context.Context, _ *gorm.DB, profile *models.Profile) error {
	if _, ok := m.profiles[profile.ID]; !ok {
		return repositories.ErrNotFound
	}
	m.profiles[profile.ID] = profile
	return nil
}

// ===== INSTRUCTORS =====

type mockInstructors mockRepository

func (m *mockInstructors) Create(_ context.Context, _ *gorm.DB, instructor *models.Instructor) error {
	for _, i := range m.instructors {
		if strings.EqualFold(i.Email, instructor.Email) {
			return repositories.ErrDuplicate
		}
	}
	instructor.ID = (*mockRepository)(m).id()
	m.instructors[instructor.ID] = instructor
	return nil
}

func (m *mockInstructors) GetByID(_ context.Context, id uint) (*models.Instructor, error) {
	instructor, ok := m.instructors[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return instructor, nil
}

func (m *mockInstructors) GetByEmail(_ context.Context, email string) (*models.Instructor, error) {
	for _, i := range m.instructors {
		if strings.EqualFold(i.Email, email) {
			return i, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *mockInstructors) GetByAccountID(_ context.Context, accountID uint) (*models.Instructor, error) {
	for _, i := range m.instructors {
		if i.AccountID != nil && *i.AccountID == accountID {
			return i, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *mockInstructors) List(_ context.Context, filters repositories.InstructorFilters) ([]*models.Instructor, int64, error) {
	var out []*models.Instructor
	for _, i := range m.instructors {
		if filters.ActiveOnly && !i.IsActive {
			continue
		}
		out = append(out, i)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (m *mockInstructors) Update(_ context.Context, _ *gorm.DB, instructor *models.Instructor) error {
	if _, ok := m.instructors[instructor.ID]; !ok {
		return repositories.ErrNotFound
	}
	m.instructors[instructor.ID] = instructor
	return nil
}

func (m *mockInstructors) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(context.Background(), email)
	if err == nil {
		return true, nil
	}
	return false, nil
}

// ===== COURSES =====

type mockCourses mockRepository

func (m *mockCourses) Create(_ context.Context, _ *gorm.DB, course *models.Course) error {
	for _, c := range m.courses {
		if c.Title == course.Title {
			return repositories.ErrDuplicate
		}
	}
	course.ID = (*mockRepository)(m).id()
	course.CreatedAt = time.Now()
	m.courses[course.ID] = course
	return nil
}

func (m *mockCourses) GetByID(_ context.Context, id uint) (*models.Course, error) {
	course, ok := m.courses[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return course, nil
}

func (m *mockCourses) GetByIDWithRoster(ctx context.Context, id uint) (*models.Course, error) {
	course, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	course.Enrollments = nil
	for _, e := range m.enrollments {
		if e.CourseID != id {
			continue
		}
		enrollment := *e
		if a, ok := m.accounts[e.AccountID]; ok {
			enrollment.Account = *a
		}
		course.Enrollments = append(course.Enrollments, enrollment)
	}
	sort.Slice(course.Enrollments, func(i, j int) bool {
		return course.Enrollments[i].ID < course.Enrollments[j].ID
	})
	return course, nil
}

func (m *mockCourses) List(_ context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	var out []*models.Course
	for _, c := range m.courses {
		if filters.ActiveOnly && !c.IsActive {
			continue
		}
		if filters.InstructorID != nil && c.InstructorID != *filters.InstructorID {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (m *mockCourses) ListByInstructor(ctx context.Context, instructorID uint) ([]*models.Course, error) {
	out, _, err := m.List(ctx, repositories.CourseFilters{InstructorID: &instructorID})
	return out, err
}

func (m *mockCourses) GetRecentActive(_ context.Context, limit int) ([]models.Course, error) {
	var out []models.Course
	for _, c := range m.courses {
		if c.IsActive {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockCourses) Update(_ context.Context, _ *gorm.DB, course *models.Course) error {
	if _, ok := m.courses[course.ID]; !ok {
		return repositories.ErrNotFound
	}
	m.courses[course.ID] = course
	return nil
}

func (m *mockCourses) ExistsByTitle(_ context.Context, title string) (bool, error) {
	for _, c := range m.courses {
		if c.Title == title {
			return true, nil
		}
	}
	return false, nil
}

// ===== ENROLLMENTS =====

type mockEnrollments mockRepository

func (m *mockEnrollments) Create(_ context.Context, _ *gorm.DB, enrollment *models.Enrollment) error {
	for _, e := range m.enrollments {
		if e.AccountID == enrollment.AccountID && e.CourseID == enrollment.CourseID {
			return repositories.ErrDuplicate
		}
	}
	enrollment.ID = (*mockRepository)(m).id()
	enrollment.EnrolledAt = time.Now()
	m.enrollments[enrollment.ID] = enrollment
	return nil
}

func (m *mockEnrollments) GetByAccountAndCourse(_ context.Context, accountID, courseID uint) (*models.Enrollment, error) {
	for _, e := range m.enrollments {
		if e.AccountID == accountID && e.CourseID == courseID {
			return e, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *mockEnrollments) ListByAccount(_ context.Context, accountID uint) ([]*models.Enrollment, error) {
	var out []*models.Enrollment
	for _, e := range m.enrollments {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockEnrollments) ListByCourse(_ context.Context, courseID uint) ([]*models.Enrollment, error) {
	var out []*models.Enrollment
	for _, e := range m.enrollments {
		if e.CourseID == courseID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockEnrollments) Update(_ context.Context, _ *gorm.DB, enrollment *models.Enrollment) error {
	if _, ok := m.enrollments[enrollment.ID]; !ok {
		return repositories.ErrNotFound
	}
	m.enrollments[enrollment.ID] = enrollment
	return nil
}

func (m *mockEnrollments) CountByCourse(_ context.Context, courseID uint) (int64, error) {
	var n int64
	for _, e := range m.enrollments {
		if e.CourseID == courseID {
			n++
		}
	}
	return n, nil
}

func (m *mockEnrollments) HasAnyGrade(_ context.Context, courseID uint) (bool, error) {
	for _, e := range m.enrollments {
		if e.CourseID == courseID && e.Grade != nil {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockEnrollments) GetCourseStats(ctx context.Context, courseIDs []uint) ([]repositories.CourseEnrollmentStats, error) {
	out := make([]repositories.CourseEnrollmentStats, 0, len(courseIDs))
	for _, id := range courseIDs {
		count, _ := m.CountByCourse(ctx, id)
		hasGrade, _ := m.HasAnyGrade(ctx, id)
		out = append(out, repositories.CourseEnrollmentStats{
			CourseID:        id,
			EnrollmentCount: count,
			HasAnyGrade:     hasGrade,
		})
	}
	return out, nil
}

// ===== DASHBOARD =====

type mockDashboard mockRepository

func (m *mockDashboard) GetLandingStats(ctx context.Context) (*repositories.LandingStats, error) {
	stats := &repositories.LandingStats{}
	for _, p := range m.profiles {
		if p.Role == models.RoleStudent {
			stats.TotalStudents++
		}
	}
	for _, c := range m.courses {
		if c.IsActive {
			stats.ActiveCourses++
		}
	}
	recent, _ := (*mockCourses)(m).GetRecentActive(ctx, 3)
	stats.RecentCourses = recent
	return stats, nil
}

func (m *mockDashboard) GetAdminStats(_ context.Context) (*repositories.AdminStats, error) {
	stats := &repositories.AdminStats{
		TotalAccounts:    int64(len(m.accounts)),
		TotalInstructors: int64(len(m.instructors)),
		TotalCourses:     int64(len(m.courses)),
		TotalEnrollments: int64(len(m.enrollments)),
	}
	for _, p := range m.profiles {
		if p.Role == models.RoleStudent {
			stats.TotalStudents++
		}
	}
	return stats, nil
}
