package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserRole string
type Role = UserRole // Alias for compatibility

const (
	RoleStudent UserRole = "STUDENT"
	RoleTeacher UserRole = "TEACHER"
	RoleAdmin   UserRole = "ADMIN"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

type Faculty string

const (
	FacultyIT   Faculty = "IT"
	FacultyMath Faculty = "MATH"
	FacultyPhys Faculty = "PHYS"
	FacultyChem Faculty = "CHEM"
	FacultyBio  Faculty = "BIO"
	FacultyEcon Faculty = "ECON"
)

// Faculties lists every valid faculty code.
var Faculties = []Faculty{FacultyIT, FacultyMath, FacultyPhys, FacultyChem, FacultyBio, FacultyEcon}

func (f Faculty) Valid() bool {
	for _, v := range Faculties {
		if f == v {
			return true
		}
	}
	return false
}

// Account is an authenticated identity with credentials. The password hash is
// never serialized; the Profile row is created together with the Account by the
// registration factory and cascades on delete.
type Account struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Username     string `json:"username" gorm:"uniqueIndex;not null;size:30"`
	Email        string `json:"email" gorm:"uniqueIndex;not null;size:255"`
	PasswordHash string `json:"-" gorm:"not null;size:255"`
	FirstName    string `json:"first_name" gorm:"size:100"`
	LastName     string `json:"last_name" gorm:"size:100"`
	IsActive     bool   `json:"is_active" gorm:"not null;default:true"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Profile     *Profile     `json:"profile,omitempty" gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
	Enrollments []Enrollment `json:"enrollments,omitempty" gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
}

func (Account) TableName() string {
	return "accounts"
}

func (a *Account) FullName() string {
	return fmt.Sprintf("%s %s", a.FirstName, a.LastName)
}

// Role reads the profile role, defaulting to student when the profile has not
// been loaded.
func (a *Account) Role() UserRole {
	if a.Profile == nil {
		return RoleStudent
	}
	return a.Profile.Role
}

// Profile holds role, faculty and contact metadata attached one-to-one to an
// Account.
type Profile struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	AccountID uint `json:"account_id" gorm:"uniqueIndex;not null"`

	Phone      string          `json:"phone" gorm:"size:17"`
	Bio        string          `json:"bio" gorm:"type:text"`
	AvatarPath *string         `json:"avatar_path" gorm:"size:500"`
	Role       UserRole        `json:"role" gorm:"not null;default:STUDENT;size:10;index" validate:"omitempty,user_role"`
	Faculty    Faculty         `json:"faculty" gorm:"not null;default:IT;size:4" validate:"omitempty,faculty"`
	DateOfBirth *datatypes.Date `json:"date_of_birth"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

func (p *Profile) IsStudent() bool { return p.Role == RoleStudent }
func (p *Profile) IsTeacher() bool { return p.Role == RoleTeacher }
func (p *Profile) IsAdmin() bool   { return p.Role == RoleAdmin }

// IsStaff reports whether the profile may act on behalf of other accounts.
func (p *Profile) IsStaff() bool {
	return p.Role == RoleTeacher || p.Role == RoleAdmin
}
