package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// DefaultSpecialization is assigned when an instructor record is created as a
// side effect of a teacher registration or promotion.
const DefaultSpecialization = "General"

// Instructor is a catalog entity for teaching staff. The AccountID link is
// optional: instructors may exist without an account, in which case the email
// string is the only association.
type Instructor struct {
	ID             uint    `json:"id" gorm:"primaryKey"`
	FirstName      string  `json:"first_name" gorm:"not null;size:100"`
	LastName       string  `json:"last_name" gorm:"not null;size:100"`
	Email          string  `json:"email" gorm:"uniqueIndex;not null;size:255" validate:"omitempty,email"`
	Specialization string  `json:"specialization" gorm:"size:200"`
	Faculty        Faculty `json:"faculty" gorm:"not null;default:IT;size:4" validate:"omitempty,faculty"`
	IsActive       bool    `json:"is_active" gorm:"not null;default:true"`
	AccountID      *uint   `json:"account_id" gorm:"uniqueIndex"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Courses []Course `json:"courses,omitempty" gorm:"foreignKey:InstructorID"`
	Account *Account `json:"account,omitempty" gorm:"foreignKey:AccountID"`
}

func (Instructor) TableName() string {
	return "instructors"
}

func (i *Instructor) FullName() string {
	return fmt.Sprintf("%s %s", i.FirstName, i.LastName)
}
