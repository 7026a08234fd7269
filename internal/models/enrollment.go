package models

import (
	"time"
)

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentDropped   EnrollmentStatus = "dropped"
)

func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentActive, EnrollmentCompleted, EnrollmentDropped:
		return true
	}
	return false
}

// statusTransitions is the fixed transition table for enrollment status.
// Completed is terminal; a dropped student may be re-activated.
var statusTransitions = map[EnrollmentStatus][]EnrollmentStatus{
	EnrollmentActive:    {EnrollmentCompleted, EnrollmentDropped},
	EnrollmentDropped:   {EnrollmentActive},
	EnrollmentCompleted: {},
}

// CanTransition reports whether status may move from current to next.
func (s EnrollmentStatus) CanTransition(next EnrollmentStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Enrollment is the relationship record between an Account and a Course.
// At most one row may exist per (account, course) pair; the composite unique
// index is the only guard, so concurrent enrollments resolve to one success
// and one constraint violation.
type Enrollment struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	AccountID uint `json:"account_id" gorm:"not null;uniqueIndex:idx_account_course"`
	CourseID  uint `json:"course_id" gorm:"not null;uniqueIndex:idx_account_course"`

	EnrolledAt time.Time        `json:"enrolled_at" gorm:"not null;autoCreateTime;index"`
	Status     EnrollmentStatus `json:"status" gorm:"not null;default:active;size:10" validate:"omitempty,enrollment_status"`
	Grade      *float64         `json:"grade" validate:"omitempty,grade_range"`

	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Account Account `json:"account,omitempty" gorm:"foreignKey:AccountID"`
	Course  Course  `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
