package models

import (
	"time"

	"gorm.io/gorm"
)

type Course struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	Title         string `json:"title" gorm:"uniqueIndex;not null;size:200" validate:"required,min=1,max=200"`
	Description   string `json:"description" gorm:"type:text"`
	DurationHours int    `json:"duration_hours" gorm:"not null" validate:"required,course_duration"`
	InstructorID  uint   `json:"instructor_id" gorm:"not null;index"`
	IsActive      bool   `json:"is_active" gorm:"not null;default:true;index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Instructor  Instructor   `json:"instructor" gorm:"foreignKey:InstructorID"`
	Enrollments []Enrollment `json:"enrollments,omitempty" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`

	// Computed fields (not stored)
	EnrollmentCount int64 `json:"enrollment_count" gorm:"-"`
}

func (Course) TableName() string {
	return "courses"
}
