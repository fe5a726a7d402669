package models

import "time"

// Enrollment joins one student to one course and carries the derived
// completion state. CompletionDate and CompletionStatus are a cached
// projection of the live progress calculation, not authoritative state:
// they are stamped when progress reaches 100% and cleared again if the
// course later gains assessments the student has not attempted.
type Enrollment struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	StudentID        uint       `gorm:"not null;uniqueIndex:idx_student_course" json:"student_id"`
	CourseID         uint       `gorm:"not null;uniqueIndex:idx_student_course" json:"course_id"`
	CompletionStatus bool       `gorm:"not null;default:false" json:"completion_status"`
	CompletionDate   *time.Time `json:"completion_date"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	Student          Student    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
	Course           Course     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"course"`
}

// IsCompleted reports whether the cached completion projection marks the
// enrollment as finished.
func (e Enrollment) IsCompleted() bool {
	return e.CompletionStatus && e.CompletionDate != nil
}
