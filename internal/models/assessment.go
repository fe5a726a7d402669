package models

import "time"

// Assessment is a gradable unit belonging to exactly one course.
type Assessment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CourseID  uint      `gorm:"not null;index" json:"course_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	MaxScore  float64   `gorm:"not null;default:10" json:"max_score"`
	DueDate   time.Time `gorm:"not null" json:"due_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Course    Course    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"course"`
}

// IsPastDue returns true when the assessment deadline has already passed.
func (a Assessment) IsPastDue(reference time.Time) bool {
	return reference.After(a.DueDate)
}

// AssessmentResult is a student's submission/grade record for one assessment.
// The existence of a row counts as "attempted" for progress purposes even
// when Score is still nil (submitted but not yet graded).
type AssessmentResult struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	AssessmentID   uint       `gorm:"not null;uniqueIndex:idx_assessment_student" json:"assessment_id"`
	StudentID      uint       `gorm:"not null;uniqueIndex:idx_assessment_student" json:"student_id"`
	Score          *float64   `json:"score"`
	SubmissionDate *time.Time `json:"submission_date"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	Assessment     Assessment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assessment"`
	Student        Student    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}

// SubmittedOnTime reports whether the result was submitted at or before the
// assessment deadline. A missing submission date never counts as on time.
func (r AssessmentResult) SubmittedOnTime() bool {
	if r.SubmissionDate == nil {
		return false
	}
	return !r.SubmissionDate.After(r.Assessment.DueDate)
}
