package dto

import "time"

// CourseProgressInfo is the derived progress snapshot for one enrollment.
// It is produced fresh on every calculation and never persisted.
type CourseProgressInfo struct {
	CourseID             uint       `json:"course_id"`
	CourseName           string     `json:"course_name"`
	InstructorName       string     `json:"instructor_name"`
	TotalAssessments     int        `json:"total_assessments"`
	CompletedAssessments int        `json:"completed_assessments"`
	ProgressPercentage   float64    `json:"progress_percentage"`
	IsCompleted          bool       `json:"is_completed"`
	CompletionDate       *time.Time `json:"completion_date"`
	// Degraded marks entries whose underlying store reads failed and whose
	// counters were zeroed so the rest of a batch could still report.
	Degraded bool `json:"degraded,omitempty"`
}

// OverallProgressResponse is the aggregate across all of a student's
// enrollments.
type OverallProgressResponse struct {
	StudentID         uint    `json:"student_id"`
	EnrollmentCount   int     `json:"enrollment_count"`
	OverallPercentage float64 `json:"overall_percentage"`
}
