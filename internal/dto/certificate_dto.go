package dto

import (
	"time"

	"github.com/lumenacademy/progress-api/internal/models"
)

// EligibilityParams configures a certificate eligibility query. MinScore is
// the pass threshold on the assessment's declared scale; CourseID optionally
// restricts the query to one course; RequireBeforeDeadline additionally
// demands an on-time submission.
type EligibilityParams struct {
	MinScore              float64 `json:"min_score" validate:"gte=0"`
	CourseID              *uint   `json:"course_id"`
	RequireBeforeDeadline bool    `json:"require_before_deadline"`
}

// CertificateEligibility identifies a (student, course) pair that currently
// qualifies for certificate issuance, with the qualifying result attached.
type CertificateEligibility struct {
	StudentID      uint       `json:"student_id"`
	CourseID       uint       `json:"course_id"`
	ResultID       uint       `json:"result_id"`
	AssessmentID   uint       `json:"assessment_id"`
	Score          float64    `json:"score"`
	SubmissionDate *time.Time `json:"submission_date"`
}

// NewCertificateEligibility maps a qualifying result row to its eligibility
// entry.
func NewCertificateEligibility(result models.AssessmentResult) CertificateEligibility {
	score := 0.0
	if result.Score != nil {
		score = *result.Score
	}

	return CertificateEligibility{
		StudentID:      result.StudentID,
		CourseID:       result.Assessment.CourseID,
		ResultID:       result.ID,
		AssessmentID:   result.AssessmentID,
		Score:          score,
		SubmissionDate: result.SubmissionDate,
	}
}

// CertificateResponse is the API view of an issued certificate record.
type CertificateResponse struct {
	ID              uint      `json:"id"`
	StudentID       uint      `json:"student_id"`
	CourseID        uint      `json:"course_id"`
	CertificateCode string    `json:"certificate_code"`
	IssuedAt        time.Time `json:"issued_at"`
}

// NewCertificateResponse maps a certificate model to its response shape.
func NewCertificateResponse(certificate models.Certificate) CertificateResponse {
	return CertificateResponse{
		ID:              certificate.ID,
		StudentID:       certificate.StudentID,
		CourseID:        certificate.CourseID,
		CertificateCode: certificate.CertificateCode,
		IssuedAt:        certificate.IssuedAt,
	}
}
