package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lumenacademy/progress-api/internal/dto"
	"github.com/lumenacademy/progress-api/internal/models"
	"github.com/lumenacademy/progress-api/internal/repository"
)

func newTestCertificateService(db *gorm.DB) CertificateService {
	validate := validator.New(validator.WithRequiredStructEnabled())

	return NewCertificateService(repository.NewAssessmentRepository(db), validate, zerolog.Nop())
}

func seedResultAt(t *testing.T, db *gorm.DB, assessmentID, studentID uint, score *float64, submitted *time.Time) models.AssessmentResult {
	t.Helper()

	result := models.AssessmentResult{
		AssessmentID:   assessmentID,
		StudentID:      studentID,
		Score:          score,
		SubmissionDate: submitted,
	}
	require.NoError(t, db.Create(&result).Error)

	return result
}

func floatPointer(v float64) *float64 {
	return &v
}

func TestGetCertificateEligibleFiltersByScore(t *testing.T) {
	db := openTestDB(t, "cert_scores")
	seedEnrollment(t, db, 1, 10, "Certified Course")
	assessments := seedAssessments(t, db, 10, 4)

	now := time.Now()
	seedResultAt(t, db, assessments[0].ID, 1, floatPointer(9), &now)
	seedResultAt(t, db, assessments[1].ID, 1, floatPointer(7), &now)
	seedResultAt(t, db, assessments[2].ID, 1, nil, &now)
	seedResultAt(t, db, assessments[3].ID, 1, floatPointer(8), &now)

	svc := newTestCertificateService(db)

	eligible, err := svc.GetCertificateEligible(context.Background(), dto.EligibilityParams{MinScore: 8})
	require.NoError(t, err)
	require.Len(t, eligible, 2)
	require.Equal(t, 9.0, eligible[0].Score)
	require.Equal(t, 8.0, eligible[1].Score)
	require.Equal(t, uint(10), eligible[0].CourseID)
}

func TestGetCertificateEligibleCourseFilter(t *testing.T) {
	db := openTestDB(t, "cert_course")
	seedEnrollment(t, db, 1, 10, "Course A")
	require.NoError(t, db.Create(&models.Course{ID: 20, Title: "Course B"}).Error)
	courseA := seedAssessments(t, db, 10, 1)
	courseB := seedAssessments(t, db, 20, 1)

	now := time.Now()
	seedResultAt(t, db, courseA[0].ID, 1, floatPointer(10), &now)
	seedResultAt(t, db, courseB[0].ID, 1, floatPointer(10), &now)

	svc := newTestCertificateService(db)

	courseID := uint(20)
	eligible, err := svc.GetCertificateEligible(context.Background(), dto.EligibilityParams{MinScore: 8, CourseID: &courseID})
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	require.Equal(t, uint(20), eligible[0].CourseID)
}

func TestGetCertificateEligibleDeadlineFilter(t *testing.T) {
	db := openTestDB(t, "cert_deadline")
	seedEnrollment(t, db, 1, 10, "Deadline Course")

	due := time.Now().Add(24 * time.Hour)
	onTime := due.Add(-time.Hour)
	late := due.Add(time.Hour)

	var assessments []models.Assessment
	for i := 0; i < 3; i++ {
		assessment := models.Assessment{CourseID: 10, Title: "Exam", MaxScore: 10, DueDate: due}
		require.NoError(t, db.Create(&assessment).Error)
		assessments = append(assessments, assessment)
	}

	seedResultAt(t, db, assessments[0].ID, 1, floatPointer(9), &onTime)
	seedResultAt(t, db, assessments[1].ID, 1, floatPointer(9), &late)
	// A missing submission date can never count as on time.
	seedResultAt(t, db, assessments[2].ID, 1, floatPointer(9), nil)

	svc := newTestCertificateService(db)

	eligible, err := svc.GetCertificateEligible(context.Background(), dto.EligibilityParams{MinScore: 8, RequireBeforeDeadline: true})
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	require.Equal(t, assessments[0].ID, eligible[0].AssessmentID)

	all, err := svc.GetCertificateEligible(context.Background(), dto.EligibilityParams{MinScore: 8})
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestGetCertificateEligibleRejectsNegativeThreshold(t *testing.T) {
	db := openTestDB(t, "cert_invalid")

	svc := newTestCertificateService(db)

	_, err := svc.GetCertificateEligible(context.Background(), dto.EligibilityParams{MinScore: -1})
	require.Error(t, err)
}
