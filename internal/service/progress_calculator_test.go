package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lumenacademy/progress-api/internal/models"
	"github.com/lumenacademy/progress-api/internal/repository"
)

func openTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Student{},
		&models.Course{},
		&models.Enrollment{},
		&models.Assessment{},
		&models.AssessmentResult{},
		&models.Certificate{},
		&models.ActivityLog{},
	))

	return db
}

func seedEnrollment(t *testing.T, db *gorm.DB, studentID, courseID uint, title string) {
	t.Helper()

	require.NoError(t, db.Create(&models.Student{ID: studentID, Name: "Test Student", Email: fmt.Sprintf("student%d-%s@example.com", studentID, title)}).Error)
	require.NoError(t, db.Create(&models.Course{ID: courseID, Title: title, InstructorName: "Dr. Reed"}).Error)
	require.NoError(t, db.Create(&models.Enrollment{StudentID: studentID, CourseID: courseID}).Error)
}

func seedAssessments(t *testing.T, db *gorm.DB, courseID uint, count int) []models.Assessment {
	t.Helper()

	assessments := make([]models.Assessment, 0, count)
	for i := 0; i < count; i++ {
		assessment := models.Assessment{
			CourseID: courseID,
			Title:    fmt.Sprintf("Quiz %d", i+1),
			MaxScore: 10,
			DueDate:  time.Now().Add(72 * time.Hour),
		}
		require.NoError(t, db.Create(&assessment).Error)
		assessments = append(assessments, assessment)
	}

	return assessments
}

func seedResult(t *testing.T, db *gorm.DB, assessmentID, studentID uint, score *float64) {
	t.Helper()

	submitted := time.Now()
	require.NoError(t, db.Create(&models.AssessmentResult{
		AssessmentID:   assessmentID,
		StudentID:      studentID,
		Score:          score,
		SubmissionDate: &submitted,
	}).Error)
}

func newTestValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func newTestCalculator(db *gorm.DB) ProgressCalculator {
	enrollments := repository.NewEnrollmentRepository(db)
	assessments := repository.NewAssessmentRepository(db)
	activity := NewActivityService(repository.NewActivityLogRepository(db), newTestValidator(), zerolog.Nop())

	return NewProgressCalculator(enrollments, assessments, activity, nil, zerolog.Nop())
}

func TestCalculateProgressFullCompletionStampsDate(t *testing.T) {
	db := openTestDB(t, "calc_full")
	seedEnrollment(t, db, 1, 10, "Algorithms")
	assessments := seedAssessments(t, db, 10, 4)
	for _, assessment := range assessments {
		// Scores are irrelevant for completion; one stays ungraded.
		seedResult(t, db, assessment.ID, 1, nil)
	}

	svc := newTestCalculator(db)

	info, err := svc.CalculateProgress(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Equal(t, 4, info.TotalAssessments)
	require.Equal(t, 4, info.CompletedAssessments)
	require.Equal(t, 100.0, info.ProgressPercentage)
	require.True(t, info.IsCompleted)
	require.NotNil(t, info.CompletionDate)

	var enrollment models.Enrollment
	require.NoError(t, db.Where("student_id = ? AND course_id = ?", 1, 10).First(&enrollment).Error)
	require.True(t, enrollment.CompletionStatus)
	require.NotNil(t, enrollment.CompletionDate)
}

func TestCalculateProgressPartial(t *testing.T) {
	db := openTestDB(t, "calc_partial")
	seedEnrollment(t, db, 1, 10, "Databases")
	assessments := seedAssessments(t, db, 10, 5)
	score := 7.5
	seedResult(t, db, assessments[0].ID, 1, &score)
	seedResult(t, db, assessments[1].ID, 1, nil)

	svc := newTestCalculator(db)

	info, err := svc.CalculateProgress(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Equal(t, 5, info.TotalAssessments)
	require.Equal(t, 2, info.CompletedAssessments)
	require.Equal(t, 40.0, info.ProgressPercentage)
	require.False(t, info.IsCompleted)
	require.Nil(t, info.CompletionDate)
}

func TestCalculateProgressNoAssessmentsIsZeroNotError(t *testing.T) {
	db := openTestDB(t, "calc_empty")
	seedEnrollment(t, db, 1, 10, "Empty Course")

	// A stale completion flag must not survive a calculation showing 0%.
	staleDate := time.Now().Add(-24 * time.Hour)
	require.NoError(t, db.Model(&models.Enrollment{}).
		Where("student_id = ? AND course_id = ?", 1, 10).
		Updates(map[string]interface{}{"completion_date": staleDate, "completion_status": true}).Error)

	svc := newTestCalculator(db)

	info, err := svc.CalculateProgress(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Equal(t, 0, info.TotalAssessments)
	require.Equal(t, 0.0, info.ProgressPercentage)
	require.False(t, info.IsCompleted)
	require.Nil(t, info.CompletionDate)

	var enrollment models.Enrollment
	require.NoError(t, db.Where("student_id = ? AND course_id = ?", 1, 10).First(&enrollment).Error)
	require.False(t, enrollment.CompletionStatus)
	require.Nil(t, enrollment.CompletionDate)
}

func TestCalculateProgressClearsStaleCompletionAfterNewAssessment(t *testing.T) {
	db := openTestDB(t, "calc_heal")
	seedEnrollment(t, db, 1, 10, "Networks")
	assessments := seedAssessments(t, db, 10, 2)
	for _, assessment := range assessments {
		seedResult(t, db, assessment.ID, 1, nil)
	}

	svc := newTestCalculator(db)

	first, err := svc.CalculateProgress(context.Background(), 1, 10)
	require.NoError(t, err)
	require.True(t, first.IsCompleted)
	require.NotNil(t, first.CompletionDate)

	// A new assessment drops the live percentage below 100; the stored
	// completion date must be cleared on the next calculation.
	seedAssessments(t, db, 10, 1)

	second, err := svc.CalculateProgress(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Equal(t, 3, second.TotalAssessments)
	require.Equal(t, 2, second.CompletedAssessments)
	require.False(t, second.IsCompleted)
	require.Nil(t, second.CompletionDate)

	var enrollment models.Enrollment
	require.NoError(t, db.Where("student_id = ? AND course_id = ?", 1, 10).First(&enrollment).Error)
	require.False(t, enrollment.CompletionStatus)
	require.Nil(t, enrollment.CompletionDate)
}

func TestCalculateProgressIdempotent(t *testing.T) {
	db := openTestDB(t, "calc_idem")
	seedEnrollment(t, db, 1, 10, "Compilers")
	assessments := seedAssessments(t, db, 10, 4)
	seedResult(t, db, assessments[0].ID, 1, nil)
	seedResult(t, db, assessments[1].ID, 1, nil)
	seedResult(t, db, assessments[2].ID, 1, nil)

	svc := newTestCalculator(db)

	first, err := svc.CalculateProgress(context.Background(), 1, 10)
	require.NoError(t, err)

	second, err := svc.CalculateProgress(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 75.0, second.ProgressPercentage)
}

// flakyAssessmentRepo fails every read for one course and delegates the rest.
type flakyAssessmentRepo struct {
	repository.AssessmentRepository
	failCourseID uint
}

func (r flakyAssessmentRepo) ListByCourse(ctx context.Context, courseID uint) ([]models.Assessment, error) {
	if courseID == r.failCourseID {
		return nil, errors.New("assessment store unavailable")
	}
	return r.AssessmentRepository.ListByCourse(ctx, courseID)
}

func TestCalculateProgressStoreFailureDegrades(t *testing.T) {
	db := openTestDB(t, "calc_degraded")
	seedEnrollment(t, db, 1, 10, "Flaky Course")

	enrollments := repository.NewEnrollmentRepository(db)
	assessments := flakyAssessmentRepo{AssessmentRepository: repository.NewAssessmentRepository(db), failCourseID: 10}
	svc := NewProgressCalculator(enrollments, assessments, nil, nil, zerolog.Nop())

	info, err := svc.CalculateProgress(context.Background(), 1, 10)
	require.NoError(t, err)
	require.True(t, info.Degraded)
	require.Equal(t, uint(10), info.CourseID)
	require.Equal(t, PlaceholderCourseName, info.CourseName)
	require.Equal(t, 0, info.TotalAssessments)
	require.Equal(t, 0, info.CompletedAssessments)
	require.Equal(t, 0.0, info.ProgressPercentage)
	require.False(t, info.IsCompleted)
	require.Nil(t, info.CompletionDate)
}

func TestCalculateProgressNotEnrolled(t *testing.T) {
	db := openTestDB(t, "calc_notenrolled")

	svc := newTestCalculator(db)

	_, err := svc.CalculateProgress(context.Background(), 42, 99)
	require.ErrorIs(t, err, ErrNotEnrolled)
}

func TestCalculateProgressCancelledPropagates(t *testing.T) {
	db := openTestDB(t, "calc_cancelled")
	seedEnrollment(t, db, 1, 10, "Operating Systems")
	seedAssessments(t, db, 10, 2)

	svc := newTestCalculator(db)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.CalculateProgress(ctx, 1, 10)
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
}

func TestComputePercentageRounding(t *testing.T) {
	require.Equal(t, 0.0, computePercentage(0, 0))
	require.Equal(t, 33.3, computePercentage(3, 1))
	require.Equal(t, 66.7, computePercentage(3, 2))
	require.Equal(t, 100.0, computePercentage(3, 3))
	require.Equal(t, 40.0, computePercentage(5, 2))
}
