package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/lumenacademy/progress-api/internal/models"
)

// AssessmentRepository defines read operations over assessments and their
// per-student results. The progress engine never mutates either table.
type AssessmentRepository interface {
	ListByCourse(ctx context.Context, courseID uint) ([]models.Assessment, error)
	ListResults(ctx context.Context, studentID uint, assessmentIDs []uint) ([]models.AssessmentResult, error)
	ListResultsAboveScore(ctx context.Context, minScore float64, courseID *uint) ([]models.AssessmentResult, error)
}

type assessmentRepository struct {
	db *gorm.DB
}

// NewAssessmentRepository instantiates the repository.
func NewAssessmentRepository(db *gorm.DB) AssessmentRepository {
	return &assessmentRepository{db: db}
}

func (r *assessmentRepository) ListByCourse(ctx context.Context, courseID uint) ([]models.Assessment, error) {
	var assessments []models.Assessment
	if err := r.db.WithContext(ctx).Model(&models.Assessment{}).
		Where("course_id = ?", courseID).
		Order("id ASC").
		Find(&assessments).Error; err != nil {
		return nil, err
	}

	return assessments, nil
}

func (r *assessmentRepository) ListResults(ctx context.Context, studentID uint, assessmentIDs []uint) ([]models.AssessmentResult, error) {
	if len(assessmentIDs) == 0 {
		return []models.AssessmentResult{}, nil
	}

	var results []models.AssessmentResult
	if err := r.db.WithContext(ctx).Model(&models.AssessmentResult{}).
		Where("student_id = ?", studentID).
		Where("assessment_id IN ?", assessmentIDs).
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}

// ListResultsAboveScore returns graded results scoring at or above minScore,
// optionally restricted to one course. Rows with a NULL score are excluded by
// the comparison itself. Ordering by result id keeps the snapshot
// deterministic for downstream consumers.
func (r *assessmentRepository) ListResultsAboveScore(ctx context.Context, minScore float64, courseID *uint) ([]models.AssessmentResult, error) {
	query := r.db.WithContext(ctx).Model(&models.AssessmentResult{}).
		Preload("Assessment").
		Joins("JOIN assessments ON assessments.id = assessment_results.assessment_id").
		Where("assessment_results.score >= ?", minScore)

	if courseID != nil {
		query = query.Where("assessments.course_id = ?", *courseID)
	}

	var results []models.AssessmentResult
	if err := query.Order("assessment_results.id ASC").Find(&results).Error; err != nil {
		return nil, err
	}

	return results, nil
}
