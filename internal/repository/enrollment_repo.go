package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/lumenacademy/progress-api/internal/models"
)

// EnrollmentRepository defines data operations for enrollments.
type EnrollmentRepository interface {
	ListByStudent(ctx context.Context, studentID uint) ([]models.Enrollment, error)
	GetByStudentAndCourse(ctx context.Context, studentID, courseID uint) (models.Enrollment, error)
	SetCompletion(ctx context.Context, studentID, courseID uint, completionDate *time.Time, status bool) error
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository instantiates the repository.
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Enrollment{}).Preload("Course")
}

func (r *enrollmentRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	if err := r.baseQuery(ctx).
		Where("student_id = ?", studentID).
		Order("id ASC").
		Find(&enrollments).Error; err != nil {
		return nil, err
	}

	return enrollments, nil
}

func (r *enrollmentRepository) GetByStudentAndCourse(ctx context.Context, studentID, courseID uint) (models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := r.baseQuery(ctx).
		Where("student_id = ?", studentID).
		Where("course_id = ?", courseID).
		First(&enrollment).Error; err != nil {
		return models.Enrollment{}, err
	}

	return enrollment, nil
}

// SetCompletion writes both completion columns in a single UPDATE so that
// concurrent recalculations for the same enrollment degenerate to
// last-write-wins instead of interleaved partial updates.
func (r *enrollmentRepository) SetCompletion(ctx context.Context, studentID, courseID uint, completionDate *time.Time, status bool) error {
	return r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("student_id = ?", studentID).
		Where("course_id = ?", courseID).
		Updates(map[string]interface{}{
			"completion_date":   completionDate,
			"completion_status": status,
		}).Error
}
