package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/lumenacademy/progress-api/internal/models"
)

// CertificateRepository defines data operations for issued certificates.
type CertificateRepository interface {
	ExistsForStudentAndCourse(ctx context.Context, studentID, courseID uint) (bool, error)
	Create(ctx context.Context, certificate *models.Certificate) error
	ListByStudent(ctx context.Context, studentID uint) ([]models.Certificate, error)
}

type certificateRepository struct {
	db *gorm.DB
}

// NewCertificateRepository instantiates the repository.
func NewCertificateRepository(db *gorm.DB) CertificateRepository {
	return &certificateRepository{db: db}
}

func (r *certificateRepository) ExistsForStudentAndCourse(ctx context.Context, studentID, courseID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Certificate{}).
		Where("student_id = ?", studentID).
		Where("course_id = ?", courseID).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *certificateRepository) Create(ctx context.Context, certificate *models.Certificate) error {
	return r.db.WithContext(ctx).Create(certificate).Error
}

func (r *certificateRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Certificate, error) {
	var certificates []models.Certificate
	if err := r.db.WithContext(ctx).Model(&models.Certificate{}).
		Preload("Course").
		Where("student_id = ?", studentID).
		Order("issued_at DESC").
		Find(&certificates).Error; err != nil {
		return nil, err
	}

	return certificates, nil
}
