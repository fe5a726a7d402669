package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lumenacademy/progress-api/internal/dto"
	"github.com/lumenacademy/progress-api/internal/repository"
)

// DefaultMinScore is the pass threshold applied when a caller does not
// supply one, on the assessment's declared scale.
const DefaultMinScore = 8.0

// CertificateService answers "who currently qualifies for a certificate".
// It never consults already-issued certificates; de-duplication belongs to
// the issuance workflow.
type CertificateService interface {
	GetCertificateEligible(ctx context.Context, params dto.EligibilityParams) ([]dto.CertificateEligibility, error)
}

type certificateService struct {
	assessments repository.AssessmentRepository
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewCertificateService constructs the eligibility query service.
func NewCertificateService(assessments repository.AssessmentRepository, validate *validator.Validate, logger zerolog.Logger) CertificateService {
	return &certificateService{
		assessments: assessments,
		validator:   validate,
		logger:      logger.With().Str("component", "certificate_service").Logger(),
		tracer:      otel.Tracer("github.com/lumenacademy/progress-api/internal/service/certificate"),
	}
}

func (s *certificateService) GetCertificateEligible(ctx context.Context, params dto.EligibilityParams) ([]dto.CertificateEligibility, error) {
	if err := s.validator.Struct(params); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "certificates.eligible", trace.WithAttributes(
		attribute.Float64("certificates.min_score", params.MinScore),
		attribute.Bool("certificates.require_before_deadline", params.RequireBeforeDeadline),
	))
	defer span.End()

	results, err := s.assessments.ListResultsAboveScore(ctx, params.MinScore, params.CourseID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	eligible := make([]dto.CertificateEligibility, 0, len(results))
	for _, result := range results {
		// An ungraded result can never qualify, whatever the threshold.
		if result.Score == nil {
			continue
		}
		if params.RequireBeforeDeadline && !result.SubmittedOnTime() {
			continue
		}

		eligible = append(eligible, dto.NewCertificateEligibility(result))
	}

	span.SetAttributes(attribute.Int("certificates.eligible_count", len(eligible)))

	return eligible, nil
}
