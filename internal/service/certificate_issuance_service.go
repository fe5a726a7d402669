package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lumenacademy/progress-api/internal/dto"
	"github.com/lumenacademy/progress-api/internal/models"
	"github.com/lumenacademy/progress-api/internal/observability"
	"github.com/lumenacademy/progress-api/internal/repository"
)

// CertificateIssuanceService turns eligibility entries into persisted
// certificate records, skipping pairs that already hold one. Rendering the
// certificate artifact stays in the external workflow.
type CertificateIssuanceService interface {
	IssueEligible(ctx context.Context, params dto.EligibilityParams) ([]dto.CertificateResponse, error)
}

type certificateIssuanceService struct {
	eligibility  CertificateService
	certificates repository.CertificateRepository
	activity     ActivityRecorder
	events       EventPublisher
	logger       zerolog.Logger
	tracer       trace.Tracer
	now          func() time.Time
}

// NewCertificateIssuanceService constructs the issuance workflow.
func NewCertificateIssuanceService(eligibility CertificateService, certificates repository.CertificateRepository, activity ActivityRecorder, events EventPublisher, logger zerolog.Logger) CertificateIssuanceService {
	return &certificateIssuanceService{
		eligibility:  eligibility,
		certificates: certificates,
		activity:     activity,
		events:       events,
		logger:       logger.With().Str("component", "certificate_issuance_service").Logger(),
		tracer:       otel.Tracer("github.com/lumenacademy/progress-api/internal/service/certificate_issuance"),
		now:          time.Now,
	}
}

func (s *certificateIssuanceService) IssueEligible(ctx context.Context, params dto.EligibilityParams) ([]dto.CertificateResponse, error) {
	ctx, span := s.tracer.Start(ctx, "certificates.issue_eligible")
	defer span.End()

	eligible, err := s.eligibility.GetCertificateEligible(ctx, params)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	type pair struct {
		studentID uint
		courseID  uint
	}

	issued := make([]dto.CertificateResponse, 0)
	seen := make(map[pair]struct{})

	for _, entry := range eligible {
		if ctxErr := ctx.Err(); ctxErr != nil {
			span.RecordError(ctxErr)
			return nil, ctxErr
		}

		key := pair{studentID: entry.StudentID, courseID: entry.CourseID}
		if _, duplicate := seen[key]; duplicate {
			continue
		}
		seen[key] = struct{}{}

		exists, err := s.certificates.ExistsForStudentAndCourse(ctx, entry.StudentID, entry.CourseID)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		if exists {
			continue
		}

		certificate := models.Certificate{
			StudentID:       entry.StudentID,
			CourseID:        entry.CourseID,
			CertificateCode: uuid.NewString(),
			IssuedAt:        s.now().UTC(),
		}

		if err := s.certificates.Create(ctx, &certificate); err != nil {
			span.RecordError(err)
			return nil, err
		}

		observability.CertificatesIssued().Inc()
		s.recordIssuance(ctx, certificate, entry)
		s.publishIssuance(ctx, certificate)

		issued = append(issued, dto.NewCertificateResponse(certificate))
	}

	span.SetAttributes(
		attribute.Int("certificates.eligible_count", len(eligible)),
		attribute.Int("certificates.issued_count", len(issued)),
	)

	return issued, nil
}

func (s *certificateIssuanceService) recordIssuance(ctx context.Context, certificate models.Certificate, entry dto.CertificateEligibility) {
	if s.activity == nil {
		return
	}

	certificateID := certificate.ID
	err := s.activity.Record(ctx, ActivityEntry{
		Action:     "certificate.issued",
		EntityType: "certificate",
		EntityID:   &certificateID,
		Metadata: map[string]interface{}{
			"student_id":       certificate.StudentID,
			"course_id":        certificate.CourseID,
			"certificate_code": certificate.CertificateCode,
			"qualifying_score": entry.Score,
		},
	})
	if err != nil {
		s.logger.Warn().Err(err).Uint("certificate_id", certificate.ID).Msg("failed to record certificate issuance")
	}
}

func (s *certificateIssuanceService) publishIssuance(ctx context.Context, certificate models.Certificate) {
	if s.events == nil {
		return
	}

	err := s.events.Publish(ctx, CompletionEvent{
		Action:    EventCertificateIssued,
		StudentID: certificate.StudentID,
		CourseID:  certificate.CourseID,
	})
	if err != nil {
		s.logger.Warn().Err(err).Uint("certificate_id", certificate.ID).Msg("failed to publish issuance event")
	}
}
