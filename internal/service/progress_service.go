package service

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lumenacademy/progress-api/internal/dto"
	"github.com/lumenacademy/progress-api/internal/observability"
	"github.com/lumenacademy/progress-api/internal/repository"
)

// ProgressService orchestrates the per-enrollment calculator across all of a
// student's enrollments.
type ProgressService interface {
	CalculateAllProgress(ctx context.Context, studentID uint) ([]dto.CourseProgressInfo, error)
	CalculateOverallProgress(ctx context.Context, studentID uint) (dto.OverallProgressResponse, error)
}

type progressService struct {
	enrollments repository.EnrollmentRepository
	calculator  ProgressCalculator
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewProgressService constructs the completion coordinator.
func NewProgressService(enrollments repository.EnrollmentRepository, calculator ProgressCalculator, logger zerolog.Logger) ProgressService {
	return &progressService{
		enrollments: enrollments,
		calculator:  calculator,
		logger:      logger.With().Str("component", "progress_service").Logger(),
		tracer:      otel.Tracer("github.com/lumenacademy/progress-api/internal/service/progress"),
	}
}

// CalculateAllProgress returns one entry per enrollment, sorted descending by
// progress percentage with ties keeping enrollment discovery order. A course
// whose stores fail yields a degraded placeholder rather than shrinking the
// list; caller cancellation aborts the whole batch with no partial result.
func (s *progressService) CalculateAllProgress(ctx context.Context, studentID uint) ([]dto.CourseProgressInfo, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "progress.calculate_all", trace.WithAttributes(
		attribute.Int64("progress.student_id", int64(studentID)),
	))
	defer span.End()
	defer func() {
		observability.ProgressLatency().WithLabelValues("calculate_all_progress").Observe(time.Since(start).Seconds())
	}()

	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	entries := make([]dto.CourseProgressInfo, 0, len(enrollments))
	for _, enrollment := range enrollments {
		if ctxErr := ctx.Err(); ctxErr != nil {
			span.RecordError(ctxErr)
			return nil, ctxErr
		}

		info, err := s.calculator.CalculateProgress(ctx, studentID, enrollment.CourseID)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			// The enrollment row existed a moment ago; degrade rather than
			// dropping the entry so the list length matches the enrollments.
			s.logger.Warn().Err(err).
				Uint("student_id", studentID).
				Uint("course_id", enrollment.CourseID).
				Msg("per-course calculation failed inside batch")
			info = dto.CourseProgressInfo{
				CourseID:   enrollment.CourseID,
				CourseName: PlaceholderCourseName,
				Degraded:   true,
			}
		}

		entries = append(entries, info)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ProgressPercentage > entries[j].ProgressPercentage
	})

	span.SetAttributes(attribute.Int("progress.enrollments", len(entries)))

	return entries, nil
}

// CalculateOverallProgress returns the arithmetic mean of all per-course
// percentages, rounded to one decimal place. A student with no enrollments is
// 0, not an error.
func (s *progressService) CalculateOverallProgress(ctx context.Context, studentID uint) (dto.OverallProgressResponse, error) {
	entries, err := s.CalculateAllProgress(ctx, studentID)
	if err != nil {
		return dto.OverallProgressResponse{}, err
	}

	response := dto.OverallProgressResponse{
		StudentID:       studentID,
		EnrollmentCount: len(entries),
	}

	if len(entries) == 0 {
		return response, nil
	}

	var sum float64
	for _, entry := range entries {
		sum += entry.ProgressPercentage
	}
	response.OverallPercentage = roundToOneDecimal(sum / float64(len(entries)))

	return response, nil
}
