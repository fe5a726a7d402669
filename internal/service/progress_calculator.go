package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/lumenacademy/progress-api/internal/dto"
	"github.com/lumenacademy/progress-api/internal/models"
	"github.com/lumenacademy/progress-api/internal/observability"
	"github.com/lumenacademy/progress-api/internal/repository"
)

// ErrNotEnrolled indicates the requested (student, course) pair has no
// enrollment row.
var ErrNotEnrolled = errors.New("student is not enrolled in course")

// PlaceholderCourseName marks progress entries whose course could not be
// resolved or whose store reads failed.
const PlaceholderCourseName = "N/A"

// ProgressCalculator computes the live completion state for a single
// enrollment and reconciles the stored completion projection against it.
type ProgressCalculator interface {
	CalculateProgress(ctx context.Context, studentID, courseID uint) (dto.CourseProgressInfo, error)
}

type progressCalculator struct {
	enrollments repository.EnrollmentRepository
	assessments repository.AssessmentRepository
	activity    ActivityRecorder
	events      EventPublisher
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewProgressCalculator constructs the per-enrollment progress calculator.
// The activity recorder and event publisher may be nil; completion
// transitions are then applied without audit entries or event fan-out.
func NewProgressCalculator(enrollments repository.EnrollmentRepository, assessments repository.AssessmentRepository, activity ActivityRecorder, events EventPublisher, logger zerolog.Logger) ProgressCalculator {
	return &progressCalculator{
		enrollments: enrollments,
		assessments: assessments,
		activity:    activity,
		events:      events,
		logger:      logger.With().Str("component", "progress_calculator").Logger(),
		tracer:      otel.Tracer("github.com/lumenacademy/progress-api/internal/service/progress_calculator"),
		now:         time.Now,
	}
}

func (s *progressCalculator) CalculateProgress(ctx context.Context, studentID, courseID uint) (dto.CourseProgressInfo, error) {
	start := s.now()
	ctx, span := s.tracer.Start(ctx, "progress.calculate", trace.WithAttributes(
		attribute.Int64("progress.student_id", int64(studentID)),
		attribute.Int64("progress.course_id", int64(courseID)),
	))
	defer span.End()
	defer func() {
		observability.ProgressLatency().WithLabelValues("calculate_progress").Observe(time.Since(start).Seconds())
	}()

	enrollment, err := s.enrollments.GetByStudentAndCourse(ctx, studentID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "not_enrolled")
			observability.ProgressCalculations().WithLabelValues("not_enrolled").Inc()
			return dto.CourseProgressInfo{}, ErrNotEnrolled
		}
		return s.degrade(ctx, span, courseID, err)
	}

	assessments, err := s.assessments.ListByCourse(ctx, courseID)
	if err != nil {
		return s.degrade(ctx, span, courseID, err)
	}

	assessmentIDs := make([]uint, 0, len(assessments))
	for _, assessment := range assessments {
		assessmentIDs = append(assessmentIDs, assessment.ID)
	}

	results, err := s.assessments.ListResults(ctx, studentID, assessmentIDs)
	if err != nil {
		return s.degrade(ctx, span, courseID, err)
	}

	info := buildProgressInfo(enrollment, len(assessments), len(results))
	info.CompletionDate = s.reconcileCompletion(ctx, enrollment, info)

	span.SetAttributes(attribute.Float64("progress.percentage", info.ProgressPercentage))
	observability.ProgressCalculations().WithLabelValues("ok").Inc()

	return info, nil
}

// degrade converts a store failure into a zeroed placeholder entry so one
// failing course cannot abort a multi-course batch. Caller-initiated
// cancellation is never degraded.
func (s *progressCalculator) degrade(ctx context.Context, span trace.Span, courseID uint, err error) (dto.CourseProgressInfo, error) {
	span.RecordError(err)

	if ctxErr := ctx.Err(); ctxErr != nil {
		span.SetStatus(codes.Error, "cancelled")
		observability.ProgressCalculations().WithLabelValues("cancelled").Inc()
		return dto.CourseProgressInfo{}, ctxErr
	}

	span.SetStatus(codes.Error, "store_unavailable")
	observability.ProgressCalculations().WithLabelValues("degraded").Inc()
	s.logger.Warn().Err(err).Uint("course_id", courseID).Msg("progress calculation degraded by store failure")

	return dto.CourseProgressInfo{
		CourseID:   courseID,
		CourseName: PlaceholderCourseName,
		Degraded:   true,
	}, nil
}

// buildProgressInfo is the pure half of the calculation: counts in, derived
// snapshot out, no I/O.
func buildProgressInfo(enrollment models.Enrollment, totalAssessments, completedAssessments int) dto.CourseProgressInfo {
	courseName := enrollment.Course.Title
	if courseName == "" {
		courseName = PlaceholderCourseName
	}

	return dto.CourseProgressInfo{
		CourseID:             enrollment.CourseID,
		CourseName:           courseName,
		InstructorName:       enrollment.Course.InstructorName,
		TotalAssessments:     totalAssessments,
		CompletedAssessments: completedAssessments,
		ProgressPercentage:   computePercentage(totalAssessments, completedAssessments),
		IsCompleted:          totalAssessments > 0 && completedAssessments == totalAssessments,
		CompletionDate:       enrollment.CompletionDate,
	}
}

// computePercentage returns completed/total as a 0-100 percentage rounded to
// one decimal place. A course with no assessments yet is 0%, not an error.
func computePercentage(total, completed int) float64 {
	if total <= 0 {
		return 0
	}
	return roundToOneDecimal(float64(completed) / float64(total) * 100)
}

func roundToOneDecimal(value float64) float64 {
	return math.Round(value*10) / 10
}

// reconcileCompletion heals the stored completion projection: a fresh 100%
// stamps the completion date, anything below 100% clears a stale one. The
// write is a single UPDATE per enrollment so concurrent recalculations
// resolve to last-write-wins. Returns the completion date now in effect.
func (s *progressCalculator) reconcileCompletion(ctx context.Context, enrollment models.Enrollment, info dto.CourseProgressInfo) *time.Time {
	switch {
	case info.IsCompleted && enrollment.CompletionDate == nil:
		completedAt := s.now().UTC()
		if err := s.enrollments.SetCompletion(ctx, enrollment.StudentID, enrollment.CourseID, &completedAt, true); err != nil {
			s.logger.Warn().Err(err).
				Uint("student_id", enrollment.StudentID).
				Uint("course_id", enrollment.CourseID).
				Msg("failed to stamp completion date")
			return enrollment.CompletionDate
		}

		observability.CompletionTransitions().WithLabelValues("completed").Inc()
		s.recordTransition(ctx, enrollment, "enrollment.completed", info)
		s.publishCompletion(ctx, enrollment)

		return &completedAt

	case !info.IsCompleted && enrollment.CompletionDate != nil:
		if err := s.enrollments.SetCompletion(ctx, enrollment.StudentID, enrollment.CourseID, nil, false); err != nil {
			s.logger.Warn().Err(err).
				Uint("student_id", enrollment.StudentID).
				Uint("course_id", enrollment.CourseID).
				Msg("failed to clear stale completion date")
			return enrollment.CompletionDate
		}

		observability.CompletionTransitions().WithLabelValues("reopened").Inc()
		s.recordTransition(ctx, enrollment, "enrollment.reopened", info)

		return nil

	default:
		return enrollment.CompletionDate
	}
}

func (s *progressCalculator) recordTransition(ctx context.Context, enrollment models.Enrollment, action string, info dto.CourseProgressInfo) {
	if s.activity == nil {
		return
	}

	enrollmentID := enrollment.ID
	err := s.activity.Record(ctx, ActivityEntry{
		Action:     action,
		EntityType: "enrollment",
		EntityID:   &enrollmentID,
		Metadata: map[string]interface{}{
			"student_id":            enrollment.StudentID,
			"course_id":             enrollment.CourseID,
			"progress_percentage":   info.ProgressPercentage,
			"total_assessments":     info.TotalAssessments,
			"completed_assessments": info.CompletedAssessments,
		},
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to record completion transition")
	}
}

func (s *progressCalculator) publishCompletion(ctx context.Context, enrollment models.Enrollment) {
	if s.events == nil {
		return
	}

	err := s.events.Publish(ctx, CompletionEvent{
		Action:    EventCourseCompleted,
		StudentID: enrollment.StudentID,
		CourseID:  enrollment.CourseID,
	})
	if err != nil {
		s.logger.Warn().Err(err).
			Uint("student_id", enrollment.StudentID).
			Uint("course_id", enrollment.CourseID).
			Msg("failed to publish completion event")
	}
}
