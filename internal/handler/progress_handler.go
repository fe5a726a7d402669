package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lumenacademy/progress-api/internal/service"
	"github.com/lumenacademy/progress-api/internal/utils"
)

// ProgressHandler exposes the progress calculation endpoints.
type ProgressHandler struct {
	progress   service.ProgressService
	calculator service.ProgressCalculator
	logger     zerolog.Logger
}

// NewProgressHandler creates a new handler instance.
func NewProgressHandler(progress service.ProgressService, calculator service.ProgressCalculator, logger zerolog.Logger) *ProgressHandler {
	return &ProgressHandler{
		progress:   progress,
		calculator: calculator,
		logger:     logger.With().Str("component", "progress_handler").Logger(),
	}
}

// Register attaches the progress endpoints.
func (h *ProgressHandler) Register(router fiber.Router) {
	router.Get("/students/:studentID/progress", h.getAllProgress)
	router.Get("/students/:studentID/progress/overall", h.getOverallProgress)
	router.Get("/students/:studentID/courses/:courseID/progress", h.getCourseProgress)
}

func (h *ProgressHandler) getAllProgress(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "studentID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	entries, err := h.progress.CalculateAllProgress(c.UserContext(), studentID)
	if err != nil {
		h.logger.Error().Err(err).Uint("student_id", studentID).Msg("failed to calculate progress batch")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to calculate progress")
	}

	return utils.SendSuccess(c, "progress calculated", entries)
}

func (h *ProgressHandler) getOverallProgress(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "studentID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	overall, err := h.progress.CalculateOverallProgress(c.UserContext(), studentID)
	if err != nil {
		h.logger.Error().Err(err).Uint("student_id", studentID).Msg("failed to calculate overall progress")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to calculate overall progress")
	}

	return utils.SendSuccess(c, "overall progress calculated", overall)
}

func (h *ProgressHandler) getCourseProgress(c *fiber.Ctx) error {
	studentID, err := parseUintParam(c, "studentID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	courseID, err := parseUintParam(c, "courseID")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	info, err := h.calculator.CalculateProgress(c.UserContext(), studentID, courseID)
	if err != nil {
		if errors.Is(err, service.ErrNotEnrolled) {
			return utils.SendError(c, fiber.StatusNotFound, "student is not enrolled in course")
		}
		h.logger.Error().Err(err).
			Uint("student_id", studentID).
			Uint("course_id", courseID).
			Msg("failed to calculate course progress")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to calculate course progress")
	}

	return utils.SendSuccess(c, "course progress calculated", info)
}
