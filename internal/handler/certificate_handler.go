package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lumenacademy/progress-api/internal/dto"
	"github.com/lumenacademy/progress-api/internal/service"
	"github.com/lumenacademy/progress-api/internal/utils"
)

// CertificateHandler exposes the eligibility query and the issuance workflow.
type CertificateHandler struct {
	eligibility     service.CertificateService
	issuance        service.CertificateIssuanceService
	defaultMinScore float64
	logger          zerolog.Logger
}

// NewCertificateHandler creates a new handler instance.
func NewCertificateHandler(eligibility service.CertificateService, issuance service.CertificateIssuanceService, defaultMinScore float64, logger zerolog.Logger) *CertificateHandler {
	if defaultMinScore <= 0 {
		defaultMinScore = service.DefaultMinScore
	}

	return &CertificateHandler{
		eligibility:     eligibility,
		issuance:        issuance,
		defaultMinScore: defaultMinScore,
		logger:          logger.With().Str("component", "certificate_handler").Logger(),
	}
}

// Register attaches the certificate endpoints.
func (h *CertificateHandler) Register(router fiber.Router) {
	router.Get("/eligible", h.getEligible)
	router.Post("/issue", h.issueEligible)
}

func (h *CertificateHandler) parseParams(c *fiber.Ctx) (dto.EligibilityParams, error) {
	minScore, err := parseFloatQuery(c, "min_score", h.defaultMinScore)
	if err != nil {
		return dto.EligibilityParams{}, err
	}

	courseID, err := parseUintQuery(c, "course_id")
	if err != nil {
		return dto.EligibilityParams{}, err
	}

	return dto.EligibilityParams{
		MinScore:              minScore,
		CourseID:              courseID,
		RequireBeforeDeadline: c.QueryBool("before_deadline"),
	}, nil
}

func (h *CertificateHandler) getEligible(c *fiber.Ctx) error {
	params, err := h.parseParams(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	eligible, err := h.eligibility.GetCertificateEligible(c.UserContext(), params)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to query certificate eligibility")
		return utils.SendValidationError(c, err)
	}

	return utils.SendSuccess(c, "eligibility calculated", eligible)
}

func (h *CertificateHandler) issueEligible(c *fiber.Ctx) error {
	params, err := h.parseParams(c)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	issued, err := h.issuance.IssueEligible(c.UserContext(), params)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to issue certificates")
		return utils.SendValidationError(c, err)
	}

	return utils.SendSuccess(c, "certificates issued", issued)
}
