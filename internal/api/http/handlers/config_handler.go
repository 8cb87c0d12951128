package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	util "github.com/spec-kit/helpdesk-service/pkg/util"
)

// ConfigHandler manages the triage policy. Admin only.
type ConfigHandler struct {
	service *service.ConfigService
}

// NewConfigHandler constructs handler.
func NewConfigHandler(configService *service.ConfigService) *ConfigHandler {
	return &ConfigHandler{service: configService}
}

// GetPolicy GET /config/triage.
func (h *ConfigHandler) GetPolicy(c *fiber.Ctx) error {
	policy, err := h.service.GetPolicy(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": policyResponse(policy)})
}

// UpdatePolicy PUT /config/triage. Fields omitted from the payload keep
// their current values.
func (h *ConfigHandler) UpdatePolicy(c *fiber.Ctx) error {
	var req dto.PolicyRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	policy, err := h.service.GetPolicy(c.Context())
	if err != nil {
		return err
	}
	if req.AutoCloseEnabled != nil {
		policy.AutoCloseEnabled = *req.AutoCloseEnabled
	}
	if req.ConfidenceThreshold != nil {
		policy.ConfidenceThreshold = *req.ConfidenceThreshold
	}
	if req.SLAHours != nil {
		policy.SLAHours = *req.SLAHours
	}

	if err := h.service.UpdatePolicy(c.Context(), policy); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": policyResponse(policy)})
}

func policyResponse(policy *domain.TriagePolicy) dto.PolicyResponse {
	return dto.PolicyResponse{
		AutoCloseEnabled:    policy.AutoCloseEnabled,
		ConfidenceThreshold: policy.ConfidenceThreshold,
		SLAHours:            policy.SLAHours,
		UpdatedAt:           policy.UpdatedAt,
	}
}
