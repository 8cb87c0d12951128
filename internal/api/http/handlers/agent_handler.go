package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	util "github.com/spec-kit/helpdesk-service/pkg/util"
)

// AgentHandler exposes the triage workflow to staff.
type AgentHandler struct {
	triage *service.TriageService
}

// NewAgentHandler constructs handler.
func NewAgentHandler(triageService *service.TriageService) *AgentHandler {
	return &AgentHandler{triage: triageService}
}

// Triage POST /agent/triage. Runs the workflow synchronously and returns
// the suggestion. Re-running for an already triaged ticket returns the
// existing suggestion unchanged.
func (h *AgentHandler) Triage(c *fiber.Ctx) error {
	var req dto.TriageRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.TicketID) == "" {
		return util.NewValidationError("ticket_id required", nil)
	}

	suggestion, err := h.triage.ExecuteWorkflowForTicket(c.Context(), req.TicketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": suggestionResponse(suggestion)})
}

// GetSuggestion GET /agent/suggestions/:ticketId.
func (h *AgentHandler) GetSuggestion(c *fiber.Ctx) error {
	suggestion, err := h.triage.SuggestionForTicket(c.Context(), c.Params("ticketId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": suggestionResponse(suggestion)})
}

func suggestionResponse(s *domain.Suggestion) dto.SuggestionResponse {
	return dto.SuggestionResponse{
		ID:                s.ID,
		TicketID:          s.TicketID,
		PredictedCategory: s.PredictedCategory,
		ArticleIDs:        s.ArticleIDs,
		DraftReply:        s.DraftReply,
		Confidence:        s.Confidence,
		AutoClosed:        s.AutoClosed,
		Provider:          s.ModelInfo.Provider,
		Model:             s.ModelInfo.Model,
		PromptVersion:     s.ModelInfo.PromptVersion,
		LatencyMs:         s.ModelInfo.LatencyMs,
		CreatedAt:         s.CreatedAt,
	}
}
