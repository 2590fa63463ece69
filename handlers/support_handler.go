package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"pricing-system/models"
	"pricing-system/services"
)

// SupportHandler is the entry point the chat assistant's escalation tool
// calls when a conversation needs a human.
type SupportHandler struct {
	escalations *services.EscalationService
}

func NewSupportHandler(escalations *services.EscalationService) *SupportHandler {
	return &SupportHandler{escalations: escalations}
}

func (h *SupportHandler) Create(e *core.RequestEvent) error {
	var req services.SupportEscalationRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	if req.EventID == "" || req.IssueSummary == "" {
		return apis.NewBadRequestError("event_id and issue_summary are required", nil)
	}
	if !models.ValidSupportPriority(req.Priority) {
		return apis.NewBadRequestError("priority must be Low, Medium or Severe", nil)
	}

	esc, err := h.escalations.WriteSupportEscalation(e.Request.Context(), req)
	if err != nil {
		return apis.NewInternalServerError("Failed to create escalation", err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"message":  "Escalation created",
		"id":       esc.ID,
		"ref_code": esc.RefCode,
	})
}
