package handlers

import (
	"net/http"

	"nutricionista-backend/internal/services"
)

type DashboardHandler struct {
	dashboard *services.DashboardService
	assistant *services.AssistantService
}

func NewDashboardHandler(dashboard *services.DashboardService, assistant *services.AssistantService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, assistant: assistant}
}

func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	resp, err := h.dashboard.Build(r.Context(), sessionID(r))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// State returns the controller snapshot: slot statuses, artifacts and transcript.
func (h *DashboardHandler) State(w http.ResponseWriter, r *http.Request) {
	state, err := h.assistant.State(r.Context(), sessionID(r))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, state)
}
