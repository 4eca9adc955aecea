package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"nutricionista-backend/internal/models"
	"nutricionista-backend/internal/services"
)

// JobQueue accepts background meal-plan generations.
type JobQueue interface {
	Enqueue(ctx context.Context, sessionID uuid.UUID) (*models.MealPlanJob, error)
}

type MealPlanHandler struct {
	assistant *services.AssistantService
	sessions  *services.SessionService
	queue     JobQueue
}

// NewMealPlanHandler wires the handler. queue may be nil when no Redis is configured.
func NewMealPlanHandler(assistant *services.AssistantService, sessions *services.SessionService, queue JobQueue) *MealPlanHandler {
	return &MealPlanHandler{assistant: assistant, sessions: sessions, queue: queue}
}

func (h *MealPlanHandler) Generate(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)

	if r.URL.Query().Get("async") == "true" {
		h.enqueue(w, r, id)
		return
	}

	resp, err := h.assistant.GenerateMealPlan(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *MealPlanHandler) enqueue(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if h.queue == nil {
		handleServiceError(w, r, &services.UnavailableError{Message: "A geração em segundo plano não está disponível no momento."})
		return
	}

	// Reject unknown sessions before queueing.
	if _, err := h.sessions.Get(r.Context(), id); err != nil {
		handleServiceError(w, r, err)
		return
	}

	job, err := h.queue.Enqueue(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, models.JobAccepted{JobID: job.ID, Status: models.StatusPending})
}

func (h *MealPlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	resp, err := h.assistant.MealPlan(r.Context(), sessionID(r))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *MealPlanHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	abandoned := h.assistant.AbandonMealPlan(r.Context(), sessionID(r))
	writeJSON(w, http.StatusOK, map[string]bool{"abandoned": abandoned})
}
