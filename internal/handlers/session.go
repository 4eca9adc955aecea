package handlers

import (
	"net/http"

	"nutricionista-backend/internal/middleware"
	"nutricionista-backend/internal/models"
	"nutricionista-backend/internal/services"
)

type SessionHandler struct {
	sessions *services.SessionService
}

func NewSessionHandler(sessions *services.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

func (h *SessionHandler) OnboardingOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, services.OnboardingOptions())
}

// Create completes onboarding and returns the session token.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.sessions.Create(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

func (h *SessionHandler) Route(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.LookupSessionID(r.Context())

	resp, err := h.sessions.Route(r.Context(), id, ok)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *SessionHandler) Me(w http.ResponseWriter, r *http.Request) {
	rec, err := h.sessions.Get(r.Context(), sessionID(r))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

func (h *SessionHandler) UpdatePremium(w http.ResponseWriter, r *http.Request) {
	var req models.UpdatePremiumRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rec, err := h.sessions.SetPremium(r.Context(), sessionID(r), req.Premium)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}
