package handlers

import (
	"net/http"

	"nutricionista-backend/internal/models"
	"nutricionista-backend/internal/services"
)

type ProgressHandler struct {
	progress *services.ProgressService
}

func NewProgressHandler(progress *services.ProgressService) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

func (h *ProgressHandler) Log(w http.ResponseWriter, r *http.Request) {
	var req models.LogWeightRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	entry, err := h.progress.Log(r.Context(), sessionID(r), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

func (h *ProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	resp, err := h.progress.Get(r.Context(), sessionID(r))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
