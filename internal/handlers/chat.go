package handlers

import (
	"net/http"

	"nutricionista-backend/internal/models"
	"nutricionista-backend/internal/services"
)

type ChatHandler struct {
	assistant *services.AssistantService
}

func NewChatHandler(assistant *services.AssistantService) *ChatHandler {
	return &ChatHandler{assistant: assistant}
}

// Send runs one chat turn. Blank messages are rejected by the controller.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.assistant.SendChatMessage(r.Context(), sessionID(r), req.Message)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	history := h.assistant.ChatHistory(sessionID(r))
	if history == nil {
		history = []models.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"history": history})
}

func (h *ChatHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.assistant.ResetChat(r.Context(), sessionID(r))
	writeJSON(w, http.StatusOK, map[string]string{"message": "Conversa reiniciada."})
}
