package models

import "github.com/google/uuid"

// WebSocket message types
type WSMessage struct {
	Type    string      `json:"type"` // "connected" | "slot_update" | "job_completed" | "job_failed"
	Payload interface{} `json:"payload"`
}

// ConnectedEvent is the first message on every socket.
type ConnectedEvent struct {
	SessionID uuid.UUID `json:"session_id"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
