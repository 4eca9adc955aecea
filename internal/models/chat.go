package models

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse carries the assistant turn plus the transcript after it was appended.
type ChatResponse struct {
	Reply   ChatMessage   `json:"reply"`
	History []ChatMessage `json:"history"`
}
