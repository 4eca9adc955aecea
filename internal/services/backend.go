package services

import (
	"context"
	"fmt"

	"nutricionista-backend/internal/config"
	"nutricionista-backend/internal/session"
)

// AIBackend is a session.Backend that owns vendor resources.
type AIBackend interface {
	session.Backend
	Close() error
}

// NewBackend builds the adapter selected by AI_PROVIDER.
func NewBackend(cfg *config.Config) (AIBackend, error) {
	switch cfg.AIProvider {
	case "gemini":
		return NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiImageModel,
			cfg.AIConcurrentReqs, cfg.AIRequestsPerMinute)
	case "openai":
		return NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIModel,
			cfg.AIConcurrentReqs, cfg.AIRequestsPerMinute), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.AIProvider)
	}
}

// callSession names the session a backend call serves, for adapter log lines.
func callSession(ctx context.Context) string {
	if id, ok := session.SessionIDFromContext(ctx); ok {
		return id.String()
	}
	return ""
}
