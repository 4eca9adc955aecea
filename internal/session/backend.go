package session

import (
	"context"

	"github.com/google/uuid"

	"nutricionista-backend/internal/models"
	"nutricionista-backend/internal/schema"
)

// Backend is the generative service the controller delegates to.
type Backend interface {
	// GenerateStructured returns a JSON document that should satisfy contract.
	GenerateStructured(ctx context.Context, prompt string, contract *schema.Schema) (string, error)
	// GenerateWithHistory continues a conversation. history holds the prior turns only;
	// message is the new user text.
	GenerateWithHistory(ctx context.Context, instruction string, history []models.ChatMessage, message string) (string, error)
	AnalyzeImage(ctx context.Context, image []byte, mimeType, instruction string) (string, error)
}

// Notifier receives every slot transition. Implementations must not block for long.
type Notifier interface {
	SlotChanged(ctx context.Context, update models.SlotUpdate)
}

type noopNotifier struct{}

func (noopNotifier) SlotChanged(context.Context, models.SlotUpdate) {}

type sessionIDKey struct{}

func withSessionID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, id)
}

// SessionIDFromContext reports which session a backend call belongs to.
func SessionIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(sessionIDKey{}).(uuid.UUID)
	return id, ok
}
