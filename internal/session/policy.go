package session

import "nutricionista-backend/internal/models"

// ChatFailurePolicy decides how a failed chat call is reported.
//
// When the returned error is nil the returned message is appended to the transcript
// and handed to the caller as the reply. When the error is non-nil nothing is
// appended and the error goes to the caller.
type ChatFailurePolicy interface {
	OnChatFailure(cause error) (models.ChatMessage, error)
}

// TranscriptPolicy reports failures as an assistant turn.
type TranscriptPolicy struct{}

func (TranscriptPolicy) OnChatFailure(error) (models.ChatMessage, error) {
	return models.ChatMessage{Role: models.RoleAssistant, Content: msgChatFailed}, nil
}

// BannerPolicy keeps the transcript clean and returns a *ChatError instead.
type BannerPolicy struct{}

func (BannerPolicy) OnChatFailure(cause error) (models.ChatMessage, error) {
	return models.ChatMessage{}, &ChatError{Message: msgChatFailed, Err: cause}
}

var DefaultChatFailurePolicy ChatFailurePolicy = TranscriptPolicy{}

// PolicyByName maps the CHAT_ERROR_POLICY setting to a policy.
func PolicyByName(name string) ChatFailurePolicy {
	if name == "banner" {
		return BannerPolicy{}
	}
	return DefaultChatFailurePolicy
}
