package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"nutricionista-backend/internal/logger"
	"nutricionista-backend/internal/models"
	"nutricionista-backend/internal/schema"
)

type OpenAIService struct {
	client *openai.Client
	model  string
	gate   *rateGate
}

func NewOpenAIService(apiKey, model string, concurrentReqs, requestsPerMinute int) *OpenAIService {
	return &OpenAIService{
		client: openai.NewClient(apiKey),
		model:  model,
		gate:   newRateGate(concurrentReqs, requestsPerMinute),
	}
}

func (s *OpenAIService) Close() error { return nil }

// GenerateStructured uses JSON mode; the contract travels in the system message
// because JSON mode alone does not enforce a shape.
func (s *OpenAIService) GenerateStructured(ctx context.Context, prompt string, contract *schema.Schema) (string, error) {
	if err := s.gate.acquire(ctx); err != nil {
		return "", err
	}
	defer s.gate.release()

	system, err := structuredSystemPrompt(contract)
	if err != nil {
		return "", err
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	text := strings.TrimSpace(firstChoice(ctx, resp))
	if text == "" {
		return "", fmt.Errorf("OpenAI returned empty text")
	}
	return text, nil
}

func (s *OpenAIService) GenerateWithHistory(ctx context.Context, instruction string, history []models.ChatMessage, message string) (string, error) {
	if err := s.gate.acquire(ctx); err != nil {
		return "", err
	}
	defer s.gate.release()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    toOpenAIMessages(instruction, history, message),
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI chat error: %w", err)
	}

	return strings.TrimSpace(firstChoice(ctx, resp)), nil
}

// AnalyzeImage sends the photo as a base64 data URL.
func (s *OpenAIService) AnalyzeImage(ctx context.Context, image []byte, mimeType, instruction string) (string, error) {
	if err := s.gate.acquire(ctx); err != nil {
		return "", err
	}
	defer s.gate.release()

	if len(image) == 0 {
		return "", fmt.Errorf("image payload is empty")
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: instruction,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL(mimeType, image),
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI vision error: %w", err)
	}

	return strings.TrimSpace(firstChoice(ctx, resp)), nil
}

func structuredSystemPrompt(contract *schema.Schema) (string, error) {
	raw, err := json.Marshal(contract)
	if err != nil {
		return "", fmt.Errorf("failed to encode response schema: %w", err)
	}
	return "Responda somente com um objeto JSON válido que siga exatamente este JSON Schema:\n" + string(raw), nil
}

func toOpenAIMessages(instruction string, history []models.ChatMessage, message string) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: instruction})
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == models.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message})
}

func dataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func firstChoice(ctx context.Context, resp openai.ChatCompletionResponse) string {
	if len(resp.Choices) == 0 {
		return ""
	}
	if reason := resp.Choices[0].FinishReason; reason != openai.FinishReasonStop {
		logger.Warn("OpenAI stopped early", "session_id", callSession(ctx), "finish_reason", string(reason))
	}
	return resp.Choices[0].Message.Content
}
