package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"nutricionista-backend/internal/logger"
	"nutricionista-backend/internal/models"
	"nutricionista-backend/internal/schema"
)

type GeminiService struct {
	client     *genai.Client
	textModel  string
	imageModel string
	gate       *rateGate // Token bucket
}

func NewGeminiService(apiKey, textModel, imageModel string, concurrentReqs, requestsPerMinute int) (*GeminiService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiService{
		client:     client,
		textModel:  textModel,
		imageModel: imageModel,
		gate:       newRateGate(concurrentReqs, requestsPerMinute),
	}, nil
}

func (s *GeminiService) Close() error {
	return s.client.Close()
}

// newModel returns a fresh handle per call so per-request settings never leak
// between concurrent sessions.
func (s *GeminiService) newModel(name string, temperature float32) *genai.GenerativeModel {
	model := s.client.GenerativeModel(name)
	model.SetTemperature(temperature)
	model.SetTopP(0.95)
	return model
}

// GenerateStructured asks for a JSON document constrained by contract.
func (s *GeminiService) GenerateStructured(ctx context.Context, prompt string, contract *schema.Schema) (string, error) {
	if err := s.gate.acquire(ctx); err != nil {
		return "", err
	}
	defer s.gate.release()

	model := s.newModel(s.textModel, 0.3)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = toGenaiSchema(contract)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	logCandidates(ctx, "structured", resp)

	text := strings.TrimSpace(extractText(resp))
	if text == "" {
		return "", fmt.Errorf("Gemini returned empty text")
	}
	return text, nil
}

// GenerateWithHistory replays the prior turns into a chat session and sends message.
func (s *GeminiService) GenerateWithHistory(ctx context.Context, instruction string, history []models.ChatMessage, message string) (string, error) {
	if err := s.gate.acquire(ctx); err != nil {
		return "", err
	}
	defer s.gate.release()

	model := s.newModel(s.textModel, 0.7)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(instruction)}}

	cs := model.StartChat()
	cs.History = toGenaiHistory(history)

	resp, err := cs.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", fmt.Errorf("Gemini chat error: %w", err)
	}
	logCandidates(ctx, "chat", resp)

	return strings.TrimSpace(extractText(resp)), nil
}

// AnalyzeImage sends the photo inline next to the instruction.
func (s *GeminiService) AnalyzeImage(ctx context.Context, image []byte, mimeType, instruction string) (string, error) {
	if err := s.gate.acquire(ctx); err != nil {
		return "", err
	}
	defer s.gate.release()

	if len(image) == 0 {
		return "", fmt.Errorf("image payload is empty")
	}

	model := s.newModel(s.imageModel, 0.2)
	resp, err := model.GenerateContent(ctx,
		genai.Text(instruction),
		genai.Blob{MIMEType: mimeType, Data: image},
	)
	if err != nil {
		return "", fmt.Errorf("Gemini vision error: %w", err)
	}
	logCandidates(ctx, "image", resp)

	return strings.TrimSpace(extractText(resp)), nil
}

func logCandidates(ctx context.Context, kind string, resp *genai.GenerateContentResponse) {
	sessionID := callSession(ctx)
	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			logger.Warn("Gemini stopped early", "session_id", sessionID, "kind", kind, "candidate", i, "finish_reason", cand.FinishReason.String())
			continue
		}
		logger.Debug("Gemini candidate", "session_id", sessionID, "kind", kind, "candidate", i, "tokens", cand.TokenCount)
	}
}

var genaiTypes = map[schema.Type]genai.Type{
	schema.TypeObject:  genai.TypeObject,
	schema.TypeArray:   genai.TypeArray,
	schema.TypeString:  genai.TypeString,
	schema.TypeNumber:  genai.TypeNumber,
	schema.TypeInteger: genai.TypeInteger,
	schema.TypeBoolean: genai.TypeBoolean,
}

// toGenaiSchema converts the portable contract. Length and count bounds are not
// expressible here and are enforced when the document is decoded.
func toGenaiSchema(s *schema.Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Type:        genaiTypes[s.Type],
		Description: s.Description,
		Items:       toGenaiSchema(s.Items),
	}
	if len(s.Required) > 0 {
		out.Required = append([]string(nil), s.Required...)
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
	}
	return out
}

func toGenaiHistory(history []models.ChatMessage) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		role := "user"
		if msg.Role == models.RoleAssistant {
			role = "model"
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}
	return out
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
