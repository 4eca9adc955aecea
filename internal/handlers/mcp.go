package handlers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"

	"nutricionista-backend/internal/logger"
	"nutricionista-backend/internal/services"
)

type SendChatMessageParams struct {
	Message string `json:"message" description:"Mensagem para a Nutricionista IA"`
}

type AnalyzeLabelParams struct {
	ImageBase64 string `json:"image_base64" description:"Foto do rótulo codificada em base64"`
	MimeType    string `json:"mime_type,omitempty" description:"Tipo da imagem, usado quando não é possível detectá-lo (ex.: image/heic)"`
}

type mcpTool func(r *http.Request, req *protocol.CallToolRequest) (interface{}, error)

// MCPHandler exposes the assistant operations as MCP tool calls for the
// authenticated session.
type MCPHandler struct {
	assistant *services.AssistantService
	maxBytes  int
	tools     map[string]mcpTool
}

func NewMCPHandler(assistant *services.AssistantService, maxImageBytes int) *MCPHandler {
	h := &MCPHandler{assistant: assistant, maxBytes: maxImageBytes}
	h.tools = map[string]mcpTool{
		"generate_meal_plan": h.generateMealPlan,
		"send_chat_message":  h.sendChatMessage,
		"analyze_label":      h.analyzeLabel,
		"get_session_state":  h.getSessionState,
	}
	return h
}

func (h *MCPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req protocol.CallToolRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tool, ok := h.tools[req.Name]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("UNKNOWN_TOOL", fmt.Sprintf("Ferramenta desconhecida: %s", req.Name), r))
		return
	}

	data, err := tool(r, &req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	result, err := toolResult(data)
	if err != nil {
		logger.Error("failed to encode tool result", "tool", req.Name, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", msgInternal, r))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *MCPHandler) generateMealPlan(r *http.Request, req *protocol.CallToolRequest) (interface{}, error) {
	return h.assistant.GenerateMealPlan(r.Context(), sessionID(r))
}

func (h *MCPHandler) sendChatMessage(r *http.Request, req *protocol.CallToolRequest) (interface{}, error) {
	var params SendChatMessageParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	return h.assistant.SendChatMessage(r.Context(), sessionID(r), params.Message)
}

func (h *MCPHandler) analyzeLabel(r *http.Request, req *protocol.CallToolRequest) (interface{}, error) {
	var params AnalyzeLabelParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	image, err := base64.StdEncoding.DecodeString(strings.TrimSpace(params.ImageBase64))
	if err != nil {
		return nil, &services.ValidationError{Fields: map[string]string{"image_base64": "base64 inválido"}}
	}
	if len(image) > h.maxBytes {
		return nil, &services.ValidationError{Fields: map[string]string{"image_base64": fmt.Sprintf("a imagem excede %d bytes", h.maxBytes)}}
	}

	return h.assistant.AnalyzeLabel(r.Context(), sessionID(r), image, imageMIMEType(image, params.MimeType))
}

func (h *MCPHandler) getSessionState(r *http.Request, req *protocol.CallToolRequest) (interface{}, error) {
	return h.assistant.State(r.Context(), sessionID(r))
}

// extractParams round-trips the loosely typed arguments into a params struct.
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	raw, err := json.Marshal(req.Arguments)
	if err != nil {
		return &services.ValidationError{Fields: map[string]string{"arguments": "ilegíveis"}}
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return &services.ValidationError{Fields: map[string]string{"arguments": "formato inválido"}}
	}
	return nil
}

func toolResult(data interface{}) (*protocol.CallToolResult, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(raw),
			},
		},
	}, nil
}
