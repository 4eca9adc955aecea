package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"nutricionista-backend/internal/services"
)

// multipartOverhead covers boundaries and headers around the image part.
const multipartOverhead = 64 << 10

// Declared types trusted when sniffing cannot tell. HEIC/HEIF is what most phone
// cameras produce and http.DetectContentType does not recognise it.
var declaredImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"image/heic": true,
	"image/heif": true,
}

// imageMIMEType sniffs data, falling back to the declared type when the sniffer
// only sees application/octet-stream and the declared type is allow-listed.
func imageMIMEType(data []byte, declared string) string {
	if len(data) == 0 {
		return ""
	}
	sniffed := http.DetectContentType(data)
	if sniffed != "application/octet-stream" {
		return sniffed
	}
	mediaType, _, err := mime.ParseMediaType(declared)
	if err == nil && declaredImageTypes[strings.ToLower(mediaType)] {
		return strings.ToLower(mediaType)
	}
	return sniffed
}

type LabelHandler struct {
	assistant *services.AssistantService
	maxBytes  int64
}

func NewLabelHandler(assistant *services.AssistantService, maxBytes int) *LabelHandler {
	return &LabelHandler{assistant: assistant, maxBytes: int64(maxBytes)}
}

// Analyze reads the "image" part of a multipart upload. The MIME type is sniffed
// from the bytes, with the part's Content-Type as fallback; the controller rejects
// anything that is not an image.
func (h *LabelHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	tooLarge := fmt.Sprintf("A imagem excede o limite de %d MB.", h.maxBytes>>20)

	if r.ContentLength > h.maxBytes+multipartOverhead {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", tooLarge, r))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)

	file, header, err := r.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", tooLarge, r))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Envie a foto do rótulo.", map[string]string{"image": "obrigatório"}, r))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Não foi possível ler o arquivo de imagem.", r))
		return
	}
	if int64(len(data)) > h.maxBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", tooLarge, r))
		return
	}

	mimeType := imageMIMEType(data, header.Header.Get("Content-Type"))

	analysis, err := h.assistant.AnalyzeLabel(r.Context(), sessionID(r), data, mimeType)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

func (h *LabelHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	abandoned := h.assistant.AbandonLabel(r.Context(), sessionID(r))
	writeJSON(w, http.StatusOK, map[string]bool{"abandoned": abandoned})
}
