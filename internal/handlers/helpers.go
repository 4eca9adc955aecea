package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"nutricionista-backend/internal/logger"
	"nutricionista-backend/internal/middleware"
	"nutricionista-backend/internal/models"
	"nutricionista-backend/internal/services"
	"nutricionista-backend/internal/session"
)

const (
	msgInvalidBody = "Corpo da requisição inválido."
	msgValidation  = "Verifique os dados informados."
	msgInternal    = "Ocorreu um erro inesperado. Tente novamente."
)

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: middleware.RequestIDFrom(r),
		},
	}
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			Fields:    fields,
			RequestID: middleware.RequestIDFrom(r),
		},
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", msgInvalidBody, r))
		return false
	}
	return true
}

func sessionID(r *http.Request) uuid.UUID {
	return middleware.GetSessionID(r.Context())
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *services.ValidationError
		notFound   *services.NotFoundError
		unauth     *services.UnauthorizedError
		forbidden  *services.ForbiddenError
		limited    *services.RateLimitError
		unavail    *services.UnavailableError

		denied   *session.AccessDeniedError
		input    *session.InputError
		busy     *session.BusyError
		stale    *session.StaleError
		gen      *session.GenerationError
		chat     *session.ChatError
		analysis *session.AnalysisError
	)

	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", msgValidation, validation.Fields, r))
	case errors.As(err, &input):
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("INPUT_ERROR", input.Message, input.Fields, r))
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", notFound.Message, r))
	case errors.As(err, &unauth):
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", unauth.Message, r))
	case errors.As(err, &forbidden):
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", forbidden.Message, r))
	case errors.As(err, &denied):
		writeJSON(w, http.StatusForbidden, errorResp("PREMIUM_REQUIRED", denied.Message, r))
	case errors.As(err, &busy):
		writeJSON(w, http.StatusConflict, errorResp("SLOT_BUSY", busy.Message, r))
	case errors.As(err, &stale):
		writeJSON(w, http.StatusConflict, errorResp("REQUEST_ABANDONED", "A solicitação foi cancelada antes de terminar.", r))
	case errors.As(err, &gen):
		logger.Warn("meal plan generation failed", "request_id", middleware.RequestIDFrom(r), "error", err)
		writeJSON(w, http.StatusBadGateway, errorResp("GENERATION_FAILED", gen.Message, r))
	case errors.As(err, &chat):
		logger.Warn("chat turn failed", "request_id", middleware.RequestIDFrom(r), "error", err)
		writeJSON(w, http.StatusBadGateway, errorResp("CHAT_FAILED", chat.Message, r))
	case errors.As(err, &analysis):
		logger.Warn("label analysis failed", "request_id", middleware.RequestIDFrom(r), "error", err)
		writeJSON(w, http.StatusBadGateway, errorResp("ANALYSIS_FAILED", analysis.Message, r))
	case errors.As(err, &limited):
		writeJSON(w, http.StatusTooManyRequests, errorResp("RATE_LIMITED", limited.Message, r))
	case errors.As(err, &unavail):
		writeJSON(w, http.StatusServiceUnavailable, errorResp("SERVICE_UNAVAILABLE", unavail.Message, r))
	default:
		logger.Error("unhandled service error", "request_id", middleware.RequestIDFrom(r), "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", msgInternal, r))
	}
}
