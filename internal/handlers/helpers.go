package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"archeohub-backend/internal/middleware"
	"archeohub-backend/internal/models"
	"archeohub-backend/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: r.Header.Get(middleware.RequestIDHeader),
	}
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation   *services.ValidationError
		conflict     *services.ConflictError
		notFound     *services.NotFoundError
		unauthorized *services.UnauthorizedError
		missing      *services.MissingCredentialError
		upstream     *services.UpstreamError
	)

	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", validation.Message, r))
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", conflict.Message, r))
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", notFound.Message, r))
	case errors.As(err, &unauthorized):
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", unauthorized.Message, r))
	case errors.As(err, &missing):
		slog.Error("completion provider not configured", "key", missing.Key)
		writeJSON(w, http.StatusInternalServerError, errorResp("MISSING_CREDENTIAL", missing.Error(), r))
	case errors.Is(err, services.ErrCompletionTimeout):
		slog.Warn("completion timed out", "request_id", r.Header.Get(middleware.RequestIDHeader))
		writeJSON(w, http.StatusInternalServerError, errorResp("TIMEOUT", services.ErrCompletionTimeout.Error(), r))
	case errors.As(err, &upstream):
		slog.Warn("completion provider failed", "provider", upstream.Provider, "status", upstream.Status)
		writeJSON(w, http.StatusInternalServerError, errorResp("UPSTREAM_ERROR", upstream.Error(), r))
	default:
		slog.Error("unhandled error", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Internal error", r))
	}
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResp("METHOD_NOT_ALLOWED", "Method not allowed", r))
}

// MethodNotAllowed is installed on the router so every 405 uses the JSON
// error shape.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	methodNotAllowed(w, r)
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Not found", r))
}
