package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"archeohub-backend/internal/middleware"
	"archeohub-backend/internal/models"
	"archeohub-backend/internal/services"
)

const maxChatBodyBytes = 64 << 10

type chatAsker interface {
	Ask(ctx context.Context, in services.AskInput) (*models.ChatResponse, error)
}

type ChatHandler struct {
	chat chatAsker
}

func NewChatHandler(chat chatAsker) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Chat answers POST /api/chat. The CORS middleware normally answers
// preflights first; the OPTIONS branch keeps the handler correct when mounted
// on its own.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		methodNotAllowed(w, r)
		return
	}

	var req models.ChatRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Missing query", r))
		return
	}

	question, legacy, ok := req.Question()
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Missing query", r))
		return
	}
	if legacy {
		slog.Debug("chat request uses deprecated query field", "request_id", r.Header.Get(middleware.RequestIDHeader))
	}

	resp, err := h.chat.Ask(r.Context(), services.AskInput{
		Question:  question,
		Options:   req.Options,
		UserID:    middleware.GetUserID(r.Context()),
		RequestID: r.Header.Get(middleware.RequestIDHeader),
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
