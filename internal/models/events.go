package models

import "github.com/google/uuid"

// WebSocket message types
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

const (
	EventChatStarted   = "chat_started"
	EventChatSources   = "chat_sources"
	EventChatCompleted = "chat_completed"
	EventChatFailed    = "chat_failed"
)

type ChatEvent struct {
	RequestID string    `json:"request_id"`
	UserID    uuid.UUID `json:"user_id"`
	Question  string    `json:"question,omitempty"`
	Sources   []Source  `json:"sources,omitempty"`
	Text      string    `json:"text,omitempty"`
	Error     string    `json:"error,omitempty"`
}
