package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"archeohub-backend/internal/models"
)

const DefaultCompletionTimeout = 30 * time.Second

// AskInput is one chat turn. UserID is uuid.Nil for anonymous callers.
type AskInput struct {
	Question  string
	Options   models.ChatOptions
	UserID    uuid.UUID
	RequestID string
}

// ChatService runs the search → prompt → completion pipeline. Search and
// completion are strictly sequential.
type ChatService struct {
	searcher  Searcher
	completer Completer
	events    EventPublisher
	timeout   time.Duration
}

func NewChatService(searcher Searcher, completer Completer, events EventPublisher, timeout time.Duration) *ChatService {
	if timeout <= 0 {
		timeout = DefaultCompletionTimeout
	}
	return &ChatService{
		searcher:  searcher,
		completer: completer,
		events:    events,
		timeout:   timeout,
	}
}

func (s *ChatService) Ask(ctx context.Context, in AskInput) (*models.ChatResponse, error) {
	if in.Question == "" {
		return nil, &ValidationError{Message: "Missing query"}
	}

	s.publish(ctx, in, models.EventChatStarted, models.ChatEvent{Question: in.Question})

	sources := []models.Source{}
	if in.Options.WantsSources() && s.searcher != nil {
		if found := s.searcher.Search(ctx, in.Question); len(found) > 0 {
			sources = found
		}
	}
	if len(sources) > models.MaxSources {
		sources = sources[:models.MaxSources]
	}
	if len(sources) > 0 {
		s.publish(ctx, in, models.EventChatSources, models.ChatEvent{Sources: sources})
	}

	text, err := s.complete(ctx, BuildSystemPrompt(in.Options), BuildUserPrompt(in.Question, sources))
	if err != nil {
		s.publish(ctx, in, models.EventChatFailed, models.ChatEvent{Error: err.Error()})
		return nil, err
	}

	s.publish(ctx, in, models.EventChatCompleted, models.ChatEvent{Text: text, Sources: sources})

	return &models.ChatResponse{
		Role:    "assistant",
		Text:    text,
		Sources: sources,
	}, nil
}

// complete bounds the provider call with the service budget and turns an
// expired budget into ErrCompletionTimeout.
func (s *ChatService) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.completer.Complete(cctx, systemPrompt, userPrompt)
	if err != nil {
		if ctx.Err() == nil && errors.Is(cctx.Err(), context.DeadlineExceeded) {
			return "", ErrCompletionTimeout
		}
		return "", err
	}
	return text, nil
}

func (s *ChatService) publish(ctx context.Context, in AskInput, eventType string, ev models.ChatEvent) {
	if s.events == nil || in.UserID == uuid.Nil {
		return
	}
	ev.RequestID = in.RequestID
	ev.UserID = in.UserID
	if err := s.events.Publish(ctx, in.UserID, models.WSMessage{Type: eventType, Payload: ev}); err != nil {
		slog.Debug("chat event not published", "type", eventType, "error", err)
	}
}
