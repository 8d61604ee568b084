package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// Completer turns a system + user prompt into generated text.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type CompleterConfig struct {
	Provider      string // "openai" (default) or "gemini"
	Production    bool
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	GeminiAPIKey  string
	GeminiModel   string
}

// NewCompleter picks the configured provider. A provider without a key is
// replaced by a mock outside production and by a failing stub in production.
func NewCompleter(ctx context.Context, cfg CompleterConfig) (Completer, error) {
	switch strings.ToLower(cfg.Provider) {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return unconfigured("GEMINI_API_KEY", cfg.Production), nil
		}
		return NewGeminiCompleter(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	case "", "openai":
		if cfg.OpenAIAPIKey == "" {
			return unconfigured("OPENAI_API_KEY", cfg.Production), nil
		}
		return NewOpenAICompleter(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown completion provider %q", cfg.Provider)
	}
}

func unconfigured(key string, production bool) Completer {
	if production {
		return MissingCredentialCompleter{Key: key}
	}
	slog.Warn("completion provider key missing, returning development mock responses", "key", key)
	return MockCompleter{}
}

// MockCompleter echoes the prompt so the front-end stays usable in development.
type MockCompleter struct{}

const mockPromptLimit = 500

func (MockCompleter) Complete(_ context.Context, _, userPrompt string) (string, error) {
	prompt := userPrompt
	if r := []rune(prompt); len(r) > mockPromptLimit {
		prompt = string(r[:mockPromptLimit])
	}
	return "Mock response (development). Received prompt: " + prompt, nil
}

// MissingCredentialCompleter fails every call; used in production when the
// provider key is absent.
type MissingCredentialCompleter struct{ Key string }

func (m MissingCredentialCompleter) Complete(context.Context, string, string) (string, error) {
	return "", &MissingCredentialError{Key: m.Key}
}

// OpenAICompleter calls an OpenAI-compatible /chat/completions endpoint.
type OpenAICompleter struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

type chatCompletionRequest struct {
	Model       string              `json:"model"`
	Messages    []chatCompletionMsg `json:"messages"`
	Temperature float64             `json:"temperature"`
	MaxTokens   int                 `json:"max_tokens"`
}

type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func NewOpenAICompleter(apiKey, model, baseURL string) *OpenAICompleter {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	// The caller bounds each call with a context deadline.
	return &OpenAICompleter{
		client:  &http.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
	}
}

func (c *OpenAICompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	body, err := json.Marshal(chatCompletionRequest{
		Model: c.model,
		Messages: []chatCompletionMsg{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.2,
		MaxTokens:   800,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai call: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &UpstreamError{Provider: "OpenAI", Status: resp.StatusCode, Body: string(data)}
	}

	return ExtractCompletionText(data), nil
}
