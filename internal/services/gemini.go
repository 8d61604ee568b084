package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GeminiCompleter answers through Google Gemini.
type GeminiCompleter struct {
	client *genai.Client
	model  string
}

// NewGeminiCompleter builds a client for apiKey; extra options such as
// option.WithEndpoint are passed through to genai.
func NewGeminiCompleter(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*GeminiCompleter, error) {
	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &GeminiCompleter{client: client, model: model}, nil
}

func (g *GeminiCompleter) Close() error {
	return g.client.Close()
}

func (g *GeminiCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	// GenerativeModel carries mutable settings, so build one per call.
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(0.2)
	model.SetMaxOutputTokens(800)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}

	resp, err := model.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return "", &UpstreamError{Provider: "Gemini", Status: apiErr.Code, Body: apiErr.Message}
		}
		return "", fmt.Errorf("gemini call: %w", err)
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			slog.Warn("gemini candidate did not stop normally", "candidate", i, "finish_reason", cand.FinishReason.String())
		}
	}

	return extractGeminiText(resp), nil
}

func extractGeminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	return text.String()
}
