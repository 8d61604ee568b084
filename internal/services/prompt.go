package services

import (
	"fmt"
	"strings"

	"archeohub-backend/internal/models"
)

const baseSystemPrompt = "You are ArcheoHub, a helpful assistant. When given web search results, use them to answer and explicitly cite which URLs you used. Keep answers concise and factual."

// BuildSystemPrompt layers the caller's generation options on top of the
// fixed ArcheoHub persona.
func BuildSystemPrompt(opts models.ChatOptions) string {
	var b strings.Builder
	b.WriteString(baseSystemPrompt)

	if persona := strings.TrimSpace(opts.Persona); persona != "" {
		b.WriteString(fmt.Sprintf("\nAnswer in the voice of %s.", persona))
	}

	switch strings.ToLower(opts.Depth) {
	case "brief":
		b.WriteString("\nDepth: reply in two or three sentences.")
	case "detailed":
		b.WriteString("\nDepth: give a thorough answer with historical context, dates and key findings.")
	}

	if tone := strings.TrimSpace(opts.Tone); tone != "" {
		b.WriteString(fmt.Sprintf("\nTone: %s.", tone))
	}

	if !opts.WantsSources() {
		b.WriteString("\nDo not add a list of sources.")
	}

	return b.String()
}

// BuildUserPrompt returns the question unchanged when there are no search
// results, otherwise numbered result blocks followed by the question.
func BuildUserPrompt(question string, results []models.Source) string {
	if len(results) == 0 {
		return question
	}

	blocks := make([]string, len(results))
	for i, r := range results {
		blocks[i] = fmt.Sprintf("Result %d:\nTitle: %s\nURL: %s\nSnippet: %s", i+1, r.Title, r.URL, r.Excerpt)
	}

	return "Use the following web search results to answer the question and cite sources from them where relevant:\n\n" +
		strings.Join(blocks, "\n\n") +
		"\n\nQuestion: " + question
}
