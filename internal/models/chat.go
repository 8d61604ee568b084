package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Source is a web page consulted while answering.
type Source struct {
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Excerpt string `json:"excerpt,omitempty"`
}

// MaxSources caps the citations attached to one reply.
const MaxSources = 4

// ChatOptions are folded into the system prompt.
type ChatOptions struct {
	Persona        string `json:"persona,omitempty"`
	Depth          string `json:"depth,omitempty"` // "brief" | "standard" | "detailed"
	Tone           string `json:"tone,omitempty"`
	IncludeSources *bool  `json:"include_sources,omitempty"`
}

// WantsSources defaults to true when the caller did not say.
func (o ChatOptions) WantsSources() bool {
	return o.IncludeSources == nil || *o.IncludeSources
}

// ChatRequest is the payload sent to POST /api/chat. Prompt is the canonical
// field; Query is the legacy name still sent by older clients.
type ChatRequest struct {
	Prompt  json.RawMessage `json:"prompt,omitempty"`
	Query   json.RawMessage `json:"query,omitempty"`
	Options ChatOptions     `json:"options"`
}

// Question returns the trimmed question text. ok is false when neither field
// holds a non-empty string, or when Prompt is set to something other than a
// string. Query is only consulted when Prompt is absent, null or blank;
// legacy reports that it was used.
func (r ChatRequest) Question() (question string, legacy bool, ok bool) {
	q, isString := rawString(r.Prompt)
	if q != "" {
		return q, false, true
	}
	if !isString && !absent(r.Prompt) {
		return "", false, false
	}
	if q, _ := rawString(r.Query); q != "" {
		return q, true, true
	}
	return "", false, false
}

// rawString decodes a JSON string and trims it. isString is false for any
// other JSON value.
func rawString(raw json.RawMessage) (s string, isString bool) {
	if absent(raw) {
		return "", false
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return strings.TrimSpace(s), true
}

func absent(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	return len(v) == 0 || bytes.Equal(v, []byte("null"))
}

// ChatResponse is the normalized reply returned to the browser.
type ChatResponse struct {
	Role    string   `json:"role"` // always "assistant"
	Text    string   `json:"text"`
	Sources []Source `json:"sources"`
}
