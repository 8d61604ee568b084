package services

import (
	"bytes"
	"encoding/json"
	"strings"
)

// completionShape locates the answer text inside one known payload layout.
type completionShape struct {
	name string
	path []any // string keys and int indexes
}

// Tried in order; the first non-empty value wins.
var completionShapes = []completionShape{
	{"chat.message", []any{"choices", 0, "message", "content"}},
	{"legacy.text", []any{"choices", 0, "text"}},
	{"choice.output", []any{"choices", 0, "output", 0, "content"}},
	{"text", []any{"text"}},
	{"output", []any{"output", 0, "content"}},
}

// ExtractCompletionText pulls the answer out of a raw completion-provider
// body. It never fails: unknown layouts yield "", bodies that are not JSON
// are returned trimmed.
func ExtractCompletionText(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ""
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return string(trimmed)
	}
	return ExtractText(payload)
}

// ExtractText is ExtractCompletionText for an already decoded payload.
func ExtractText(payload any) string {
	if _, ok := payload.(map[string]any); !ok {
		return stringify(payload)
	}
	for _, shape := range completionShapes {
		if text := stringify(dig(payload, shape.path...)); text != "" {
			return text
		}
	}
	return ""
}

func dig(v any, path ...any) any {
	for _, step := range path {
		switch key := step.(type) {
		case string:
			m, ok := v.(map[string]any)
			if !ok {
				return nil
			}
			v = m[key]
		case int:
			arr, ok := v.([]any)
			if !ok || key >= len(arr) {
				return nil
			}
			v = arr[key]
		default:
			return nil
		}
	}
	return v
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case []any:
		if len(t) == 0 {
			return ""
		}
		// content parts: [{"type":"text","text":"..."}]
		if text := joinTextParts(t); text != "" {
			return text
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func joinTextParts(parts []any) string {
	var b strings.Builder
	for _, p := range parts {
		m, ok := p.(map[string]any)
		if !ok {
			return ""
		}
		s, ok := m["text"].(string)
		if !ok {
			return ""
		}
		b.WriteString(s)
	}
	return b.String()
}
