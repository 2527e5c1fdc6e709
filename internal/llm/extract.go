package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSONObject is returned when a response holds no {...} span.
var ErrNoJSONObject = errors.New("no JSON object found")

// ExtractJSON returns the span between the first '{' and the last '}' of text,
// parsed as JSON. It does not track brace depth: models are expected to emit a
// single object, possibly wrapped in prose.
func ExtractJSON(text string) (json.RawMessage, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || start >= end {
		return nil, ErrNoJSONObject
	}

	raw := text[start : end+1]
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return json.RawMessage(raw), nil
}

// DecodeJSON extracts the JSON object from text and unmarshals it into v.
func DecodeJSON(text string, v any) error {
	raw, err := ExtractJSON(text)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
