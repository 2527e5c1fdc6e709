package llm

import (
	"context"
	"encoding/json"
	"io"
	"strings"
)

// Transcriber turns an audio blob into text.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

// TranscriptText pulls the transcript out of a transcription response body.
// Shapes are tried in order: "text" as a string, "text.text", "transcript",
// then "segments[].text" joined with spaces. Anything else yields "".
func TranscriptText(raw []byte) string {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}

	if field, ok := body["text"]; ok {
		var s string
		if err := json.Unmarshal(field, &s); err == nil && s != "" {
			return s
		}
		var nested struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(field, &nested); err == nil && nested.Text != "" {
			return nested.Text
		}
	}

	if field, ok := body["transcript"]; ok {
		var s string
		if err := json.Unmarshal(field, &s); err == nil && s != "" {
			return s
		}
	}

	if field, ok := body["segments"]; ok {
		var segments []struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(field, &segments); err == nil && len(segments) > 0 {
			parts := make([]string, 0, len(segments))
			for _, seg := range segments {
				if t := strings.TrimSpace(seg.Text); t != "" {
					parts = append(parts, t)
				}
			}
			return strings.Join(parts, " ")
		}
	}

	return ""
}
