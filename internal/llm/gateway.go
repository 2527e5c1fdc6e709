// Package llm wraps chat completion and transcription calls behind small
// interfaces, with a JSON-mode first attempt and a plain-text fallback.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
)

// DefaultModel is used when neither the prompt nor the gateway names a model.
const DefaultModel = "gpt-4o-mini"

// Message roles understood by ChatClient implementations.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the payload handed to a ChatClient.
type ChatRequest struct {
	Model       string
	Temperature float64
	Messages    []Message
	JSONMode    bool // ask the provider for a strict JSON object response
}

// ChatClient performs a single chat completion and returns the raw text.
type ChatClient interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// Prompt is a system/user instruction pair sent through the Gateway.
type Prompt struct {
	System      string
	User        string
	Temperature float64
	Model       string // optional, overrides the gateway default
}

// Source records which branch of the gateway produced a result.
type Source int

const (
	SourceStructured Source = iota // JSON mode response parsed as-is
	SourceRecovered                // plain response, object extracted from text
)

// String returns a human-readable name for the source.
func (s Source) String() string {
	switch s {
	case SourceStructured:
		return "structured"
	case SourceRecovered:
		return "recovered"
	default:
		return fmt.Sprintf("Source(%d)", int(s))
	}
}

// Result is the JSON object returned by a gateway call.
type Result struct {
	Raw    json.RawMessage
	Source Source
}

// Decode unmarshals the result into v.
func (r Result) Decode(v any) error {
	if len(r.Raw) == 0 {
		return ErrNoJSONObject
	}
	return json.Unmarshal(r.Raw, v)
}

// Gateway issues completions that are expected to return a JSON object.
type Gateway struct {
	client ChatClient
	model  string
	logger *log.Logger
}

// NewGateway creates a Gateway. An empty model selects DefaultModel; a nil
// logger selects the charmbracelet default logger.
func NewGateway(client ChatClient, model string, logger *log.Logger) *Gateway {
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Gateway{client: client, model: model, logger: logger}
}

// Complete sends the prompt in JSON mode. If that attempt fails for any
// reason, it is sent once more without JSON mode and the object is extracted
// from the text. There is no further retry.
func (g *Gateway) Complete(ctx context.Context, p Prompt) (Result, error) {
	req := ChatRequest{
		Model:       p.Model,
		Temperature: p.Temperature,
		Messages: []Message{
			{Role: RoleSystem, Content: p.System},
			{Role: RoleUser, Content: p.User},
		},
	}
	if req.Model == "" {
		req.Model = g.model
	}

	raw, err := g.structured(ctx, req)
	if err == nil {
		return Result{Raw: raw, Source: SourceStructured}, nil
	}
	g.logger.Debug("json mode completion failed, falling back", "model", req.Model, "err", err)

	raw, fallbackErr := g.recovered(ctx, req)
	if fallbackErr != nil {
		return Result{}, fmt.Errorf("completion failed: %w (json mode attempt: %v)", fallbackErr, err)
	}
	return Result{Raw: raw, Source: SourceRecovered}, nil
}

func (g *Gateway) structured(ctx context.Context, req ChatRequest) (json.RawMessage, error) {
	req.JSONMode = true
	content, err := g.client.Complete(ctx, req)
	if err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &obj); err != nil {
		return nil, fmt.Errorf("decode json mode response: %w", err)
	}
	if obj == nil {
		return nil, errors.New("json mode response is not an object")
	}
	return json.RawMessage(content), nil
}

func (g *Gateway) recovered(ctx context.Context, req ChatRequest) (json.RawMessage, error) {
	req.JSONMode = false
	content, err := g.client.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	return ExtractJSON(content)
}
