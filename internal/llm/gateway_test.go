package llm

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

type fakeReply struct {
	content string
	err     error
}

type fakeChatClient struct {
	replies  []fakeReply
	requests []ChatRequest
}

func (f *fakeChatClient) Complete(ctx context.Context, req ChatRequest) (string, error) {
	f.requests = append(f.requests, req)
	if len(f.replies) == 0 {
		return "", errors.New("no scripted reply")
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r.content, r.err
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestGateway_StructuredFirstAttempt(t *testing.T) {
	client := &fakeChatClient{replies: []fakeReply{{content: ` {"message":"hi","done":false} `}}}
	gw := NewGateway(client, "test-model", quietLogger())

	res, err := gw.Complete(context.Background(), Prompt{System: "sys", User: "usr", Temperature: 0.3})
	if err != nil {
		t.Fatalf("Complete() unexpected error: %v", err)
	}
	if res.Source != SourceStructured {
		t.Errorf("Source = %v, want %v", res.Source, SourceStructured)
	}
	if len(client.requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(client.requests))
	}

	req := client.requests[0]
	if !req.JSONMode {
		t.Error("first request should ask for JSON mode")
	}
	if req.Model != "test-model" {
		t.Errorf("Model = %q, want %q", req.Model, "test-model")
	}
	if req.Temperature != 0.3 {
		t.Errorf("Temperature = %v, want 0.3", req.Temperature)
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != RoleSystem || req.Messages[1].Role != RoleUser {
		t.Errorf("Messages = %+v, want system then user", req.Messages)
	}

	var out struct {
		Message string `json:"message"`
	}
	if err := res.Decode(&out); err != nil {
		t.Fatalf("Decode() unexpected error: %v", err)
	}
	if out.Message != "hi" {
		t.Errorf("Message = %q, want %q", out.Message, "hi")
	}
}

func TestGateway_FallbackOnTransportError(t *testing.T) {
	client := &fakeChatClient{replies: []fakeReply{
		{err: errors.New("response_format not supported")},
		{content: "Here you go: {\"done\":true} bye"},
	}}
	gw := NewGateway(client, "", quietLogger())

	res, err := gw.Complete(context.Background(), Prompt{System: "s", User: "u"})
	if err != nil {
		t.Fatalf("Complete() unexpected error: %v", err)
	}
	if res.Source != SourceRecovered {
		t.Errorf("Source = %v, want %v", res.Source, SourceRecovered)
	}
	if string(res.Raw) != `{"done":true}` {
		t.Errorf("Raw = %s", res.Raw)
	}
	if len(client.requests) != 2 {
		t.Fatalf("requests = %d, want 2", len(client.requests))
	}
	if client.requests[1].JSONMode {
		t.Error("fallback request must not ask for JSON mode")
	}
	if client.requests[0].Model != DefaultModel {
		t.Errorf("Model = %q, want default %q", client.requests[0].Model, DefaultModel)
	}
}

func TestGateway_FallbackOnUndecodableJSONMode(t *testing.T) {
	tests := []struct {
		name    string
		primary string
	}{
		{"prose in json mode", `Sure: {"a":1}`},
		{"array instead of object", `[1,2,3]`},
		{"null", `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeChatClient{replies: []fakeReply{
				{content: tt.primary},
				{content: `{"a":1}`},
			}}
			gw := NewGateway(client, "m", quietLogger())

			res, err := gw.Complete(context.Background(), Prompt{})
			if err != nil {
				t.Fatalf("Complete() unexpected error: %v", err)
			}
			if res.Source != SourceRecovered {
				t.Errorf("Source = %v, want %v", res.Source, SourceRecovered)
			}
			if len(client.requests) != 2 {
				t.Errorf("requests = %d, want 2", len(client.requests))
			}
		})
	}
}

func TestGateway_BothAttemptsFail(t *testing.T) {
	t.Run("transport errors", func(t *testing.T) {
		client := &fakeChatClient{replies: []fakeReply{
			{err: errors.New("dial tcp: connection refused")},
			{err: errors.New("dial tcp: connection refused again")},
		}}
		gw := NewGateway(client, "m", quietLogger())

		_, err := gw.Complete(context.Background(), Prompt{})
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "connection refused again") {
			t.Errorf("error = %q, want fallback failure", err.Error())
		}
		if len(client.requests) != 2 {
			t.Errorf("requests = %d, want exactly 2", len(client.requests))
		}
	})

	t.Run("fallback text has no object", func(t *testing.T) {
		client := &fakeChatClient{replies: []fakeReply{
			{err: errors.New("boom")},
			{content: "I cannot help with that."},
		}}
		gw := NewGateway(client, "m", quietLogger())

		_, err := gw.Complete(context.Background(), Prompt{})
		if !errors.Is(err, ErrNoJSONObject) {
			t.Fatalf("error = %v, want ErrNoJSONObject", err)
		}
	})
}

func TestGateway_PromptModelOverridesDefault(t *testing.T) {
	client := &fakeChatClient{replies: []fakeReply{{content: `{}`}}}
	gw := NewGateway(client, "default-model", quietLogger())

	if _, err := gw.Complete(context.Background(), Prompt{Model: "special"}); err != nil {
		t.Fatalf("Complete() unexpected error: %v", err)
	}
	if client.requests[0].Model != "special" {
		t.Errorf("Model = %q, want %q", client.requests[0].Model, "special")
	}
}

func TestSourceString(t *testing.T) {
	if SourceStructured.String() != "structured" || SourceRecovered.String() != "recovered" {
		t.Errorf("unexpected names: %s, %s", SourceStructured, SourceRecovered)
	}
	if Source(9).String() != "Source(9)" {
		t.Errorf("unknown source = %q", Source(9).String())
	}
}
