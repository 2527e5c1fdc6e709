package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// DefaultTranscribeModel is the speech-to-text model used when none is configured.
const DefaultTranscribeModel = "whisper-1"

// OpenAIClient implements ChatClient and Transcriber using the official OpenAI SDK.
type OpenAIClient struct {
	client          openai.Client
	transcribeModel string
}

// NewOpenAIClient creates a client. baseURL may be empty to use the public API.
func NewOpenAIClient(apiKey, baseURL, transcribeModel string) *OpenAIClient {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if transcribeModel == "" {
		transcribeModel = DefaultTranscribeModel
	}
	return &OpenAIClient{
		client:          openai.NewClient(opts...),
		transcribeModel: transcribeModel,
	}
}

// Complete implements ChatClient.
func (c *OpenAIClient) Complete(ctx context.Context, req ChatRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(req.Model),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	}
	if req.JSONMode {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Transcribe implements Transcriber.
func (c *OpenAIClient) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	if filename == "" {
		filename = "audio.webm"
	}
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	resp, err := c.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  openai.File(audio, filename, contentType),
		Model: openai.AudioModel(c.transcribeModel),
	})
	if err != nil {
		return "", fmt.Errorf("transcription: %w", err)
	}
	return TranscriptText([]byte(resp.RawJSON())), nil
}
