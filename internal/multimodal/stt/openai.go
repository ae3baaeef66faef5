package stt

import (
	"context"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAISTTConfig struct {
	APIKey   string
	BaseURL  string // default: "https://api.openai.com/v1"
	Model    string // default: "whisper-1"
	Language string // default hint when the request has none
}

// OpenAISTT transcribes audio with Whisper or any endpoint that speaks the
// same /audio/transcriptions API.
type OpenAISTT struct {
	cfg    OpenAISTTConfig
	client *openai.Client
	name   string
}

func NewOpenAISTT(cfg OpenAISTTConfig) *OpenAISTT {
	if cfg.Model == "" {
		cfg.Model = openai.Whisper1
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAISTT{cfg: cfg, client: openai.NewClientWithConfig(clientCfg), name: "openai-whisper"}
}

func (o *OpenAISTT) Name() string { return o.name }

func (o *OpenAISTT) Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error) {
	if req.Audio == nil {
		return nil, &TranscriptionError{Backend: o.name, Reason: "no audio"}
	}
	filename := req.Filename
	if filename == "" {
		filename = "audio.wav"
	}
	lang := req.Language
	if lang == "" {
		lang = o.cfg.Language
	}

	resp, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    o.cfg.Model,
		FilePath: filename,
		Reader:   req.Audio,
		Language: lang,
		Prompt:   req.Prompt,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, &TranscriptionError{Backend: o.name, Reason: "request failed", Err: err}
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return nil, &TranscriptionError{Backend: o.name, Reason: "empty transcript"}
	}
	return &TranscriptionResponse{Text: text, Language: resp.Language, Duration: resp.Duration}, nil
}
