package stt

type LocalSTTConfig struct {
	BaseURL  string // default: "http://localhost:8178"
	Language string
}

// LocalSTT is OpenAISTT pointed at a whisper.cpp server, which needs no key.
type LocalSTT struct {
	*OpenAISTT
}

func NewLocalSTT(cfg LocalSTTConfig) *LocalSTT {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:8178"
	}
	inner := NewOpenAISTT(OpenAISTTConfig{BaseURL: baseURL, Language: cfg.Language})
	inner.name = "local-whisper"
	return &LocalSTT{OpenAISTT: inner}
}
