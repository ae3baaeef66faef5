package stt

import (
	"fmt"

	"github.com/nikhilbhutani/cretahub/internal/config"
)

// FromConfig picks the transcription backend named by cfg.Backend.
func FromConfig(cfg config.STTConfig) (Provider, error) {
	switch cfg.Backend {
	case "openai":
		return NewOpenAISTT(OpenAISTTConfig{
			APIKey:   cfg.OpenAIKey,
			BaseURL:  cfg.BaseURL,
			Model:    cfg.Model,
			Language: cfg.Language,
		}), nil
	case "local":
		return NewLocalSTT(LocalSTTConfig{BaseURL: cfg.LocalBaseURL, Language: cfg.Language}), nil
	case "", "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown STT backend %q", cfg.Backend)
	}
}
