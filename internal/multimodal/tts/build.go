package tts

import (
	"fmt"

	"github.com/nikhilbhutani/cretahub/internal/config"
)

// FromConfig returns nil when synthesis is disabled.
func FromConfig(cfg config.TTSConfig) (Provider, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	switch cfg.Backend {
	case "elevenlabs":
		return NewElevenLabsTTS(ElevenLabsConfig{
			APIKey:  cfg.ElevenLabsKey,
			BaseURL: cfg.ElevenLabsBaseURL,
			Model:   cfg.ElevenLabsModel,
			VoiceID: cfg.VoiceID,
		}), nil
	case "openai":
		return NewOpenAITTS(OpenAITTSConfig{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		}), nil
	default:
		return nil, fmt.Errorf("unknown TTS backend %q", cfg.Backend)
	}
}
