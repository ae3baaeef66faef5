package assistant

import (
	"fmt"

	"github.com/nikhilbhutani/cretahub/internal/answer"
	"github.com/nikhilbhutani/cretahub/internal/config"
	"github.com/nikhilbhutani/cretahub/internal/dataset"
	"github.com/nikhilbhutani/cretahub/internal/guardrails"
	"github.com/nikhilbhutani/cretahub/internal/llm"
	"github.com/nikhilbhutani/cretahub/internal/prompt"
)

// NewFromConfig wires the generator, composer and guardrails from cfg.
// rec may be nil.
func NewFromConfig(cfg *config.Config, data dataset.Provider, rec Recorder) (*Pipeline, error) {
	composer, err := prompt.NewComposer(prompt.Rules{
		Company:      cfg.Assistant.Company,
		Language:     cfg.Assistant.Language,
		Tone:         cfg.Assistant.Tone,
		MaxSentences: cfg.Assistant.MaxSentences,
	}, "")
	if err != nil {
		return nil, fmt.Errorf("build composer: %w", err)
	}

	gen := answer.NewGenerator(llm.NewGateway(cfg.LLM), answer.Options{
		Provider:    cfg.LLM.DefaultProvider,
		Model:       cfg.LLM.DefaultModel,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	})

	opts := []Option{
		WithGuardrails(guardrails.DefaultPipeline(cfg.Assistant.MaxQueryChars)),
		WithWindow(dataset.Window{Limit: cfg.Assistant.DatasetPageSize}),
		WithContextBudget(cfg.Assistant.ContextBudget),
		WithVoice(Voice{
			Provider: voiceProvider(cfg.TTS.Backend),
			Model:    voiceModel(cfg.TTS),
			VoiceID:  cfg.TTS.VoiceID,
			Enabled:  cfg.TTS.Enabled,
		}),
	}
	if rec != nil {
		opts = append(opts, WithRecorder(rec))
	}
	return New(data, composer, gen, opts...), nil
}

func voiceProvider(backend string) string {
	if backend == "openai" {
		return "OpenAI"
	}
	return "ElevenLabs"
}

func voiceModel(cfg config.TTSConfig) string {
	if cfg.Backend == "openai" {
		return cfg.OpenAIModel
	}
	return cfg.ElevenLabsModel
}
