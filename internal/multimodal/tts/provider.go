// Package tts synthesizes spoken answers.
package tts

import "context"

type SynthesisRequest struct {
	Input string  `json:"input"`
	Voice string  `json:"voice,omitempty"`
	Speed float64 `json:"speed,omitempty"`
}

type SynthesisResult struct {
	Audio       []byte
	ContentType string
}

type Provider interface {
	Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error)
	Name() string
}

// Voice is a catalogued ElevenLabs voice.
type Voice struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

var voices = []Voice{
	{Name: "Rachel (Αμερικάνικη/Καθαρή)", ID: "21m00Tcm4TlvDq8ikWAM"},
	{Name: "Charlie (Αντρική/Ήρεμη)", ID: "IKne3meq5aSn9XLyUdCD"},
	{Name: "Nicole (Επαγγελματική)", ID: "piTKgcLEGmPE4e6mEKli"},
	{Name: "Mimi (Παιδική)", ID: "zrHiDhphv9ZnVXBqCLjf"},
}

func Voices() []Voice {
	return append([]Voice(nil), voices...)
}

// KnownVoice reports whether id is in the catalogue.
func KnownVoice(id string) bool {
	for _, v := range voices {
		if v.ID == id {
			return true
		}
	}
	return false
}
