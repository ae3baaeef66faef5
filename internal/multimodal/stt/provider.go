// Package stt turns recorded audio into query text.
package stt

import (
	"context"
	"fmt"
	"io"
)

type TranscriptionRequest struct {
	Audio    io.Reader
	Filename string // extension tells the backend the container format
	Language string
	Prompt   string
}

type TranscriptionResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
}

type Provider interface {
	Transcribe(ctx context.Context, req TranscriptionRequest) (*TranscriptionResponse, error)
	Name() string
}

// TranscriptionError is any failure to get usable text out of the audio.
// It is returned as an error and must never stand in for the query.
type TranscriptionError struct {
	Backend string
	Reason  string
	Err     error
}

func (e *TranscriptionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s transcription: %s: %v", e.Backend, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s transcription: %s", e.Backend, e.Reason)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }
