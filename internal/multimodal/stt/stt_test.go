package stt_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/cretahub/internal/config"
	"github.com/nikhilbhutani/cretahub/internal/multimodal/stt"
)

func whisperServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "el", r.FormValue("language"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "query.wav", hdr.Filename)
		data, _ := io.ReadAll(f)
		assert.Equal(t, "RIFF....", string(data))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAISTTTranscribe(t *testing.T) {
	srv := whisperServer(t, http.StatusOK, `{"text": " Πού είναι ο Νίκος; ", "language": "greek", "duration": 1.5}`)
	p := stt.NewOpenAISTT(stt.OpenAISTTConfig{APIKey: "sk", BaseURL: srv.URL, Language: "el"})

	resp, err := p.Transcribe(context.Background(), stt.TranscriptionRequest{
		Audio:    strings.NewReader("RIFF...."),
		Filename: "query.wav",
	})
	require.NoError(t, err)
	assert.Equal(t, "Πού είναι ο Νίκος;", resp.Text)
	assert.InDelta(t, 1.5, resp.Duration, 1e-9)
}

func TestOpenAISTTFailureIsTranscriptionError(t *testing.T) {
	srv := whisperServer(t, http.StatusBadRequest, `{"error": {"message": "invalid file", "type": "invalid_request_error"}}`)
	p := stt.NewOpenAISTT(stt.OpenAISTTConfig{APIKey: "sk", BaseURL: srv.URL, Language: "el"})

	_, err := p.Transcribe(context.Background(), stt.TranscriptionRequest{
		Audio:    strings.NewReader("RIFF...."),
		Filename: "query.wav",
	})
	var te *stt.TranscriptionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "openai-whisper", te.Backend)
}

func TestOpenAISTTEmptyTranscript(t *testing.T) {
	srv := whisperServer(t, http.StatusOK, `{"text": "   "}`)
	p := stt.NewLocalSTT(stt.LocalSTTConfig{BaseURL: srv.URL, Language: "el"})

	_, err := p.Transcribe(context.Background(), stt.TranscriptionRequest{
		Audio:    strings.NewReader("RIFF...."),
		Filename: "query.wav",
	})
	var te *stt.TranscriptionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "local-whisper", te.Backend)
	assert.Equal(t, "empty transcript", te.Reason)
}

func TestTranscribeWithoutAudio(t *testing.T) {
	p := stt.NewOpenAISTT(stt.OpenAISTTConfig{APIKey: "sk"})
	_, err := p.Transcribe(context.Background(), stt.TranscriptionRequest{})
	var te *stt.TranscriptionError
	assert.True(t, errors.As(err, &te))
}

func TestFromConfig(t *testing.T) {
	p, err := stt.FromConfig(config.STTConfig{Backend: "openai", OpenAIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "openai-whisper", p.Name())

	p, err = stt.FromConfig(config.STTConfig{Backend: "local"})
	require.NoError(t, err)
	assert.Equal(t, "local-whisper", p.Name())

	p, err = stt.FromConfig(config.STTConfig{Backend: "none"})
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = stt.FromConfig(config.STTConfig{Backend: "vosk"})
	assert.Error(t, err)
}
