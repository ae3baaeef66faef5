package tts_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/cretahub/internal/config"
	"github.com/nikhilbhutani/cretahub/internal/multimodal/tts"
)

func TestElevenLabsSynthesize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/text-to-speech/IKne3meq5aSn9XLyUdCD", r.URL.Path)
		assert.Equal(t, "xi-test", r.Header.Get("xi-api-key"))
		assert.Equal(t, "audio/mpeg", r.Header.Get("Accept"))

		var body struct {
			Text          string `json:"text"`
			ModelID       string `json:"model_id"`
			VoiceSettings struct {
				Stability       float64 `json:"stability"`
				SimilarityBoost float64 `json:"similarity_boost"`
			} `json:"voice_settings"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Καλημέρα", body.Text)
		assert.Equal(t, "eleven_multilingual_v2", body.ModelID)
		assert.InDelta(t, 0.5, body.VoiceSettings.Stability, 1e-9)
		assert.InDelta(t, 0.75, body.VoiceSettings.SimilarityBoost, 1e-9)

		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3mp3"))
	}))
	defer srv.Close()

	p := tts.NewElevenLabsTTS(tts.ElevenLabsConfig{APIKey: "xi-test", BaseURL: srv.URL})
	res, err := p.Synthesize(context.Background(), tts.SynthesisRequest{Input: "Καλημέρα", Voice: "IKne3meq5aSn9XLyUdCD"})
	require.NoError(t, err)
	assert.Equal(t, []byte("ID3mp3"), res.Audio)
	assert.Equal(t, "audio/mpeg", res.ContentType)
}

func TestElevenLabsDefaultVoiceAndError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/text-to-speech/21m00Tcm4TlvDq8ikWAM", r.URL.Path)
		http.Error(w, `{"detail":"quota_exceeded"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := tts.NewElevenLabsTTS(tts.ElevenLabsConfig{APIKey: "xi", BaseURL: srv.URL})
	_, err := p.Synthesize(context.Background(), tts.SynthesisRequest{Input: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota_exceeded")
}

func TestOpenAITTSMapsCataloguedVoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/speech", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alloy", body["voice"])
		assert.Equal(t, "tts-1", body["model"])
		_, _ = w.Write([]byte("mp3"))
	}))
	defer srv.Close()

	p := tts.NewOpenAITTS(tts.OpenAITTSConfig{APIKey: "sk", BaseURL: srv.URL})
	res, err := p.Synthesize(context.Background(), tts.SynthesisRequest{Input: "x", Voice: "21m00Tcm4TlvDq8ikWAM"})
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3"), res.Audio)
}

func TestVoicesCatalogue(t *testing.T) {
	vs := tts.Voices()
	require.Len(t, vs, 4)
	assert.Equal(t, "21m00Tcm4TlvDq8ikWAM", vs[0].ID)
	assert.True(t, tts.KnownVoice("zrHiDhphv9ZnVXBqCLjf"))
	assert.False(t, tts.KnownVoice("alloy"))

	vs[0].ID = "mutated"
	assert.Equal(t, "21m00Tcm4TlvDq8ikWAM", tts.Voices()[0].ID)
}

func TestFromConfig(t *testing.T) {
	p, err := tts.FromConfig(config.TTSConfig{Backend: "elevenlabs"})
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = tts.FromConfig(config.TTSConfig{Enabled: true, Backend: "elevenlabs", ElevenLabsKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "elevenlabs", p.Name())

	p, err = tts.FromConfig(config.TTSConfig{Enabled: true, Backend: "openai", OpenAIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "openai-tts", p.Name())

	_, err = tts.FromConfig(config.TTSConfig{Enabled: true, Backend: "piper"})
	assert.Error(t, err)
}
