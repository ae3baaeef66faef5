package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/cretahub/internal/llm"
)

func TestOpenAIProviderChatCompletion(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"model": "gpt-4o",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "Καλημέρα."}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 100, "completion_tokens": 10, "total_tokens": 110}
		}`))
	}))
	defer srv.Close()

	p := llm.NewOpenAIProvider("sk-test", srv.URL+"/v1")
	resp, err := p.ChatCompletion(context.Background(), llm.ChatRequest{
		Model:       "gpt-4o",
		Temperature: 0.3,
		Messages: []llm.Message{
			{Role: "system", Content: "instruction"},
			{Role: "user", Content: "hello"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Καλημέρα.", resp.Content)
	assert.Equal(t, 110, resp.TotalTokens)
	assert.Greater(t, resp.CostUSD, 0.0)

	assert.Equal(t, "gpt-4o", got["model"])
	assert.InDelta(t, 0.3, got["temperature"], 1e-6)
	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, msgs, 2)
}

func TestOpenAIProviderEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "x", "model": "gpt-4o", "choices": []}`))
	}))
	defer srv.Close()

	p := llm.NewOpenAIProvider("sk-test", srv.URL+"/v1")
	_, err := p.ChatCompletion(context.Background(), llm.ChatRequest{Model: "gpt-4o"})
	assert.ErrorIs(t, err, llm.ErrEmptyCompletion)
	assert.Equal(t, llm.KindMalformed, llm.Classify(err))
}

func TestOpenAIProviderServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error": {"message": "overloaded", "type": "server_error"}}`))
	}))
	defer srv.Close()

	p := llm.NewOpenAIProvider("sk-test", srv.URL+"/v1")
	_, err := p.ChatCompletion(context.Background(), llm.ChatRequest{Model: "gpt-4o"})
	require.Error(t, err)
	assert.Equal(t, llm.KindUpstream, llm.Classify(err))
}

func TestOllamaProviderStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p := llm.NewOllamaProvider(srv.URL)
	_, err := p.ChatCompletion(context.Background(), llm.ChatRequest{Model: "llama3"})

	var st *llm.StatusError
	require.ErrorAs(t, err, &st)
	assert.Equal(t, http.StatusNotFound, st.StatusCode)
}

func TestOllamaProviderChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message": {"role": "assistant", "content": "Γεια."}, "done": true, "prompt_eval_count": 12, "eval_count": 3}`))
	}))
	defer srv.Close()

	p := llm.NewOllamaProvider(srv.URL)
	resp, err := p.ChatCompletion(context.Background(), llm.ChatRequest{Model: "llama3"})
	require.NoError(t, err)
	assert.Equal(t, "Γεια.", resp.Content)
	assert.Equal(t, 15, resp.TotalTokens)
	assert.Zero(t, resp.CostUSD)
}
