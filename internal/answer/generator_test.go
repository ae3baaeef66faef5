package answer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/cretahub/internal/answer"
	"github.com/nikhilbhutani/cretahub/internal/llm"
	"github.com/nikhilbhutani/cretahub/internal/prompt"
)

type fakeGateway struct {
	resp *llm.ChatResponse
	err  error
	last llm.ChatRequest
}

func (f *fakeGateway) Chat(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	f.last = req
	return f.resp, f.err
}
func (f *fakeGateway) Provider(string) (llm.Provider, error) { return nil, nil }
func (f *fakeGateway) ListModels() []llm.ModelInfo          { return nil }

func TestAnswerSendsTwoPartRequest(t *testing.T) {
	gw := &fakeGateway{resp: &llm.ChatResponse{Provider: "openai", Model: "gpt-4o", Content: "Ναι.", InputTokens: 7}}
	g := answer.NewGenerator(gw, answer.DefaultOptions())

	res := g.Answer(context.Background(), prompt.Instruction("SYSTEM"), "ερώτηση")
	require.True(t, res.OK())
	assert.Equal(t, "Ναι.", res.Display())
	assert.Equal(t, 7, res.InputTokens)

	require.Len(t, gw.last.Messages, 2)
	assert.Equal(t, llm.Message{Role: "system", Content: "SYSTEM"}, gw.last.Messages[0])
	assert.Equal(t, llm.Message{Role: "user", Content: "ερώτηση"}, gw.last.Messages[1])
	assert.Equal(t, "gpt-4o", gw.last.Model)
	assert.InDelta(t, 0.3, gw.last.Temperature, 1e-9)
}

func TestAnswerFailureBecomesCause(t *testing.T) {
	gw := &fakeGateway{err: &llm.StatusError{Provider: "openai", StatusCode: 429, Body: "slow down"}}
	g := answer.NewGenerator(gw, answer.Options{})

	res := g.Answer(context.Background(), "SYSTEM", "q")
	require.False(t, res.OK())
	assert.Equal(t, llm.KindRateLimit, res.Err.Kind)
	assert.Equal(t, "System Error: openai: status 429: slow down", res.Display())
	assert.Empty(t, res.Text)
	assert.Equal(t, "gpt-4o", res.Model)

	var genErr *answer.GenerationError
	assert.True(t, errors.As(error(res.Err), &genErr))
}
