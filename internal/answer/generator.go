// Package answer turns a composed instruction and a user query into a single
// completion.
package answer

import (
	"context"
	"log/slog"

	"github.com/nikhilbhutani/cretahub/internal/llm"
	"github.com/nikhilbhutani/cretahub/internal/prompt"
)

// CausePrefix starts every GenerationError cause shown to the user.
const CausePrefix = "System Error: "

// GenerationError is any failure of the completion service.
type GenerationError struct {
	Kind  llm.ErrorKind
	Cause string
}

func (e *GenerationError) Error() string { return e.Cause }

// Result is either generated text or a GenerationError, never both.
type Result struct {
	Text         string
	Err          *GenerationError
	Provider     string
	Model        string
	InputTokens  int
	OutputTokens int
	CostUSD      float64
	Attempts     int
}

func (r Result) OK() bool { return r.Err == nil }

// Display is what the user sees: the model output, or the failure cause.
func (r Result) Display() string {
	if r.Err != nil {
		return r.Err.Cause
	}
	return r.Text
}

type Options struct {
	Provider    string
	Model       string
	Temperature float64
	MaxTokens   int
}

func DefaultOptions() Options {
	return Options{Model: "gpt-4o", Temperature: 0.3}
}

type Generator struct {
	gw   llm.Gateway
	opts Options
}

func NewGenerator(gw llm.Gateway, opts Options) *Generator {
	if opts.Model == "" {
		opts.Model = DefaultOptions().Model
	}
	return &Generator{gw: gw, opts: opts}
}

// Answer sends the instruction as the system message and query as the user
// message. It has no error return; failures land in Result.Err.
func (g *Generator) Answer(ctx context.Context, instruction prompt.Instruction, query string) Result {
	resp, err := g.gw.Chat(ctx, llm.ChatRequest{
		Provider: g.opts.Provider,
		Model:    g.opts.Model,
		Messages: []llm.Message{
			{Role: "system", Content: string(instruction)},
			{Role: "user", Content: query},
		},
		Temperature: g.opts.Temperature,
		MaxTokens:   g.opts.MaxTokens,
	})
	if err != nil {
		kind := llm.Classify(err)
		slog.Warn("generation failed", "kind", kind, "model", g.opts.Model, "error", err)
		return Result{
			Err:      &GenerationError{Kind: kind, Cause: CausePrefix + err.Error()},
			Provider: g.opts.Provider,
			Model:    g.opts.Model,
		}
	}

	return Result{
		Text:         resp.Content,
		Provider:     resp.Provider,
		Model:        resp.Model,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
		CostUSD:      resp.CostUSD,
		Attempts:     resp.Attempts,
	}
}
