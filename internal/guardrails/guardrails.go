// Package guardrails screens queries before composition and flags answers
// after generation.
package guardrails

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nikhilbhutani/cretahub/internal/dataset"
	"github.com/nikhilbhutani/cretahub/internal/policy"
)

// Result holds the outcome of one or more checks.
type Result struct {
	Allowed bool               `json:"allowed"`
	Flags   []string           `json:"flags,omitempty"`
	Scores  map[string]float64 `json:"scores,omitempty"`
	Reason  string             `json:"reason,omitempty"`
}

// Subject is the text under check plus the request it belongs to.
type Subject struct {
	Text     string
	Policy   policy.Policy
	Snapshot dataset.Snapshot
}

type Guardrail interface {
	Check(ctx context.Context, s Subject) (*Result, error)
	Name() string
}

type Pipeline struct {
	input  []Guardrail
	output []Guardrail
}

func NewPipeline() *Pipeline {
	return &Pipeline{}
}

func (p *Pipeline) AddInputGuardrail(g Guardrail) {
	p.input = append(p.input, g)
}

func (p *Pipeline) AddOutputGuardrail(g Guardrail) {
	p.output = append(p.output, g)
}

func (p *Pipeline) CheckInput(ctx context.Context, s Subject) (*Result, error) {
	return run(ctx, s, p.input)
}

func (p *Pipeline) CheckOutput(ctx context.Context, s Subject) (*Result, error) {
	return run(ctx, s, p.output)
}

func run(ctx context.Context, s Subject, guards []Guardrail) (*Result, error) {
	combined := &Result{Allowed: true, Scores: make(map[string]float64)}

	for _, g := range guards {
		r, err := g.Check(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("guardrail %s: %w", g.Name(), err)
		}
		if !r.Allowed && combined.Allowed {
			combined.Allowed = false
			combined.Reason = fmt.Sprintf("blocked by %s: %s", g.Name(), r.Reason)
		}
		combined.Flags = append(combined.Flags, r.Flags...)
		for k, v := range r.Scores {
			combined.Scores[k] = v
		}
	}
	return combined, nil
}

// DefaultPipeline blocks empty, oversized and injection-style queries and
// flags answers that leak balances to roles without monetary access.
func DefaultPipeline(maxQueryChars int) *Pipeline {
	p := NewPipeline()
	p.AddInputGuardrail(EmptyQueryGuard{})
	p.AddInputGuardrail(NewInputLengthGuard(maxQueryChars))
	p.AddInputGuardrail(NewInjectionGuard())
	p.AddOutputGuardrail(DisclosureGuard{})
	return p
}

type EmptyQueryGuard struct{}

func (EmptyQueryGuard) Name() string { return "empty_query" }

func (EmptyQueryGuard) Check(_ context.Context, s Subject) (*Result, error) {
	if strings.TrimSpace(s.Text) == "" {
		return &Result{Allowed: false, Reason: "query is empty", Flags: []string{"empty_query"}}, nil
	}
	return &Result{Allowed: true}, nil
}

// InputLengthGuard counts characters, not bytes; Greek text is two bytes a rune.
type InputLengthGuard struct {
	maxLength int
}

func NewInputLengthGuard(maxLen int) *InputLengthGuard {
	if maxLen <= 0 {
		maxLen = 2000
	}
	return &InputLengthGuard{maxLength: maxLen}
}

func (g *InputLengthGuard) Name() string { return "input_length" }

func (g *InputLengthGuard) Check(_ context.Context, s Subject) (*Result, error) {
	if utf8.RuneCountInString(s.Text) > g.maxLength {
		return &Result{
			Allowed: false,
			Reason:  fmt.Sprintf("query exceeds %d characters", g.maxLength),
			Flags:   []string{"input_too_long"},
		}, nil
	}
	return &Result{Allowed: true}, nil
}
