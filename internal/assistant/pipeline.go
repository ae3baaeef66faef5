// Package assistant runs one query through the role-scoped pipeline:
// policy, snapshot, composition, generation and the session log.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/cretahub/internal/answer"
	"github.com/nikhilbhutani/cretahub/internal/audit"
	"github.com/nikhilbhutani/cretahub/internal/dataset"
	"github.com/nikhilbhutani/cretahub/internal/guardrails"
	"github.com/nikhilbhutani/cretahub/internal/policy"
	"github.com/nikhilbhutani/cretahub/internal/prompt"
	"github.com/nikhilbhutani/cretahub/internal/session"
	"github.com/nikhilbhutani/cretahub/pkg/tokenizer"
)

var ErrQueryRejected = errors.New("query rejected")

// persistTimeout bounds appending and recording a finished turn.
const persistTimeout = 5 * time.Second

// FlagContextBudget marks a reply whose instruction exceeded the context budget.
const FlagContextBudget = "context_budget_exceeded"

// Recorder receives every finished turn for durable storage.
type Recorder interface {
	Record(ctx context.Context, rec audit.TurnRecord) error
}

type Pipeline struct {
	data     dataset.Provider
	window   dataset.Window
	composer *prompt.Composer
	gen      *answer.Generator
	guards   *guardrails.Pipeline
	recorder Recorder
	voice    Voice
	budget   int
	now      func() time.Time
}

type Option func(*Pipeline)

func WithWindow(w dataset.Window) Option { return func(p *Pipeline) { p.window = w } }

func WithGuardrails(g *guardrails.Pipeline) Option { return func(p *Pipeline) { p.guards = g } }

func WithRecorder(r Recorder) Option { return func(p *Pipeline) { p.recorder = r } }

func WithVoice(v Voice) Option { return func(p *Pipeline) { p.voice = v } }

// WithContextBudget flags turns whose instruction is estimated above n
// tokens. Zero disables the check.
func WithContextBudget(n int) Option { return func(p *Pipeline) { p.budget = n } }

func New(data dataset.Provider, composer *prompt.Composer, gen *answer.Generator, opts ...Option) *Pipeline {
	p := &Pipeline{
		data:     data,
		composer: composer,
		gen:      gen,
		guards:   guardrails.NewPipeline(),
		voice:    DefaultVoice(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Pipeline) Voice() Voice { return p.voice }

// Ask processes one query to completion. A returned error means no turn was
// logged and the session is idle again; generation failures are not errors,
// they come back as a Reply with Failed set.
func (p *Pipeline) Ask(ctx context.Context, sess *session.Session, role policy.Role, query string) (*Reply, error) {
	if err := sess.Begin(); err != nil {
		return nil, err
	}
	start := p.now()
	query = strings.TrimSpace(query)

	pol, err := policy.For(role)
	if err != nil {
		sess.Abort()
		return nil, err
	}

	snap, err := p.data.Snapshot(ctx, p.window)
	if err != nil {
		sess.Abort()
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	in, err := p.guards.CheckInput(ctx, guardrails.Subject{Text: query, Policy: pol, Snapshot: snap})
	if err != nil {
		sess.Abort()
		return nil, fmt.Errorf("check query: %w", err)
	}
	if !in.Allowed {
		sess.Abort()
		slog.Info("query rejected", "session_id", sess.ID, "role", role, "reason", in.Reason, "flags", in.Flags)
		return nil, fmt.Errorf("%w: %s", ErrQueryRejected, in.Reason)
	}

	if err := sess.Advance(session.Composing); err != nil {
		sess.Abort()
		return nil, err
	}
	instruction, err := p.composer.Compose(pol, snap)
	if err != nil {
		sess.Abort()
		return nil, err
	}
	overBudget := false
	if p.budget > 0 {
		if n := tokenizer.CountTokens(string(instruction)); n > p.budget {
			overBudget = true
			slog.Warn("instruction over context budget",
				"session_id", sess.ID, "estimated_tokens", n, "budget", p.budget, "records", len(snap.Records))
		}
	}

	if err := sess.Advance(session.Generating); err != nil {
		sess.Abort()
		return nil, err
	}
	res := p.gen.Answer(ctx, instruction, query)

	if err := sess.Advance(session.Displaying); err != nil {
		sess.Abort()
		return nil, err
	}

	flags := append([]string(nil), in.Flags...)
	if overBudget {
		flags = append(flags, FlagContextBudget)
	}
	if res.OK() {
		out, err := p.guards.CheckOutput(ctx, guardrails.Subject{Text: res.Text, Policy: pol, Snapshot: snap})
		if err != nil {
			slog.Warn("output check failed", "session_id", sess.ID, "error", err)
		} else {
			flags = append(flags, out.Flags...)
		}
	}

	latency := p.now().Sub(start)
	turn := session.Turn{
		Role:    pol.Role,
		Query:   query,
		Answer:  res.Display(),
		Outcome: session.OutcomeAnswered,
		Latency: latency,
	}
	if !res.OK() {
		turn.Outcome = session.OutcomeGenerationError
		turn.ErrorKind = string(res.Err.Kind)
	}

	// The request context may be the reason generation failed; the turn is
	// still logged and recorded.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	turn, err = sess.Finish(persistCtx, turn)
	if err != nil {
		return nil, fmt.Errorf("append turn: %w", err)
	}

	reply := &Reply{
		SessionID:      sess.ID,
		Turn:           turn,
		Answer:         turn.Answer,
		Failed:         !res.OK(),
		ErrorKind:      turn.ErrorKind,
		Latency:        latency,
		LatencySeconds: Seconds(latency),
		Flags:          flags,
		Debug:          p.debug(turn, pol, res, latency),
	}

	slog.Info("query answered",
		"session_id", sess.ID,
		"seq", turn.Seq,
		"role", pol.Role,
		"outcome", turn.Outcome,
		"latency_ms", latency.Milliseconds(),
		"flags", flags,
	)

	p.record(persistCtx, sess.ID, turn, res, flags)
	return reply, nil
}

func (p *Pipeline) record(ctx context.Context, sessionID string, t session.Turn, res answer.Result, flags []string) {
	if p.recorder == nil {
		return
	}
	rec := audit.TurnRecord{
		ID:           uuid.New(),
		SessionID:    sessionID,
		Seq:          t.Seq,
		Role:         string(t.Role),
		Query:        t.Query,
		Answer:       t.Answer,
		Outcome:      string(t.Outcome),
		ErrorKind:    t.ErrorKind,
		Provider:     res.Provider,
		Model:        res.Model,
		InputTokens:  res.InputTokens,
		OutputTokens: res.OutputTokens,
		CostUSD:      res.CostUSD,
		LatencyMs:    t.Latency.Milliseconds(),
		Flags:        flags,
		CreatedAt:    t.CreatedAt,
	}
	if err := p.recorder.Record(ctx, rec); err != nil {
		slog.Error("record turn", "session_id", sessionID, "seq", t.Seq, "error", err)
	}
}

func (p *Pipeline) debug(t session.Turn, pol policy.Policy, res answer.Result, latency time.Duration) DebugRecord {
	return DebugRecord{
		Timestamp:      t.CreatedAt,
		Role:           pol.Role,
		RoleLabel:      pol.Label,
		LatencySeconds: Seconds(latency),
		Provider:       res.Provider,
		Model:          res.Model,
		Attempts:       res.Attempts,
		InputTokens:    res.InputTokens,
		OutputTokens:   res.OutputTokens,
		CostUSD:        res.CostUSD,
		Voice:          p.voice,
	}
}
