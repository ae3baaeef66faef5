// Package session owns the per-client conversation: its turn log and the
// state machine that admits one query at a time.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrBusy              = errors.New("session is processing another query")
	ErrEnded             = errors.New("session has ended")
	ErrNotFound          = errors.New("session not found")
	ErrInvalidTransition = errors.New("invalid session state transition")
)

type State int

const (
	Idle State = iota
	AwaitingQuery
	Composing
	Generating
	Displaying
)

var stateNames = [...]string{"idle", "awaiting_query", "composing", "generating", "displaying"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// next lists the only forward step out of each state.
var next = map[State]State{
	Idle:          AwaitingQuery,
	AwaitingQuery: Composing,
	Composing:     Generating,
	Generating:    Displaying,
	Displaying:    Idle,
}

type Session struct {
	ID        string
	CreatedAt time.Time

	log Log

	mu    sync.Mutex
	state State
	seq   int
	ended bool
}

func New(id string, log Log) *Session {
	return &Session{ID: id, CreatedAt: time.Now().UTC(), log: log}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Begin admits a query. Only an idle session accepts one.
func (s *Session) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return ErrEnded
	}
	if s.state != Idle {
		return ErrBusy
	}
	s.state = AwaitingQuery
	return nil
}

func (s *Session) Advance(to State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advanceLocked(to)
}

func (s *Session) advanceLocked(to State) error {
	// Begin and Finish own the edges into and out of Idle.
	if to == Idle || to == AwaitingQuery || next[s.state] != to {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.state, to)
	}
	s.state = to
	return nil
}

// Finish appends t to the log and returns the session to Idle. The state is
// reset even when the append fails.
func (s *Session) Finish(ctx context.Context, t Turn) (Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Displaying {
		return Turn{}, fmt.Errorf("%w: finish from %s", ErrInvalidTransition, s.state)
	}
	defer func() { s.state = Idle }()

	s.seq++
	t.Seq = s.seq
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if err := s.log.Append(ctx, t); err != nil {
		s.seq--
		return t, err
	}
	return t, nil
}

// Abort drops the in-flight query without logging a turn.
func (s *Session) Abort() {
	s.mu.Lock()
	s.state = Idle
	s.mu.Unlock()
}

func (s *Session) Turns(ctx context.Context) ([]Turn, error) {
	return s.log.All(ctx)
}

func (s *Session) end(ctx context.Context) error {
	s.mu.Lock()
	s.ended = true
	s.mu.Unlock()
	return s.log.Clear(ctx)
}
