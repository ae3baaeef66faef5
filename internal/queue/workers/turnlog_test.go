package workers_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/cretahub/internal/audit"
	"github.com/nikhilbhutani/cretahub/internal/queue"
	"github.com/nikhilbhutani/cretahub/internal/queue/workers"
)

type memStore struct {
	got []audit.TurnRecord
	err error
}

func (m *memStore) RecordTurn(_ context.Context, r audit.TurnRecord) error {
	if m.err != nil {
		return m.err
	}
	m.got = append(m.got, r)
	return nil
}

func TestTurnRecorderDecodesPayload(t *testing.T) {
	rec := audit.TurnRecord{
		ID:        uuid.New(),
		SessionID: "s1",
		Seq:       3,
		Role:      "field",
		Query:     "Πού παραδίδουμε;",
		Answer:    "Πίσω πόρτα.",
		Outcome:   "answered",
		Flags:     []string{"monetary_disclosure"},
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	store := &memStore{}
	w := workers.NewTurnRecorder(store)
	require.NoError(t, w.ProcessTask(context.Background(), asynq.NewTask(queue.TypeTurnRecord, data)))

	require.Len(t, store.got, 1)
	assert.Equal(t, rec, store.got[0])
}

func TestTurnRecorderSkipsRetryOnBadPayload(t *testing.T) {
	w := workers.NewTurnRecorder(&memStore{})
	err := w.ProcessTask(context.Background(), asynq.NewTask(queue.TypeTurnRecord, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestTurnRecorderPropagatesStoreError(t *testing.T) {
	boom := errors.New("db down")
	w := workers.NewTurnRecorder(&memStore{err: boom})

	data, _ := json.Marshal(audit.TurnRecord{ID: uuid.New()})
	err := w.ProcessTask(context.Background(), asynq.NewTask(queue.TypeTurnRecord, data))
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}
