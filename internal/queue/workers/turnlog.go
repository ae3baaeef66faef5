package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/cretahub/internal/audit"
)

// TurnStore is the persistence side of the recorder.
type TurnStore interface {
	RecordTurn(ctx context.Context, r audit.TurnRecord) error
}

type TurnRecorder struct {
	store TurnStore
}

func NewTurnRecorder(store TurnStore) *TurnRecorder {
	return &TurnRecorder{store: store}
}

func (w *TurnRecorder) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var rec audit.TurnRecord
	if err := json.Unmarshal(t.Payload(), &rec); err != nil {
		// A payload that does not decode will never decode.
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	if err := w.store.RecordTurn(ctx, rec); err != nil {
		return fmt.Errorf("record turn %s: %w", rec.ID, err)
	}

	slog.Info("turn recorded",
		"turn_id", rec.ID,
		"session_id", rec.SessionID,
		"seq", rec.Seq,
		"outcome", rec.Outcome,
	)
	return nil
}
