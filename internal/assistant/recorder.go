package assistant

import (
	"context"

	"github.com/nikhilbhutani/cretahub/internal/audit"
	"github.com/nikhilbhutani/cretahub/internal/queue"
)

// QueueRecorder hands turns to the worker over asynq.
type QueueRecorder struct {
	client *queue.Client
}

func NewQueueRecorder(c *queue.Client) *QueueRecorder {
	return &QueueRecorder{client: c}
}

func (r *QueueRecorder) Record(ctx context.Context, rec audit.TurnRecord) error {
	return r.client.EnqueueTurnRecord(ctx, rec)
}
