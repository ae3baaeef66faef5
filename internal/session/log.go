package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/cretahub/internal/policy"
)

type Outcome string

const (
	OutcomeAnswered        Outcome = "answered"
	OutcomeGenerationError Outcome = "generation_error"
)

// Turn is one answered query. Turns are never mutated after Append.
type Turn struct {
	Seq       int           `json:"seq"`
	Role      policy.Role   `json:"role"`
	Query     string        `json:"query"`
	Answer    string        `json:"answer"`
	Outcome   Outcome       `json:"outcome"`
	ErrorKind string        `json:"error_kind,omitempty"`
	Latency   time.Duration `json:"latency"`
	CreatedAt time.Time     `json:"created_at"`
}

// Log is the append-only turn history of a single session.
type Log interface {
	Append(ctx context.Context, t Turn) error
	All(ctx context.Context) ([]Turn, error)
	Len(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}

// LogFactory creates the log for a new session.
type LogFactory func(sessionID string) Log

type MemoryLog struct {
	mu    sync.RWMutex
	turns []Turn
}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{turns: make([]Turn, 0, 16)}
}

func MemoryLogs() LogFactory {
	return func(string) Log { return NewMemoryLog() }
}

func (l *MemoryLog) Append(_ context.Context, t Turn) error {
	l.mu.Lock()
	l.turns = append(l.turns, t)
	l.mu.Unlock()
	return nil
}

func (l *MemoryLog) All(_ context.Context) ([]Turn, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Turn, len(l.turns))
	copy(out, l.turns)
	return out, nil
}

func (l *MemoryLog) Len(_ context.Context) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.turns), nil
}

func (l *MemoryLog) Clear(_ context.Context) error {
	l.mu.Lock()
	l.turns = l.turns[:0]
	l.mu.Unlock()
	return nil
}

// RedisLog keeps turns as a JSON list under one key. The key expires ttl
// after the last append so abandoned sessions do not linger.
type RedisLog struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedisLog(client *redis.Client, sessionID string, ttl time.Duration) *RedisLog {
	return &RedisLog{client: client, key: "session:" + sessionID + ":turns", ttl: ttl}
}

func RedisLogs(client *redis.Client, ttl time.Duration) LogFactory {
	return func(id string) Log { return NewRedisLog(client, id, ttl) }
}

func (l *RedisLog) Append(ctx context.Context, t Turn) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal turn: %w", err)
	}

	pipe := l.client.TxPipeline()
	pipe.RPush(ctx, l.key, data)
	if l.ttl > 0 {
		pipe.Expire(ctx, l.key, l.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

func (l *RedisLog) All(ctx context.Context) ([]Turn, error) {
	raw, err := l.client.LRange(ctx, l.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read turns: %w", err)
	}
	turns := make([]Turn, 0, len(raw))
	for _, r := range raw {
		var t Turn
		if err := json.Unmarshal([]byte(r), &t); err != nil {
			return nil, fmt.Errorf("decode turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, nil
}

func (l *RedisLog) Len(ctx context.Context) (int, error) {
	n, err := l.client.LLen(ctx, l.key).Result()
	if err != nil {
		return 0, fmt.Errorf("count turns: %w", err)
	}
	return int(n), nil
}

func (l *RedisLog) Clear(ctx context.Context) error {
	if err := l.client.Del(ctx, l.key).Err(); err != nil {
		return fmt.Errorf("clear turns: %w", err)
	}
	return nil
}
