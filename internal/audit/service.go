// Package audit persists answered turns beyond the lifetime of a session.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TurnRecord is the durable form of a session turn plus generation metadata.
type TurnRecord struct {
	ID           uuid.UUID `json:"id"`
	SessionID    string    `json:"session_id"`
	Seq          int       `json:"seq"`
	Role         string    `json:"role"`
	Query        string    `json:"query"`
	Answer       string    `json:"answer"`
	Outcome      string    `json:"outcome"`
	ErrorKind    string    `json:"error_kind,omitempty"`
	Provider     string    `json:"provider,omitempty"`
	Model        string    `json:"model,omitempty"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	CostUSD      float64   `json:"cost_usd"`
	LatencyMs    int64     `json:"latency_ms"`
	Flags        []string  `json:"flags,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type Service struct {
	db *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

// RecordTurn is idempotent on the record id so queue redeliveries are safe.
func (s *Service) RecordTurn(ctx context.Context, r TurnRecord) error {
	if r.ID == uuid.Nil {
		return fmt.Errorf("record turn: missing id")
	}
	flags := r.Flags
	if flags == nil {
		flags = []string{}
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO turn_logs (id, session_id, seq, role, query, answer, outcome, error_kind,
		                        provider, model, input_tokens, output_tokens, cost_usd, latency_ms, flags, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 ON CONFLICT (id) DO NOTHING`,
		r.ID, r.SessionID, r.Seq, r.Role, r.Query, r.Answer, r.Outcome, r.ErrorKind,
		r.Provider, r.Model, r.InputTokens, r.OutputTokens, r.CostUSD, r.LatencyMs, flags, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert turn log: %w", err)
	}
	return nil
}

type TurnQuery struct {
	Role   string
	Since  *time.Time
	Limit  int
	Offset int
}

func (s *Service) RecentTurns(ctx context.Context, q TurnQuery) ([]TurnRecord, error) {
	if q.Limit <= 0 || q.Limit > 500 {
		q.Limit = 50
	}

	query := `SELECT id, session_id, seq, role, query, answer, outcome, error_kind, provider, model,
	                 input_tokens, output_tokens, cost_usd, latency_ms, flags, created_at
	          FROM turn_logs WHERE true`
	var args []any
	argIdx := 1

	if q.Role != "" {
		query += fmt.Sprintf(" AND role = $%d", argIdx)
		args = append(args, q.Role)
		argIdx++
	}
	if q.Since != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, *q.Since)
		argIdx++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, q.Limit, q.Offset)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query turn logs: %w", err)
	}
	defer rows.Close()

	var out []TurnRecord
	for rows.Next() {
		var r TurnRecord
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Seq, &r.Role, &r.Query, &r.Answer, &r.Outcome, &r.ErrorKind,
			&r.Provider, &r.Model, &r.InputTokens, &r.OutputTokens, &r.CostUSD, &r.LatencyMs, &r.Flags, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan turn log: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type UsageSummary struct {
	Provider     string  `json:"provider"`
	Model        string  `json:"model"`
	TotalCalls   int     `json:"total_calls"`
	Failures     int     `json:"failures"`
	TotalTokens  int     `json:"total_tokens"`
	TotalCostUSD float64 `json:"total_cost_usd"`
}

func (s *Service) UsageSummary(ctx context.Context, since *time.Time) ([]UsageSummary, error) {
	query := `SELECT provider, model, COUNT(*),
	                 COUNT(*) FILTER (WHERE outcome = 'generation_error'),
	                 COALESCE(SUM(input_tokens + output_tokens), 0),
	                 COALESCE(SUM(cost_usd), 0)
	          FROM turn_logs`
	var args []any
	if since != nil {
		query += " WHERE created_at >= $1"
		args = append(args, *since)
	}
	query += " GROUP BY provider, model ORDER BY 6 DESC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query usage summary: %w", err)
	}
	defer rows.Close()

	var out []UsageSummary
	for rows.Next() {
		var us UsageSummary
		if err := rows.Scan(&us.Provider, &us.Model, &us.TotalCalls, &us.Failures, &us.TotalTokens, &us.TotalCostUSD); err != nil {
			return nil, fmt.Errorf("scan usage summary: %w", err)
		}
		out = append(out, us)
	}
	return out, rows.Err()
}
