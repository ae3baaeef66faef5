package dataset

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresProvider reads the ERP table joined with the CRM agreements
// table. Customers without an agreement row keep empty notes.
type PostgresProvider struct {
	db *pgxpool.Pool
}

func NewPostgresProvider(db *pgxpool.Pool) *PostgresProvider {
	return &PostgresProvider{db: db}
}

func (p *PostgresProvider) Snapshot(ctx context.Context, w Window) (Snapshot, error) {
	var total int
	if err := p.db.QueryRow(ctx, "SELECT COUNT(*) FROM customers").Scan(&total); err != nil {
		return Snapshot{}, fmt.Errorf("count customers: %w", err)
	}

	// LIMIT NULL is LIMIT ALL in Postgres.
	var limit *int
	if w.Limit > 0 {
		limit = &w.Limit
	}
	offset := w.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := p.db.Query(ctx,
		`SELECT c.id, c.name, c.balance::float8, c.currency, c.status,
		        to_char(c.last_payment, 'YYYY-MM-DD'),
		        COALESCE(a.agreement_note, ''), COALESCE(a.logistics_note, ''), COALESCE(a.contact_person, '')
		 FROM customers c
		 LEFT JOIN agreements a ON a.customer_id = c.id
		 ORDER BY c.id
		 LIMIT $1 OFFSET $2`, limit, offset,
	)
	if err != nil {
		return Snapshot{}, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var status string
		if err := rows.Scan(&r.ID, &r.Name, &r.Balance, &r.Currency, &status, &r.LastPayment,
			&r.AgreementNote, &r.LogisticsNote, &r.ContactPerson); err != nil {
			return Snapshot{}, fmt.Errorf("scan customer: %w", err)
		}
		r.Status = Status(status)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("iterate customers: %w", err)
	}

	return Snapshot{Records: records, Total: total}, nil
}
