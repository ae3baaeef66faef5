package dataset

import (
	"context"
	"errors"
	"fmt"
)

var ErrDuplicateID = errors.New("duplicate record id")

// Window selects a slice of the table. The zero value selects every record.
type Window struct {
	Offset int `json:"offset,omitempty"`
	Limit  int `json:"limit,omitempty"`
}

// All reports whether the window covers the whole table.
func (w Window) All() bool {
	return w.Offset <= 0 && w.Limit <= 0
}

// Snapshot is a read-only copy of (part of) the customer table.
type Snapshot struct {
	Records []Record `json:"records"`
	Total   int      `json:"total"`
}

// Partial reports whether the snapshot holds fewer rows than the table.
func (s Snapshot) Partial() bool {
	return len(s.Records) < s.Total
}

// Lookup finds a record by id.
func (s Snapshot) Lookup(id int) (Record, bool) {
	for _, r := range s.Records {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

// Balances returns the formatted balance of every record in the snapshot.
func (s Snapshot) Balances() []string {
	out := make([]string, len(s.Records))
	for i, r := range s.Records {
		out[i] = FormatBalance(r.Balance)
	}
	return out
}

// Provider exposes read-only snapshots of the customer table.
type Provider interface {
	Snapshot(ctx context.Context, w Window) (Snapshot, error)
}

// MemoryProvider serves a table fixed at construction. It is safe for
// concurrent readers because nothing mutates it after NewMemoryProvider.
type MemoryProvider struct {
	records []Record
}

func NewMemoryProvider(records []Record) (*MemoryProvider, error) {
	seen := make(map[int]bool, len(records))
	for _, r := range records {
		if seen[r.ID] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, r.ID)
		}
		seen[r.ID] = true
	}
	return &MemoryProvider{records: append([]Record(nil), records...)}, nil
}

func (p *MemoryProvider) Snapshot(_ context.Context, w Window) (Snapshot, error) {
	return Snapshot{
		Records: append([]Record(nil), slice(p.records, w)...),
		Total:   len(p.records),
	}, nil
}

func slice(records []Record, w Window) []Record {
	if w.All() {
		return records
	}
	start := w.Offset
	if start < 0 {
		start = 0
	}
	if start > len(records) {
		return nil
	}
	end := len(records)
	if w.Limit > 0 && w.Limit < end-start {
		end = start + w.Limit
	}
	return records[start:end]
}
