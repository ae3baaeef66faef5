package guardrails

import (
	"context"
	"strings"
)

const FlagMonetaryDisclosure = "monetary_disclosure"

// DisclosureGuard flags an answer that quotes a balance from the snapshot
// when the policy withholds monetary data. It never blocks: the directive
// to the model is the enforcement point, this only makes a leak visible.
type DisclosureGuard struct{}

func (DisclosureGuard) Name() string { return "disclosure" }

func (DisclosureGuard) Check(_ context.Context, s Subject) (*Result, error) {
	if s.Policy.DiscloseMonetary {
		return &Result{Allowed: true}, nil
	}
	for _, dot := range s.Snapshot.Balances() {
		comma := strings.Replace(dot, ".", ",", 1)
		if quotesAmount(s.Text, dot) || quotesAmount(s.Text, comma) {
			return &Result{Allowed: true, Flags: []string{FlagMonetaryDisclosure}}, nil
		}
	}
	return &Result{Allowed: true}, nil
}

// quotesAmount reports whether amount appears in text as a whole number, so
// "0.00" does not match inside "30.00" or "0.005".
func quotesAmount(text, amount string) bool {
	for from := 0; ; {
		i := strings.Index(text[from:], amount)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(amount)
		if (start == 0 || !partOfNumber(text[start-1], true)) && (end == len(text) || !partOfNumber(text[end], false)) {
			return true
		}
		from = start + 1
	}
}

func partOfNumber(b byte, before bool) bool {
	if b >= '0' && b <= '9' {
		return true
	}
	return before && (b == '.' || b == ',')
}
