package guardrails

import (
	"context"
	"strings"
)

type injectionPattern struct {
	pattern string
	weight  float64
	flag    string
}

// InjectionGuard looks for attempts to override the role directive, such as
// a field user asking the assistant to act as the CEO.
type InjectionGuard struct {
	patterns  []injectionPattern
	threshold float64
}

func NewInjectionGuard() *InjectionGuard {
	return &InjectionGuard{
		threshold: 0.7,
		patterns: []injectionPattern{
			{"ignore previous instructions", 0.9, "override_attempt"},
			{"ignore all previous", 0.9, "override_attempt"},
			{"disregard your instructions", 0.9, "override_attempt"},
			{"forget your instructions", 0.85, "override_attempt"},
			{"αγνόησε τις οδηγίες", 0.9, "override_attempt"},
			{"ξέχνα τις οδηγίες", 0.85, "override_attempt"},
			{"you are now", 0.7, "role_hijack"},
			{"pretend you are", 0.7, "role_hijack"},
			{"i am the ceo", 0.6, "role_hijack"},
			{"είμαι ο ceo", 0.6, "role_hijack"},
			{"god mode", 0.8, "role_hijack"},
			{"system prompt", 0.8, "system_leak"},
			{"reveal your instructions", 0.8, "system_leak"},
			{"security:", 0.6, "format_injection"},
			{"<system>", 0.8, "tag_injection"},
			{"</system>", 0.8, "tag_injection"},
		},
	}
}

func (g *InjectionGuard) Name() string { return "prompt_injection" }

func (g *InjectionGuard) Check(_ context.Context, s Subject) (*Result, error) {
	lower := strings.ToLower(s.Text)
	var flags []string
	score := 0.0

	for _, p := range g.patterns {
		if strings.Contains(lower, p.pattern) {
			if p.weight > score {
				score = p.weight
			}
			flags = append(flags, p.flag)
		}
	}

	if score > g.threshold {
		return &Result{
			Allowed: false,
			Reason:  "potential prompt injection",
			Flags:   flags,
			Scores:  map[string]float64{"injection_score": score},
		}, nil
	}
	r := &Result{Allowed: true, Flags: flags}
	if score > 0 {
		r.Scores = map[string]float64{"injection_score": score}
	}
	return r, nil
}
