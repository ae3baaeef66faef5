package prompt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nikhilbhutani/cretahub/internal/dataset"
	"github.com/nikhilbhutani/cretahub/internal/policy"
)

// Instruction is the system directive sent ahead of the user's query.
type Instruction string

// Withheld replaces cells the role may not see.
const Withheld = "[withheld]"

// DefaultTemplate lays out the instruction. Variables: company, role,
// data, directive, language, tone, max_sentences.
const DefaultTemplate = `ROLE: You are the advanced AI Assistant of {{company}}.
CONTEXT DATA:
{{data}}
SECURITY: {{directive}}
INSTRUCTIONS:
1. Language: {{language}}.
2. Tone: {{tone}}.
3. Length: Short and concise (Max {{max_sentences}} sentences).`

// knownVars are the values Compose supplies; a template may use any of them.
var knownVars = []string{"company", "role", "data", "directive", "language", "tone", "max_sentences"}

// requiredVars must appear in every template.
var requiredVars = []string{"data", "directive"}

var columns = []string{"id", "name", "balance", "currency", "status", "last_payment", "agreement_note", "logistics_note", "contact_person"}

// Rules are the fixed behavioral constraints appended to every instruction.
type Rules struct {
	Company      string `json:"company"`
	Language     string `json:"language"`
	Tone         string `json:"tone"`
	MaxSentences int    `json:"max_sentences"`
}

func DefaultRules() Rules {
	return Rules{
		Company:      "Creta Gas",
		Language:     "Greek (Ελληνικά)",
		Tone:         "Professional but natural",
		MaxSentences: 2,
	}
}

// Composer turns a policy and a snapshot into an Instruction. It holds no
// mutable state and is safe for concurrent use.
type Composer struct {
	rules Rules
	tmpl  *Template
}

// NewComposer validates the template once: a trial render with every known
// variable fails exactly when the template names an unknown one.
func NewComposer(rules Rules, template string) (*Composer, error) {
	if template == "" {
		template = DefaultTemplate
	}
	if rules.MaxSentences <= 0 {
		return nil, errors.New("max sentences must be positive")
	}

	tmpl, err := ParseTemplate(template)
	if err != nil {
		return nil, err
	}
	trial := make(map[string]string, len(knownVars))
	for _, v := range knownVars {
		trial[v] = ""
	}
	if _, err := tmpl.Render(trial); err != nil {
		return nil, fmt.Errorf("unknown variable: %w", err)
	}
	for _, req := range requiredVars {
		if !tmpl.Uses(req) {
			return nil, fmt.Errorf("template must use {{%s}}", req)
		}
	}

	return &Composer{rules: rules, tmpl: tmpl}, nil
}

func (c *Composer) Rules() Rules { return c.rules }

// Compose is deterministic: identical inputs give byte-identical output.
// Every record in the snapshot is serialized; nothing is truncated.
func (c *Composer) Compose(p policy.Policy, snap dataset.Snapshot) (Instruction, error) {
	out, err := c.tmpl.Render(map[string]string{
		"company":       c.rules.Company,
		"role":          p.Label,
		"data":          FormatSnapshot(snap, p.DiscloseMonetary),
		"directive":     p.Directive,
		"language":      c.rules.Language,
		"tone":          c.rules.Tone,
		"max_sentences": strconv.Itoa(c.rules.MaxSentences),
	})
	if err != nil {
		return "", fmt.Errorf("compose instruction: %w", err)
	}
	return Instruction(out), nil
}

// FormatSnapshot renders one header line and one line per record with a
// stable column order. Balances are withheld unless disclosure is allowed.
func FormatSnapshot(snap dataset.Snapshot, discloseMonetary bool) string {
	var sb strings.Builder
	sb.WriteString(strings.Join(columns, " | "))
	for _, r := range snap.Records {
		balance := Withheld
		if discloseMonetary {
			balance = dataset.FormatBalance(r.Balance)
		}
		cells := []string{
			strconv.Itoa(r.ID),
			cell(r.Name),
			balance,
			cell(r.Currency),
			cell(string(r.Status)),
			cell(r.LastPayment),
			cell(r.AgreementNote),
			cell(r.LogisticsNote),
			cell(r.ContactPerson),
		}
		sb.WriteByte('\n')
		sb.WriteString(strings.Join(cells, " | "))
	}
	if snap.Partial() {
		fmt.Fprintf(&sb, "\n(showing %d of %d records)", len(snap.Records), snap.Total)
	}
	return sb.String()
}

var cellEscaper = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ", "\r", " ")

func cell(s string) string {
	return cellEscaper.Replace(s)
}
