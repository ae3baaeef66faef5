package prompt

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrMalformedPlaceholder = errors.New("malformed placeholder")
	ErrMissingVariables     = errors.New("missing template variables")
)

var variablePattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Template is a {{name}} template parsed once. Placeholders hold word
// characters only; "{{ name }}" is rejected rather than left verbatim.
type Template struct {
	text string
	vars []string
}

func ParseTemplate(text string) (*Template, error) {
	rest := variablePattern.ReplaceAllString(text, "")
	if i := strings.Index(rest, "{{"); i >= 0 {
		return nil, fmt.Errorf("%w near %q", ErrMalformedPlaceholder, snippet(rest[i:]))
	}
	if i := strings.Index(rest, "}}"); i >= 0 {
		return nil, fmt.Errorf("%w near %q", ErrMalformedPlaceholder, snippet(rest[:i+2]))
	}
	return &Template{text: text, vars: ExtractVariables(text)}, nil
}

// Variables lists the placeholder names in first-use order.
func (t *Template) Variables() []string {
	return append([]string(nil), t.vars...)
}

func (t *Template) Uses(name string) bool {
	for _, v := range t.vars {
		if v == name {
			return true
		}
	}
	return false
}

// Render fills every placeholder. A placeholder with no value in vars is an
// error; extra entries in vars are ignored.
func (t *Template) Render(vars map[string]string) (string, error) {
	var missing []string
	for _, v := range t.vars {
		if _, ok := vars[v]; !ok {
			missing = append(missing, v)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %s", ErrMissingVariables, strings.Join(missing, ", "))
	}
	return variablePattern.ReplaceAllStringFunc(t.text, func(match string) string {
		return vars[match[2:len(match)-2]]
	}), nil
}

// ExtractVariables returns the distinct placeholder names in text.
func ExtractVariables(text string) []string {
	matches := variablePattern.FindAllStringSubmatch(text, -1)
	seen := make(map[string]bool)
	var vars []string
	for _, m := range matches {
		if !seen[m[1]] {
			vars = append(vars, m[1])
			seen[m[1]] = true
		}
	}
	return vars
}

func snippet(s string) string {
	if r := []rune(s); len(r) > 20 {
		return string(r[:20])
	}
	return s
}
