// Package policy maps a caller's role to what the assistant may disclose.
package policy

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownRole = errors.New("unknown role")

// Role is the caller's access class.
type Role string

const (
	Privileged  Role = "privileged"
	SalesScoped Role = "sales"
	FieldScoped Role = "field"
)

// Policy is the disclosure rule bound to a role.
type Policy struct {
	Role             Role   `json:"role"`
	Label            string `json:"label"`
	Access           string `json:"access"`
	Directive        string `json:"directive"`
	DiscloseMonetary bool   `json:"disclose_monetary"`
}

var table = []Policy{
	{
		Role:             Privileged,
		Label:            "CEO (God Mode)",
		Access:           "Full Access Granted",
		Directive:        "no restrictions; full disclosure permitted.",
		DiscloseMonetary: true,
	},
	{
		Role:             SalesScoped,
		Label:            "Sales Manager",
		Access:           "Sales Access Granted",
		Directive:        "monetary/balance data may be disclosed; emphasize sales and negotiation framing.",
		DiscloseMonetary: true,
	},
	{
		Role:             FieldScoped,
		Label:            "Driver (Field Ops)",
		Access:           "Driver Access (Restricted)",
		Directive:        "monetary/balance data must NOT be disclosed; restrict to logistics/location framing.",
		DiscloseMonetary: false,
	},
}

// For returns the policy of a role. Roles outside the enumerated set fail
// with ErrUnknownRole; there is no default policy.
func For(r Role) (Policy, error) {
	for _, p := range table {
		if p.Role == r {
			return p, nil
		}
	}
	return Policy{}, fmt.Errorf("%w: %q", ErrUnknownRole, string(r))
}

// ParseRole accepts a role identifier or its display label.
func ParseRole(s string) (Role, error) {
	v := strings.TrimSpace(s)
	for _, p := range table {
		if strings.EqualFold(v, string(p.Role)) || strings.EqualFold(v, p.Label) {
			return p.Role, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// All lists every policy in role order.
func All() []Policy {
	return append([]Policy(nil), table...)
}

func (r Role) Valid() bool {
	_, err := For(r)
	return err == nil
}

func (r Role) String() string { return string(r) }
