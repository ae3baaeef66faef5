package policy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/cretahub/internal/policy"
)

func TestForReturnsFixedDirectives(t *testing.T) {
	want := map[policy.Role]string{
		policy.Privileged:  "no restrictions; full disclosure permitted.",
		policy.SalesScoped: "monetary/balance data may be disclosed; emphasize sales and negotiation framing.",
		policy.FieldScoped: "monetary/balance data must NOT be disclosed; restrict to logistics/location framing.",
	}

	for role, directive := range want {
		p, err := policy.For(role)
		require.NoError(t, err, role)
		assert.Equal(t, directive, p.Directive)
		assert.Equal(t, role, p.Role)
	}
}

func TestForMonetaryDisclosure(t *testing.T) {
	for _, tc := range []struct {
		role policy.Role
		want bool
	}{
		{policy.Privileged, true},
		{policy.SalesScoped, true},
		{policy.FieldScoped, false},
	} {
		p, err := policy.For(tc.role)
		require.NoError(t, err)
		assert.Equal(t, tc.want, p.DiscloseMonetary, tc.role)
	}
}

func TestForUnknownRole(t *testing.T) {
	for _, r := range []policy.Role{"", "admin", "Driver", "PRIVILEGED "} {
		_, err := policy.For(r)
		assert.ErrorIs(t, err, policy.ErrUnknownRole, string(r))
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want policy.Role
	}{
		{"privileged", policy.Privileged},
		{"SALES", policy.SalesScoped},
		{" field ", policy.FieldScoped},
		{"CEO (God Mode)", policy.Privileged},
		{"Sales Manager", policy.SalesScoped},
		{"Driver (Field Ops)", policy.FieldScoped},
	}
	for _, tt := range tests {
		got, err := policy.ParseRole(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	// Substring matches must not resolve to a role.
	for _, in := range []string{"Driver", "CEO", "god", "Sales Manager (temp)"} {
		_, err := policy.ParseRole(in)
		assert.ErrorIs(t, err, policy.ErrUnknownRole, in)
	}
}

func TestAllIsCopy(t *testing.T) {
	all := policy.All()
	require.Len(t, all, 3)
	all[0].Directive = "tampered"

	p, err := policy.For(policy.Privileged)
	require.NoError(t, err)
	assert.Equal(t, "no restrictions; full disclosure permitted.", p.Directive)
}
