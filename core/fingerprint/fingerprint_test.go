package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSum_Deterministic tests that the same sections always hash identically.
func TestSum_Deterministic(t *testing.T) {
	sections := []Section{
		{Type: "static text", Content: "Administer slowly"},
		{Type: "executable expression", Content: "dose * weight"},
	}

	assert.Equal(t, Sum(sections), Sum(sections))
}

// TestSum_OrderSensitive tests that permuting sections changes the hash.
func TestSum_OrderSensitive(t *testing.T) {
	a := []Section{
		{Type: "static text", Content: "first"},
		{Type: "static text", Content: "second"},
	}
	b := []Section{
		{Type: "static text", Content: "second"},
		{Type: "static text", Content: "first"},
	}

	assert.NotEqual(t, Sum(a), Sum(b))
}

// TestSum_TypeParticipates tests that the section type is part of identity.
func TestSum_TypeParticipates(t *testing.T) {
	a := []Section{{Type: "static text", Content: "x"}}
	b := []Section{{Type: "executable expression", Content: "x"}}

	assert.NotEqual(t, Sum(a), Sum(b))
}

// TestNormalize_BoundarySafety tests that content cannot leak across section
// boundaries in the canonical form.
func TestNormalize_BoundarySafety(t *testing.T) {
	a := []Section{{Type: "t", Content: "ab"}, {Type: "t", Content: "c"}}
	b := []Section{{Type: "t", Content: "a"}, {Type: "t", Content: "bc"}}

	assert.NotEqual(t, Normalize(a), Normalize(b))
	assert.NotEqual(t, Sum(a), Sum(b))
}

// TestSum_Empty tests hashing an empty section list is stable.
func TestSum_Empty(t *testing.T) {
	assert.Equal(t, Sum(nil), Sum([]Section{}))
}
