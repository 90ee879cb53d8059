package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseState(t *testing.T) {
	for _, raw := range []string{"submitted", "acknowledged", "investigating", "resolved", "closed"} {
		state, ok := ParseState(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, State(raw), state)
	}

	_, ok := ParseState("archived")
	assert.False(t, ok)
	_, ok = ParseState("")
	assert.False(t, ok)
}

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from    State
		to      State
		allowed bool
	}{
		{StateSubmitted, StateAcknowledged, true},
		{StateSubmitted, StateClosed, true},
		{StateAcknowledged, StateInvestigating, true},
		{StateInvestigating, StateResolved, true},
		{StateResolved, StateClosed, true},
		{StateClosed, StateSubmitted, false},
		{StateResolved, StateInvestigating, false},
		{StateAcknowledged, StateAcknowledged, false},
		{StateSubmitted, State("archived"), false},
		{State(""), StateClosed, false},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestSeverityValid(t *testing.T) {
	for _, s := range []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical} {
		assert.True(t, s.Valid())
	}
	assert.False(t, Severity("urgent").Valid())
	assert.False(t, Severity("").Valid())
}

func TestValidationErrorMatches(t *testing.T) {
	err := Validationf("requires assignment to a responder")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "requires assignment to a responder", err.Error())
	assert.NotErrorIs(t, err, ErrNotFound)
}
