package domain

// State is a report lifecycle state. All five are valid at-rest states.
// Transitions only move forward through the ranking; the backend
// rejects anything else.
type State string

const (
	StateSubmitted     State = "submitted"
	StateAcknowledged  State = "acknowledged"
	StateInvestigating State = "investigating"
	StateResolved      State = "resolved"
	StateClosed        State = "closed"
)

var stateRank = map[State]int{
	StateSubmitted:     1,
	StateAcknowledged:  2,
	StateInvestigating: 3,
	StateResolved:      4,
	StateClosed:        5,
}

func (s State) Valid() bool {
	_, ok := stateRank[s]
	return ok
}

func (s State) Rank() int {
	return stateRank[s]
}

// CanTransitionTo reports whether target is a legal forward move.
func (s State) CanTransitionTo(target State) bool {
	if !s.Valid() || !target.Valid() {
		return false
	}
	return target.Rank() > s.Rank()
}

// ParseState returns the State for a raw value, ok false when the
// value is not one of the five states.
func ParseState(raw string) (State, bool) {
	s := State(raw)
	return s, s.Valid()
}

// Severity orders how urgently a report needs attention.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}
