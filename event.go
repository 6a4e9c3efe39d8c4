package statechart

import "github.com/comalice/statechart/internal/primitives"

// Definition and runtime value types shared with the chart front-end.
type (
	Event            = primitives.Event
	Vars             = primitives.Vars
	ChartConfig      = primitives.ChartConfig
	StateConfig      = primitives.StateConfig
	TransitionConfig = primitives.TransitionConfig
	StateType        = primitives.StateType
	TransitionType   = primitives.TransitionType
)

// NewEvent creates an event with an optional payload.
func NewEvent(eventType string, data any) Event {
	return primitives.NewEvent(eventType, data)
}

// NewVars creates a variable store seeded with a copy of initial.
func NewVars(initial map[string]any) Vars {
	return primitives.NewVars(initial)
}

// MatchEvent reports whether eventType is selected by a rule's event pattern.
func MatchEvent(pattern, eventType string) bool {
	return primitives.MatchEvent(pattern, eventType)
}
