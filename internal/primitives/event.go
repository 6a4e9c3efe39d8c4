// Event is the immutable stimulus fed to a machine.
//
// Events are value types. The Type tag is matched against transition event
// patterns; Data carries an optional payload inspected by guards and actions.
// Consumers MUST NOT modify an Event after it has been sent.
//
// Passing small stack values (integers, small structs) or pointers as Data
// keeps construction cheap; an Event with a nil payload never allocates.

package primitives

import "strings"

// Event describes a stimulus delivered to a machine.
type Event struct {
	Type string `json:"type" yaml:"type"`
	Data any    `json:"data,omitempty" yaml:"data,omitempty"`
}

// NewEvent creates and returns a new immutable Event.
func NewEvent(eventType string, data any) Event {
	return Event{
		Type: eventType,
		Data: data,
	}
}

// Matches reports whether the event type is selected by pattern.
//
// Patterns follow SCXML event descriptors:
//   - "*" matches every event;
//   - "a.b" matches "a.b" and any dotted descendant such as "a.b.c";
//   - a trailing ".*" is ignored, so "a.*" behaves like "a".
func (e Event) Matches(pattern string) bool {
	return MatchEvent(pattern, e.Type)
}

// MatchEvent reports whether eventType is selected by pattern.
func MatchEvent(pattern, eventType string) bool {
	if pattern == "*" {
		return true
	}
	pattern = strings.TrimSuffix(pattern, ".*")
	if pattern == "" {
		return false
	}
	if !strings.HasPrefix(eventType, pattern) {
		return false
	}
	return len(eventType) == len(pattern) || eventType[len(pattern)] == '.'
}
