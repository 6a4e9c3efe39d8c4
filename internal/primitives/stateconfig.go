package primitives

import (
	"errors"
	"fmt"
)

// StateType defines the possible kinds of states in a chart definition.
type StateType string

const (
	Atomic   StateType = "atomic"
	Compound StateType = "compound"
	Parallel StateType = "parallel"
)

// StateConfig defines one state of a chart definition, supporting hierarchical nesting.
//
// Transitions are kept as an ordered list: when several transitions of the
// same state match an event, the first enabled one in declaration order wins.
type StateConfig struct {
	ID          string             `json:"id" yaml:"id"`
	Type        StateType          `json:"type,omitempty" yaml:"type,omitempty"`
	Initial     string             `json:"initial,omitempty" yaml:"initial,omitempty"` // initial child for compound states
	Entry       []string           `json:"entry,omitempty" yaml:"entry,omitempty"`
	Exit        []string           `json:"exit,omitempty" yaml:"exit,omitempty"`
	Transitions []TransitionConfig `json:"on,omitempty" yaml:"on,omitempty"`
	Children    []*StateConfig     `json:"states,omitempty" yaml:"states,omitempty"`
}

// NewStateConfig creates a new StateConfig with ID and Type.
func NewStateConfig(id string, typ StateType) *StateConfig {
	return &StateConfig{
		ID:   id,
		Type: typ,
	}
}

// Kind returns the declared type, inferring it when the definition omits it:
// a state with children is compound, anything else is atomic.
func (s *StateConfig) Kind() StateType {
	if s.Type != "" {
		return s.Type
	}
	if len(s.Children) > 0 {
		return Compound
	}
	return Atomic
}

// WithInitial sets the initial child state ID (compound states).
func (s *StateConfig) WithInitial(initial string) *StateConfig {
	s.Initial = initial
	return s
}

// AddTransition appends a transition, preserving declaration order.
func (s *StateConfig) AddTransition(trans TransitionConfig) *StateConfig {
	s.Transitions = append(s.Transitions, trans)
	return s
}

// AddEntry adds an entry action name.
func (s *StateConfig) AddEntry(action string) *StateConfig {
	s.Entry = append(s.Entry, action)
	return s
}

// AddExit adds an exit action name.
func (s *StateConfig) AddExit(action string) *StateConfig {
	s.Exit = append(s.Exit, action)
	return s
}

// WithChildren sets child states.
func (s *StateConfig) WithChildren(children ...*StateConfig) *StateConfig {
	s.Children = children
	return s
}

// AddChild adds a child state.
func (s *StateConfig) AddChild(child *StateConfig) *StateConfig {
	s.Children = append(s.Children, child)
	return s
}

// State creates and adds a child state (atomic by default, or the given type).
// Returns the child for fluent chaining: parent.State("child").Transition("evt", "target").
func (s *StateConfig) State(id string, typ ...StateType) *StateConfig {
	t := Atomic
	if len(typ) > 0 {
		t = typ[0]
	}
	child := NewStateConfig(id, t)
	s.AddChild(child)
	return child
}

// Transition adds a simple transition from event to target.
// Optionally override with a full TransitionConfig via the last arg; its
// Event and Target are filled in when left empty.
// Usage: .Transition("evt", "target") or .Transition("evt", "target", TransitionConfig{Guard: "ready"}).
func (s *StateConfig) Transition(event, target string, transOpts ...TransitionConfig) *StateConfig {
	trans := TransitionConfig{}
	if len(transOpts) > 0 {
		trans = transOpts[0]
	}
	if trans.Event == "" {
		trans.Event = event
	}
	if trans.Target == "" && len(trans.Targets) == 0 {
		trans.Target = target
	}
	return s.AddTransition(trans)
}

// Walk visits s and its descendants in document order (pre-order).
// Returning false from fn skips the subtree of that state.
func (s *StateConfig) Walk(fn func(state *StateConfig, depth int) bool) {
	s.walk(fn, 0)
}

func (s *StateConfig) walk(fn func(*StateConfig, int) bool, depth int) {
	if !fn(s, depth) {
		return
	}
	for _, child := range s.Children {
		if child != nil {
			child.walk(fn, depth+1)
		}
	}
}

// Validate performs recursive syntactic validation of the StateConfig tree.
// Structural rules that need the whole chart (initial children, parallel
// regions, target resolution) are checked by the compiler.
func (s *StateConfig) Validate() error {
	if s.ID == "" {
		return errors.New("state ID is required")
	}
	if err := ValidateName(s.ID); err != nil {
		return fmt.Errorf("state %q: %w", s.ID, err)
	}

	switch s.Kind() {
	case Atomic:
		if s.Initial != "" {
			return fmt.Errorf("atomic state %s cannot have Initial", s.ID)
		}
		if len(s.Children) > 0 {
			return fmt.Errorf("atomic state %s cannot have Children", s.ID)
		}
	case Compound, Parallel:
		if len(s.Children) == 0 {
			return fmt.Errorf("%s state %s requires Children", s.Kind(), s.ID)
		}
	default:
		return fmt.Errorf("invalid state type %q for state %s", s.Type, s.ID)
	}

	for i := range s.Transitions {
		if err := s.Transitions[i].Validate(); err != nil {
			return fmt.Errorf("state %s transition %d: %w", s.ID, i, err)
		}
	}

	for i, child := range s.Children {
		if child == nil {
			return fmt.Errorf("child %d of %s is nil", i, s.ID)
		}
		if err := child.Validate(); err != nil {
			return fmt.Errorf("child %d (%s) of %s failed validation: %w", i, child.ID, s.ID, err)
		}
	}

	return nil
}
