// ChartConfig is the top-level, serializable definition of a statechart:
// the chart ID, the root kind, the ordered top-level states and the initial
// variables for data-driven charts.

package primitives

import (
	"errors"
	"fmt"
)

// ChartConfig defines a complete statechart.
type ChartConfig struct {
	Version string         `json:"version,omitempty" yaml:"version,omitempty"`
	ID      string         `json:"id" yaml:"id"`
	Type    StateType      `json:"type,omitempty" yaml:"type,omitempty"`       // root kind: compound (default) or parallel
	Initial string         `json:"initial,omitempty" yaml:"initial,omitempty"` // required for a compound root
	Context map[string]any `json:"context,omitempty" yaml:"context,omitempty"`
	States  []*StateConfig `json:"states" yaml:"states"`
}

// RootKind returns the kind of the implicit root state.
func (c *ChartConfig) RootKind() StateType {
	if c.Type == "" {
		return Compound
	}
	return c.Type
}

// Root returns the chart as a single StateConfig tree whose children are the
// top-level states. The returned value shares children with c.
func (c *ChartConfig) Root() *StateConfig {
	return &StateConfig{
		ID:       c.ID,
		Type:     c.RootKind(),
		Initial:  c.Initial,
		Children: c.States,
	}
}

// Validate checks the definition syntactically:
// - non-empty ID and at least one state
// - every state validates (recursive)
// - sibling IDs are unique
func (c *ChartConfig) Validate() error {
	if c.ID == "" {
		return errors.New("chart ID is required")
	}
	if len(c.States) == 0 {
		return errors.New("states list is required and cannot be empty")
	}
	switch c.RootKind() {
	case Compound, Parallel:
	default:
		return fmt.Errorf("invalid root type %q", c.Type)
	}

	var errs []error
	for i, state := range c.States {
		if state == nil {
			errs = append(errs, fmt.Errorf("state %d is nil", i))
			continue
		}
		if err := state.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("state %q validation failed: %w", state.ID, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	root := c.Root()
	root.Walk(func(s *StateConfig, _ int) bool {
		seen := make(map[string]bool, len(s.Children))
		for _, child := range s.Children {
			if seen[child.ID] {
				errs = append(errs, fmt.Errorf("duplicate state %q under %q", child.ID, s.ID))
			}
			seen[child.ID] = true
		}
		return true
	})
	return errors.Join(errs...)
}
