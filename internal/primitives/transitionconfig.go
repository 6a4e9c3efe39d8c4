// TransitionConfig defines transitions between states with guards and actions.
//
// Targets are state names, either a full dot-separated path
// ("player.playing") or a unique short ID ("playing"). A transition without
// targets is targetless: its actions run but no state is exited or entered.
// Guards and actions are referenced by name and bound by the compiler.

package primitives

import (
	"errors"
	"fmt"
	"strings"
)

// TransitionType selects how a transition bounds its exit set.
type TransitionType string

const (
	// External transitions exit and re-enter their source when targeting it
	// or one of its descendants.
	External TransitionType = "external"
	// Internal transitions targeting descendants of a compound source do not
	// exit the source.
	Internal TransitionType = "internal"
)

// TransitionConfig defines a single transition triggered by an event pattern.
type TransitionConfig struct {
	Event   string         `json:"event" yaml:"event"`
	Guard   string         `json:"guard,omitempty" yaml:"guard,omitempty"`
	Target  string         `json:"target,omitempty" yaml:"target,omitempty"`
	Targets []string       `json:"targets,omitempty" yaml:"targets,omitempty"`
	Actions []string       `json:"actions,omitempty" yaml:"actions,omitempty"`
	Type    TransitionType `json:"type,omitempty" yaml:"type,omitempty"`
}

// AllTargets returns Target followed by Targets, skipping empty entries.
func (t *TransitionConfig) AllTargets() []string {
	out := make([]string, 0, 1+len(t.Targets))
	if t.Target != "" {
		out = append(out, t.Target)
	}
	for _, target := range t.Targets {
		if target != "" {
			out = append(out, target)
		}
	}
	return out
}

// Validate checks TransitionConfig fields and target path syntax.
func (t *TransitionConfig) Validate() error {
	if strings.TrimSpace(t.Event) == "" {
		return errors.New("event is required")
	}
	for _, target := range t.AllTargets() {
		if err := validatePath(target); err != nil {
			return err
		}
	}
	switch t.Type {
	case "", External, Internal:
	default:
		return fmt.Errorf("invalid transition type %q", t.Type)
	}
	return nil
}

// validatePath checks a dot-separated path of non-empty identifier segments.
func validatePath(path string) error {
	segments := strings.Split(path, ".")
	for i, seg := range segments {
		if seg == "" {
			return fmt.Errorf("invalid target path %q: empty segment at index %d", path, i)
		}
		if err := ValidateName(seg); err != nil {
			return fmt.Errorf("invalid target path %q: %w", path, err)
		}
	}
	return nil
}

// ValidateName checks a single identifier: alphanumerics, underscores and hyphens.
func ValidateName(name string) error {
	for _, r := range name {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return fmt.Errorf("invalid character '%c' in %q", r, name)
		}
	}
	return nil
}
