// Package extensibility provides the named actions and guards available to
// data-driven charts whose context is statechart.Vars.
package extensibility

import (
	"log/slog"

	"github.com/comalice/statechart"
)

// NewRegistry returns a Vars registry that resolves unbound guard names as
// expressions and unbound action names as built-in actions. Explicit
// bindings added later take precedence. A nil logger disables action
// logging.
func NewRegistry(logger *slog.Logger) *statechart.Registry[statechart.Vars] {
	reg := statechart.NewRegistry[statechart.Vars]()
	reg.GuardFactory(ParseGuard)
	reg.ActionFactory(func(name string) (statechart.Action[statechart.Vars], error) {
		action, err := ParseAction(name, logger)
		if err != nil {
			return nil, err
		}
		return Logged(logger, name, action), nil
	})
	return reg
}
