package extensibility

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/comalice/statechart"
	"github.com/comalice/statechart/internal/primitives"
)

// ParseAction compiles a built-in action name:
//
//	set key=value   store a literal (see ParseValue)
//	assign key      store the event payload
//	unset key       delete a variable
//	inc key         add one to a numeric variable, starting from zero
//	dec key         subtract one from a numeric variable
//	log message     log message at info level
func ParseAction(name string, logger *slog.Logger) (statechart.Action[statechart.Vars], error) {
	verb, arg, _ := strings.Cut(strings.TrimSpace(name), " ")
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return nil, fmt.Errorf("action %q: missing argument", name)
	}

	switch verb {
	case "set":
		key, raw, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("action %q: want \"set key=value\"", name)
		}
		val, err := ParseValue(raw)
		if err != nil {
			return nil, fmt.Errorf("action %q: %w", name, err)
		}
		return func(v *statechart.Vars, _ statechart.Event) error {
			v.Set(key, val)
			return nil
		}, nil
	case "assign":
		return func(v *statechart.Vars, evt statechart.Event) error {
			v.Set(arg, evt.Data)
			return nil
		}, nil
	case "unset":
		return func(v *statechart.Vars, _ statechart.Event) error {
			v.Delete(arg)
			return nil
		}, nil
	case "inc", "dec":
		delta := 1.0
		if verb == "dec" {
			delta = -1
		}
		return func(v *statechart.Vars, _ statechart.Event) error {
			cur := 0.0
			if raw, ok := v.Get(arg); ok {
				f, ok := primitives.ToFloat(raw)
				if !ok {
					return fmt.Errorf("%s %s: %T is not numeric", verb, arg, raw)
				}
				cur = f
			}
			v.Set(arg, cur+delta)
			return nil
		}, nil
	case "log":
		if logger == nil {
			logger = slog.Default()
		}
		return func(v *statechart.Vars, evt statechart.Event) error {
			logger.Info(arg, "event", evt.Type)
			return nil
		}, nil
	default:
		return nil, fmt.Errorf("action %q: unknown verb %q", name, verb)
	}
}

// Logged wraps an action with debug logging of its name, event, duration
// and outcome.
func Logged[C any](logger *slog.Logger, name string, action statechart.Action[C]) statechart.Action[C] {
	if logger == nil || action == nil {
		return action
	}
	return func(c *C, evt statechart.Event) error {
		if !logger.Enabled(context.Background(), slog.LevelDebug) {
			return action(c, evt)
		}
		start := time.Now()
		err := action(c, evt)
		logger.Debug("action completed",
			"action", name,
			"event", evt.Type,
			"duration", time.Since(start),
			"err", err,
		)
		return err
	}
}
