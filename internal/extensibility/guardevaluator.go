package extensibility

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/comalice/statechart"
	"github.com/comalice/statechart/internal/primitives"
)

// Comparison operators understood by expression guards.
const (
	opEq = "=="
	opNe = "!="
	opLt = "<"
	opGt = ">"
	opLe = "<="
	opGe = ">="
)

// ParseGuard compiles a "key op value" expression such as "temp > 30",
// "loggedIn == true" or `user != "bob"` into a guard over Vars.
//
// The key names a variable, or a payload field when prefixed with "event."
// and the event carries a map[string]any. Missing keys fail closed. Numbers
// compare numerically whatever their Go type; strings and booleans support
// only == and !=.
func ParseGuard(expr string) (statechart.Guard[statechart.Vars], error) {
	fields := strings.Fields(expr)
	if len(fields) < 3 {
		return nil, fmt.Errorf("guard %q: want \"key op value\"", expr)
	}
	key, op := fields[0], fields[1]
	switch op {
	case opEq, opNe, opLt, opGt, opLe, opGe:
	default:
		return nil, fmt.Errorf("guard %q: unknown operator %q", expr, op)
	}
	want, err := ParseValue(strings.Join(fields[2:], " "))
	if err != nil {
		return nil, fmt.Errorf("guard %q: %w", expr, err)
	}
	if _, numeric := want.(float64); !numeric && op != opEq && op != opNe {
		return nil, fmt.Errorf("guard %q: %s needs a numeric operand", expr, op)
	}

	field, fromEvent := strings.CutPrefix(key, "event.")
	return func(v *statechart.Vars, evt statechart.Event) bool {
		var got any
		var ok bool
		if fromEvent {
			got, ok = payloadField(evt, field)
		} else {
			got, ok = v.Get(key)
		}
		if !ok {
			return false
		}
		return compare(got, op, want)
	}, nil
}

// ParseValue interprets a literal: true, false, nil, a number (as float64),
// a double-quoted string, or any other bare word as a string.
func ParseValue(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch raw {
	case "":
		return nil, fmt.Errorf("missing value")
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "nil", "null":
		return nil, nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f, nil
	}
	if strings.HasPrefix(raw, `"`) {
		s, err := strconv.Unquote(raw)
		if err != nil {
			return nil, fmt.Errorf("bad string literal %s", raw)
		}
		return s, nil
	}
	return raw, nil
}

func payloadField(evt statechart.Event, field string) (any, bool) {
	data, ok := evt.Data.(map[string]any)
	if !ok {
		return nil, false
	}
	val, ok := data[field]
	return val, ok
}

func compare(got any, op string, want any) bool {
	if w, ok := want.(float64); ok {
		g, ok := primitives.ToFloat(got)
		if !ok {
			return op == opNe
		}
		switch op {
		case opEq:
			return g == w
		case opNe:
			return g != w
		case opLt:
			return g < w
		case opGt:
			return g > w
		case opLe:
			return g <= w
		case opGe:
			return g >= w
		}
		return false
	}
	equal := got == want
	if op == opNe {
		return !equal
	}
	return equal
}
