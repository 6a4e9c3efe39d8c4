package production

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/comalice/statechart"
)

// Describe renders a Markdown summary of a compiled chart: one table of
// states and one of transition rules, both in document order.
func Describe(t statechart.Table) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Chart `%s`\n\n", t.ID)
	fmt.Fprintf(&sb, "Version `%s`, %d states, %d rules.\n\n", shortVersion(t.Version), len(t.States), len(t.Rules))

	if len(t.Context) > 0 {
		sb.WriteString("## Context\n\n| Variable | Initial value |\n|---|---|\n")
		for _, key := range slices.Sorted(maps.Keys(t.Context)) {
			fmt.Fprintf(&sb, "| %s | %s |\n", cell(key), cell(fmt.Sprint(t.Context[key])))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## States\n\n| State | Kind | Initial | Entry | Exit |\n|---|---|---|---|---|\n")
	for _, s := range t.States {
		initial := ""
		if s.Initial != statechart.NoState {
			initial = shortName(t.States[s.Initial].Name)
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s |\n",
			cell(s.Name), s.Kind, cell(initial), cell(strings.Join(s.Entry, ", ")), cell(strings.Join(s.Exit, ", ")))
	}

	if len(t.Rules) > 0 {
		sb.WriteString("\n## Transitions\n\n| Source | Event | Guard | Targets | Actions | Kind |\n|---|---|---|---|---|---|\n")
		for _, r := range t.Rules {
			targets := make([]string, len(r.Targets))
			for i, id := range r.Targets {
				targets[i] = t.States[id].Name
			}
			target := strings.Join(targets, ", ")
			if target == "" {
				target = "(none)"
			}
			fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s |\n",
				cell(t.States[r.Source].Name), cell(r.Event), cell(r.Guard), cell(target), cell(strings.Join(r.Actions, ", ")), r.Kind)
		}
	}
	return sb.String()
}

func shortVersion(v string) string {
	if len(v) > 12 {
		return v[:12]
	}
	return v
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
