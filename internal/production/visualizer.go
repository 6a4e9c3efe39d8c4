package production

import (
	"fmt"
	"strings"

	"github.com/comalice/statechart"
)

// ExportDOT generates Graphviz DOT source for a compiled chart. Compound and
// parallel states become clusters; states named in active (leaf names as
// returned by Machine.StateNames) and their ancestors are highlighted.
func ExportDOT(t statechart.Table, active []string) string {
	var sb strings.Builder
	sb.WriteString(`digraph Statechart {
  rankdir=LR;
  node [shape=box, fontsize=10, style=rounded];
  edge [fontsize=9];
`)
	if len(t.States) == 0 {
		sb.WriteString("}\n")
		return sb.String()
	}

	on := activeSet(t, active)
	renderDOT(&sb, t, 0, on, "  ")

	for _, r := range t.Rules {
		from := t.States[r.Source].Name
		label := ruleLabel(r)
		if len(r.Targets) == 0 {
			fmt.Fprintf(&sb, "  %q -> %q [label=%q, style=dashed];\n", from, from, label)
			continue
		}
		for _, target := range r.Targets {
			fmt.Fprintf(&sb, "  %q -> %q [label=%q];\n", from, t.States[target].Name, label)
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

func renderDOT(sb *strings.Builder, t statechart.Table, id statechart.StateID, on []bool, indent string) {
	s := t.States[id]
	if len(s.Children) == 0 {
		style := ""
		if on[id] {
			style = " style=filled fillcolor=lightgreen"
		}
		fmt.Fprintf(sb, "%s%q [label=%q%s];\n", indent, s.Name, shortName(s.Name), style)
		return
	}

	fmt.Fprintf(sb, "%ssubgraph cluster_%s {\n", indent, sanitizeID(s.Name))
	parentStyle := ""
	if on[id] {
		parentStyle = " style=filled fillcolor=orange"
	}
	fmt.Fprintf(sb, "%s  label=\"%s (%s)\";\n", indent, shortName(s.Name), s.Kind)
	if s.Kind == statechart.Parallel.String() {
		fmt.Fprintf(sb, "%s  style=filled; fillcolor=lightblue;\n", indent)
	}
	fmt.Fprintf(sb, "%s  %q [label=%q shape=ellipse%s];\n", indent, s.Name, shortName(s.Name), parentStyle)
	for _, child := range s.Children {
		renderDOT(sb, t, child, on, indent+"  ")
	}
	fmt.Fprintf(sb, "%s}\n", indent)
}

// ExportMermaid generates a Mermaid stateDiagram-v2 for a compiled chart.
// Parallel regions are separated with "--"; active states are styled with
// the "active" class.
func ExportMermaid(t statechart.Table, active []string) string {
	var sb strings.Builder
	sb.WriteString("stateDiagram-v2\n")
	if len(t.States) == 0 {
		return sb.String()
	}

	root := t.States[0]
	if root.Kind == statechart.Parallel.String() {
		renderMermaid(&sb, t, 0, "    ")
	} else {
		renderMermaidChildren(&sb, t, root, "    ")
	}

	for _, r := range t.Rules {
		from := sanitizeID(t.States[r.Source].Name)
		label := strings.ReplaceAll(ruleLabel(r), ":", " ")
		if len(r.Targets) == 0 {
			fmt.Fprintf(&sb, "    %s --> %s: %s (internal)\n", from, from, label)
			continue
		}
		for _, target := range r.Targets {
			fmt.Fprintf(&sb, "    %s --> %s: %s\n", from, sanitizeID(t.States[target].Name), label)
		}
	}

	if on := activeSet(t, active); len(active) > 0 {
		sb.WriteString("\n    classDef active fill:#ffeb3b,stroke:#fbc02d,stroke-width:2px,color:#000\n")
		for id, s := range t.States {
			if on[id] && len(s.Children) == 0 {
				fmt.Fprintf(&sb, "    class %s active\n", sanitizeID(s.Name))
			}
		}
	}
	return sb.String()
}

func renderMermaid(sb *strings.Builder, t statechart.Table, id statechart.StateID, indent string) {
	s := t.States[id]
	safe := sanitizeID(s.Name)
	fmt.Fprintf(sb, "%sstate \"%s\" as %s\n", indent, shortName(s.Name), safe)
	if len(s.Children) == 0 {
		return
	}
	fmt.Fprintf(sb, "%sstate %s {\n", indent, safe)
	renderMermaidChildren(sb, t, s, indent+"    ")
	fmt.Fprintf(sb, "%s}\n", indent)
}

func renderMermaidChildren(sb *strings.Builder, t statechart.Table, s statechart.TableState, indent string) {
	parallel := s.Kind == statechart.Parallel.String()
	if s.Initial != statechart.NoState {
		fmt.Fprintf(sb, "%s[*] --> %s\n", indent, sanitizeID(t.States[s.Initial].Name))
	}
	for i, child := range s.Children {
		if parallel && i > 0 {
			fmt.Fprintf(sb, "%s--\n", indent)
		}
		renderMermaid(sb, t, child, indent)
	}
}

// activeSet marks the named states and all their ancestors.
func activeSet(t statechart.Table, active []string) []bool {
	on := make([]bool, len(t.States))
	if len(active) == 0 {
		return on
	}
	byName := make(map[string]statechart.StateID, len(t.States))
	for _, s := range t.States {
		byName[s.Name] = s.ID
	}
	for _, name := range active {
		id, ok := byName[name]
		for ok && id != statechart.NoState && !on[id] {
			on[id] = true
			id = t.States[id].Parent
		}
	}
	return on
}

func ruleLabel(r statechart.TableRule) string {
	if r.Guard == "" {
		return r.Event
	}
	return fmt.Sprintf("%s [%s]", r.Event, r.Guard)
}

func shortName(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

func sanitizeID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", " ", "_").Replace(id)
}
