package statechart

import "maps"

// StateID is the dense, document-order index of a state in a Descriptor.
// The root is always 0 and every descendant has a larger ID than its
// ancestors.
type StateID int

// NoState marks an absent parent or initial child.
const NoState StateID = -1

// NodeKind classifies a state.
type NodeKind uint8

const (
	Leaf NodeKind = iota
	Compound
	Parallel
)

func (k NodeKind) String() string {
	switch k {
	case Leaf:
		return "leaf"
	case Compound:
		return "compound"
	case Parallel:
		return "parallel"
	default:
		return "unknown"
	}
}

// RuleKind selects how a rule bounds its exit set.
type RuleKind uint8

const (
	// External rules exit and re-enter their source when targeting it or
	// one of its descendants.
	External RuleKind = iota
	// Internal rules whose targets all lie inside a compound source leave
	// the source active.
	Internal
)

func (k RuleKind) String() string {
	if k == Internal {
		return "internal"
	}
	return "external"
}

// Action mutates the context in response to an event. A non-nil error
// faults the machine.
type Action[C any] func(c *C, evt Event) error

// Guard decides whether a rule is enabled. Guards must not mutate c.
type Guard[C any] func(c *C, evt Event) bool

// Node is one state of a Descriptor.
type Node[C any] struct {
	ID       StateID
	Name     string // dotted path from the root, e.g. "player.playing"; the root uses the chart ID
	Kind     NodeKind
	Parent   StateID
	Children []StateID
	Initial  StateID // initial child of a compound state, NoState otherwise
	Depth    int
	Entry    []Action[C]
	Exit     []Action[C]
	Rules    []int // indices into the rule table, declaration order

	EntryNames []string
	ExitNames  []string

	end StateID // one past the last descendant
}

// Rule is one transition of the rule table.
type Rule[C any] struct {
	Source      StateID
	Event       string
	Guard       Guard[C]
	GuardName   string
	Actions     []Action[C]
	ActionNames []string
	Targets     []StateID // empty for targetless rules
	Kind        RuleKind
	Order       int
}

// Targetless reports whether the rule only runs actions.
func (r *Rule[C]) Targetless() bool {
	return len(r.Targets) == 0
}

// Descriptor is the immutable, validated hierarchy and rule table of a chart.
// It is safe to share between any number of machines and goroutines.
type Descriptor[C any] struct {
	id      string
	nodes   []Node[C]
	rules   []Rule[C]
	byName  map[string]StateID
	leaves  int
	initial map[string]any
	version string
}

// ID returns the chart ID.
func (d *Descriptor[C]) ID() string { return d.id }

// Root returns the ID of the root state.
func (d *Descriptor[C]) Root() StateID { return 0 }

// Len returns the number of states, root included.
func (d *Descriptor[C]) Len() int { return len(d.nodes) }

// Nodes returns the state table indexed by StateID. It must not be modified.
func (d *Descriptor[C]) Nodes() []Node[C] { return d.nodes }

// Rules returns the rule table in declaration order. It must not be modified.
func (d *Descriptor[C]) Rules() []Rule[C] { return d.rules }

// Node returns the state with the given ID.
func (d *Descriptor[C]) Node(id StateID) *Node[C] { return &d.nodes[id] }

// Lookup resolves a dotted state name.
func (d *Descriptor[C]) Lookup(name string) (StateID, bool) {
	id, ok := d.byName[name]
	return id, ok
}

// Name returns the dotted name of a state, or "" for an unknown ID.
func (d *Descriptor[C]) Name(id StateID) string {
	if id < 0 || int(id) >= len(d.nodes) {
		return ""
	}
	return d.nodes[id].Name
}

// IsAncestor reports whether a is a proper ancestor of b.
func (d *Descriptor[C]) IsAncestor(a, b StateID) bool {
	return a < b && b < d.nodes[a].end
}

// Leaves returns the number of leaf states.
func (d *Descriptor[C]) Leaves() int { return d.leaves }

// Version returns a hash of the rule table. It is stable across runs and
// processes for the same definition.
func (d *Descriptor[C]) Version() string { return d.version }

// InitialContext returns a copy of the chart's declared context values.
func (d *Descriptor[C]) InitialContext() map[string]any {
	return maps.Clone(d.initial)
}

// Table returns the serializable form of the descriptor.
func (d *Descriptor[C]) Table() Table {
	t := d.table()
	t.Version = d.version
	return t
}

func (d *Descriptor[C]) table() Table {
	t := Table{
		ID:      d.id,
		Context: maps.Clone(d.initial),
		States:  make([]TableState, len(d.nodes)),
		Rules:   make([]TableRule, len(d.rules)),
	}
	for i := range d.nodes {
		n := &d.nodes[i]
		t.States[i] = TableState{
			ID:       n.ID,
			Name:     n.Name,
			Kind:     n.Kind.String(),
			Parent:   n.Parent,
			Initial:  n.Initial,
			Children: n.Children,
			Entry:    n.EntryNames,
			Exit:     n.ExitNames,
			Rules:    n.Rules,
		}
	}
	for i := range d.rules {
		r := &d.rules[i]
		t.Rules[i] = TableRule{
			Source:  r.Source,
			Event:   r.Event,
			Guard:   r.GuardName,
			Actions: r.ActionNames,
			Targets: r.Targets,
			Kind:    r.Kind.String(),
		}
	}
	return t
}

// Table is the flat, serializable form of a Descriptor.
type Table struct {
	Version string         `json:"version" yaml:"version"`
	ID      string         `json:"id" yaml:"id"`
	Context map[string]any `json:"context,omitempty" yaml:"context,omitempty"`
	States  []TableState   `json:"states" yaml:"states"`
	Rules   []TableRule    `json:"rules" yaml:"rules"`
}

// TableState is one row of the state table.
type TableState struct {
	ID       StateID   `json:"id" yaml:"id"`
	Name     string    `json:"name" yaml:"name"`
	Kind     string    `json:"kind" yaml:"kind"`
	Parent   StateID   `json:"parent" yaml:"parent"`
	Initial  StateID   `json:"initial" yaml:"initial"`
	Children []StateID `json:"children,omitempty" yaml:"children,omitempty"`
	Entry    []string  `json:"entry,omitempty" yaml:"entry,omitempty"`
	Exit     []string  `json:"exit,omitempty" yaml:"exit,omitempty"`
	Rules    []int     `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// TableRule is one row of the rule table.
type TableRule struct {
	Source  StateID   `json:"source" yaml:"source"`
	Event   string    `json:"event" yaml:"event"`
	Guard   string    `json:"guard,omitempty" yaml:"guard,omitempty"`
	Actions []string  `json:"actions,omitempty" yaml:"actions,omitempty"`
	Targets []StateID `json:"targets,omitempty" yaml:"targets,omitempty"`
	Kind    string    `json:"kind" yaml:"kind"`
}
