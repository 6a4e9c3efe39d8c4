package statechart

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/comalice/statechart/internal/primitives"
)

// Compile translates a chart definition into a Descriptor, binding action
// and guard names against reg. Compilation does not stop at the first
// problem: the returned error joins one *ConstructionError per diagnostic.
//
// State IDs are assigned in document order. Transition targets are
// resolved by full dotted name first, then by a unique name suffix, so
// "playing" finds "player.playing" as long as no other state ends the
// same way.
func Compile[C any](cfg *ChartConfig, reg *Registry[C]) (*Descriptor[C], error) {
	if cfg == nil || len(cfg.States) == 0 {
		return nil, &ConstructionError{Code: ErrEmptyChart}
	}

	c := &compiler[C]{
		reg:    reg,
		byName: make(map[string]StateID),
	}
	if cfg.ID == "" {
		c.fail("", ErrInvalidState, "chart ID is required")
	} else if err := primitives.ValidateName(cfg.ID); err != nil {
		c.fail(cfg.ID, ErrInvalidState, "%v", err)
	}
	c.addNode(cfg.Root(), cfg.ID, NoState, 0)
	c.bindStates()
	c.bindRules()
	if len(c.errs) > 0 {
		return nil, errors.Join(c.errs...)
	}

	d := &Descriptor[C]{
		id:      cfg.ID,
		nodes:   c.nodes,
		rules:   c.rules,
		byName:  c.byName,
		leaves:  c.leaves,
		initial: maps.Clone(cfg.Context),
	}
	version, err := primitives.ComputeVersion(cfg.Version, d.table())
	if err != nil {
		return nil, fmt.Errorf("fingerprint chart %q: %w", cfg.ID, err)
	}
	d.version = version
	return d, nil
}

type compiler[C any] struct {
	reg    *Registry[C]
	nodes  []Node[C]
	defs   []*StateConfig
	byName map[string]StateID
	rules  []Rule[C]
	leaves int
	errs   []error
}

func (c *compiler[C]) fail(state string, code error, format string, args ...any) {
	detail := format
	if len(args) > 0 {
		detail = fmt.Sprintf(format, args...)
	}
	c.errs = append(c.errs, &ConstructionError{State: state, Code: code, Detail: detail})
}

// addNode assigns IDs to def and its subtree in pre-order.
func (c *compiler[C]) addNode(def *StateConfig, name string, parent StateID, depth int) StateID {
	id := StateID(len(c.nodes))
	c.nodes = append(c.nodes, Node[C]{
		ID:      id,
		Name:    name,
		Parent:  parent,
		Initial: NoState,
		Depth:   depth,
	})
	c.defs = append(c.defs, def)
	c.byName[name] = id

	seen := make(map[string]bool, len(def.Children))
	for i, child := range def.Children {
		if child == nil {
			c.fail(name, ErrInvalidState, "child %d is nil", i)
			continue
		}
		if child.ID == "" {
			c.fail(name, ErrInvalidState, "child %d has no ID", i)
			continue
		}
		childName := child.ID
		if parent != NoState {
			childName = name + "." + child.ID
		}
		if err := primitives.ValidateName(child.ID); err != nil {
			c.fail(childName, ErrInvalidState, "%v", err)
			continue
		}
		if seen[child.ID] {
			c.fail(childName, ErrDuplicateState, "declared more than once under %q", name)
			continue
		}
		seen[child.ID] = true
		if parent == NoState && child.ID == name {
			c.fail(childName, ErrDuplicateState, "top-level state reuses the chart ID")
			continue
		}

		cid := c.addNode(child, childName, id, depth+1)
		c.nodes[id].Children = append(c.nodes[id].Children, cid)
	}
	c.nodes[id].end = StateID(len(c.nodes))
	return id
}

func (c *compiler[C]) bindStates() {
	for i := range c.nodes {
		n := &c.nodes[i]
		def := c.defs[i]

		switch def.Kind() {
		case primitives.Atomic:
			n.Kind = Leaf
			c.leaves++
			if len(def.Children) > 0 {
				c.fail(n.Name, ErrInvalidState, "atomic state cannot have children")
			}
			if def.Initial != "" {
				c.fail(n.Name, ErrLeafInitial, "initial %q", def.Initial)
			}
		case primitives.Compound:
			n.Kind = Compound
			switch {
			case len(n.Children) == 0:
				c.fail(n.Name, ErrInvalidState, "compound state requires children")
			case def.Initial == "":
				c.fail(n.Name, ErrMissingInitial, "")
			default:
				n.Initial = c.childNamed(n, def.Initial)
				if n.Initial == NoState {
					c.fail(n.Name, ErrInvalidInitial, "%q is not a child", def.Initial)
				}
			}
		case primitives.Parallel:
			n.Kind = Parallel
			if len(n.Children) < 2 {
				c.fail(n.Name, ErrTooFewRegions, "has %d", len(n.Children))
			}
			if def.Initial != "" {
				c.fail(n.Name, ErrInvalidInitial, "parallel state enters every region")
			}
		default:
			c.fail(n.Name, ErrInvalidState, "unknown state type %q", def.Type)
		}

		n.Entry, n.EntryNames = c.bindActions(n.Name, def.Entry)
		n.Exit, n.ExitNames = c.bindActions(n.Name, def.Exit)
	}
}

func (c *compiler[C]) childNamed(n *Node[C], name string) StateID {
	for _, cid := range n.Children {
		if c.defs[cid].ID == name || c.nodes[cid].Name == name {
			return cid
		}
	}
	return NoState
}

func (c *compiler[C]) bindActions(state string, names []string) ([]Action[C], []string) {
	if len(names) == 0 {
		return nil, nil
	}
	actions := make([]Action[C], 0, len(names))
	for _, name := range names {
		fn, err := c.reg.LookupAction(name)
		if err != nil {
			c.fail(state, ErrUnknownAction, "%v", err)
			continue
		}
		actions = append(actions, fn)
	}
	return actions, append([]string(nil), names...)
}

func (c *compiler[C]) bindRules() {
	for i := range c.nodes {
		id := StateID(i)
		name := c.nodes[i].Name
		for ti := range c.defs[i].Transitions {
			t := &c.defs[i].Transitions[ti]
			rule := Rule[C]{
				Source: id,
				Event:  strings.TrimSpace(t.Event),
				Order:  len(c.rules),
			}
			if rule.Event == "" {
				c.fail(name, ErrEmptyEvent, "transition %d", ti)
			}

			switch t.Type {
			case "", primitives.External:
			case primitives.Internal:
				rule.Kind = Internal
			default:
				c.fail(name, ErrInvalidState, "transition %d has unknown type %q", ti, t.Type)
			}

			for _, target := range t.AllTargets() {
				tid, err := c.resolve(target)
				if err != nil {
					c.fail(name, ErrUnknownTarget, "transition %d on %q: %v", ti, rule.Event, err)
					continue
				}
				rule.Targets = append(rule.Targets, tid)
			}
			c.checkTargets(name, ti, rule.Targets)

			if t.Guard != "" {
				g, err := c.reg.LookupGuard(t.Guard)
				if err != nil {
					c.fail(name, ErrUnknownGuard, "%v", err)
				}
				rule.Guard = g
				rule.GuardName = t.Guard
			}
			rule.Actions, rule.ActionNames = c.bindActions(name, t.Actions)

			c.nodes[i].Rules = append(c.nodes[i].Rules, len(c.rules))
			c.rules = append(c.rules, rule)
		}
	}
}

// resolve finds a target by full name, then by unique dotted suffix. The
// root is never a valid target.
func (c *compiler[C]) resolve(name string) (StateID, error) {
	if id, ok := c.byName[name]; ok && id != 0 {
		return id, nil
	}
	suffix := "." + name
	found := NoState
	var matches []string
	for i := 1; i < len(c.nodes); i++ {
		n := c.nodes[i].Name
		if n == name || strings.HasSuffix(n, suffix) {
			if found == NoState {
				found = StateID(i)
			}
			matches = append(matches, n)
		}
	}
	switch len(matches) {
	case 0:
		return NoState, fmt.Errorf("%q is not declared", name)
	case 1:
		return found, nil
	default:
		return NoState, fmt.Errorf("%q is ambiguous: %s", name, strings.Join(matches, ", "))
	}
}

// checkTargets requires the targets of a multi-target rule to sit in
// distinct regions of a common parallel ancestor.
func (c *compiler[C]) checkTargets(state string, ti int, targets []StateID) {
	for i := 0; i < len(targets); i++ {
		for j := i + 1; j < len(targets); j++ {
			a, b := targets[i], targets[j]
			if a == b || c.isAncestor(a, b) || c.isAncestor(b, a) {
				c.fail(state, ErrConflictingTargets, "transition %d: %q and %q are nested",
					ti, c.nodes[a].Name, c.nodes[b].Name)
				continue
			}
			lca := c.nodes[a].Parent
			for !c.isAncestor(lca, b) {
				lca = c.nodes[lca].Parent
			}
			if c.nodes[lca].Kind != Parallel {
				c.fail(state, ErrConflictingTargets, "transition %d: %q and %q share %s ancestor %q",
					ti, c.nodes[a].Name, c.nodes[b].Name, c.nodes[lca].Kind, c.nodes[lca].Name)
			}
		}
	}
}

func (c *compiler[C]) isAncestor(a, b StateID) bool {
	return a < b && b < c.nodes[a].end
}
