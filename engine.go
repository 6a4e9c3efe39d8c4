package statechart

import "slices"

// The transition engine follows the SCXML algorithm for a single macrostep
// without eventless transitions:
//
//  1. For every active leaf in document order, walk from the leaf to the
//     root and pick the first rule whose event pattern matches and whose
//     guard passes.
//  2. Drop rules whose exit sets overlap an earlier pick, unless the later
//     rule's source is a descendant of the earlier one, in which case the
//     earlier pick is dropped instead.
//  3. Exit every active state below each rule's domain in reverse document
//     order, run rule actions in selection order, then enter the targets,
//     their ancestors below the domain and their default descendants in
//     document order.
//
// All bookkeeping lives in slices sized by New, so a step allocates only
// when an action fails.

func (m *Machine[C]) start() error {
	m.addDescendants(m.d.Root())
	var none Event
	for i := range m.d.nodes {
		if !m.entryMark[i] {
			continue
		}
		m.entryMark[i] = false
		m.active[i] = true
		if err := m.run(m.d.nodes[i].Entry, StateID(i), PhaseEntry, none); err != nil {
			m.faulted = true
			return err
		}
	}
	return nil
}

func (m *Machine[C]) step(evt Event) (bool, error) {
	m.selectRules(evt)
	if len(m.selected) == 0 {
		if m.observer != nil {
			m.observer.OnIgnored(evt)
		}
		return false, nil
	}
	m.removeConflicts()
	if err := m.execute(evt); err != nil {
		return true, err
	}
	if m.observer != nil {
		m.observer.OnTransition(TransitionRecord{
			Event:   evt,
			Rules:   m.selected,
			Exited:  m.exited,
			Entered: m.entered,
		})
	}
	return true, nil
}

func (m *Machine[C]) selectRules(evt Event) {
	m.selected = m.selected[:0]
	nodes := m.d.nodes
	for i := range nodes {
		if !m.active[i] || nodes[i].Kind != Leaf {
			continue
		}
		for s := StateID(i); s != NoState; s = nodes[s].Parent {
			ri, ok := m.enabledRule(s, evt)
			if !ok {
				continue
			}
			if !slices.Contains(m.selected, ri) {
				m.selected = append(m.selected, ri)
			}
			break
		}
	}
}

// enabledRule returns the first rule of s, in declaration order, that
// matches evt and whose guard passes.
func (m *Machine[C]) enabledRule(s StateID, evt Event) (int, bool) {
	for _, ri := range m.d.nodes[s].Rules {
		r := &m.d.rules[ri]
		if !MatchEvent(r.Event, evt.Type) {
			continue
		}
		if r.Guard != nil && !r.Guard(&m.ctx, evt) {
			continue
		}
		return ri, true
	}
	return 0, false
}

// removeConflicts filters m.selected in place and fills m.domains with the
// domain of each surviving rule.
func (m *Machine[C]) removeConflicts() {
	sel := m.selected
	m.domains = m.domains[:0]
	kept := 0
	for _, ri := range sel {
		dom := m.domain(ri)
		src := m.d.rules[ri].Source

		preempted := false
		for k := 0; k < kept; k++ {
			if m.conflict(dom, m.domains[k]) && !m.d.IsAncestor(m.d.rules[sel[k]].Source, src) {
				preempted = true
				break
			}
		}
		if preempted {
			continue
		}

		w := 0
		for k := 0; k < kept; k++ {
			if m.conflict(dom, m.domains[k]) {
				continue
			}
			sel[w] = sel[k]
			m.domains[w] = m.domains[k]
			w++
		}
		m.domains = m.domains[:w]
		sel[w] = ri
		m.domains = append(m.domains, dom)
		kept = w + 1
	}
	m.selected = sel[:kept]
}

// conflict reports whether two domains have overlapping exit sets.
// Targetless rules exit nothing and never conflict.
func (m *Machine[C]) conflict(a, b StateID) bool {
	if a == NoState || b == NoState {
		return false
	}
	return a == b || m.d.IsAncestor(a, b) || m.d.IsAncestor(b, a)
}

// domain returns the state whose active descendants a rule exits, or
// NoState for targetless rules.
func (m *Machine[C]) domain(ri int) StateID {
	r := &m.d.rules[ri]
	if len(r.Targets) == 0 {
		return NoState
	}
	nodes := m.d.nodes
	if r.Kind == Internal && nodes[r.Source].Kind == Compound && m.allBelow(r.Source, r.Targets) {
		return r.Source
	}
	for a := nodes[r.Source].Parent; a != NoState; a = nodes[a].Parent {
		if a != m.d.Root() && nodes[a].Kind != Compound {
			continue
		}
		if m.allBelow(a, r.Targets) {
			return a
		}
	}
	return m.d.Root()
}

func (m *Machine[C]) allBelow(a StateID, targets []StateID) bool {
	for _, t := range targets {
		if !m.d.IsAncestor(a, t) {
			return false
		}
	}
	return true
}

func (m *Machine[C]) execute(evt Event) error {
	nodes := m.d.nodes
	clear(m.exitMark)
	clear(m.entryMark)
	m.exited = m.exited[:0]
	m.entered = m.entered[:0]

	for k, ri := range m.selected {
		dom := m.domains[k]
		if dom == NoState {
			continue
		}
		for s := dom + 1; s < nodes[dom].end; s++ {
			if m.active[s] {
				m.exitMark[s] = true
			}
		}
		targets := m.d.rules[ri].Targets
		for _, t := range targets {
			m.addDescendants(t)
		}
		for _, t := range targets {
			m.addAncestors(t, dom)
		}
	}

	for i := len(nodes) - 1; i > 0; i-- {
		if !m.exitMark[i] {
			continue
		}
		m.exited = append(m.exited, StateID(i))
		if err := m.run(nodes[i].Exit, StateID(i), PhaseExit, evt); err != nil {
			return err
		}
		m.active[i] = false
	}

	for _, ri := range m.selected {
		r := &m.d.rules[ri]
		if err := m.run(r.Actions, r.Source, PhaseTransition, evt); err != nil {
			return err
		}
	}

	for i := range nodes {
		if !m.entryMark[i] {
			continue
		}
		m.active[i] = true
		m.entered = append(m.entered, StateID(i))
		if err := m.run(nodes[i].Entry, StateID(i), PhaseEntry, evt); err != nil {
			return err
		}
	}
	return nil
}

// addDescendants marks s and its default descendants for entry: the initial
// child of a compound state and every region of a parallel state not
// already being entered.
func (m *Machine[C]) addDescendants(s StateID) {
	m.entryMark[s] = true
	n := &m.d.nodes[s]
	switch n.Kind {
	case Compound:
		m.addDescendants(n.Initial)
	case Parallel:
		m.addRegions(n)
	}
}

// addAncestors marks the proper ancestors of s below stop for entry.
func (m *Machine[C]) addAncestors(s, stop StateID) {
	nodes := m.d.nodes
	for a := nodes[s].Parent; a != stop && a != NoState; a = nodes[a].Parent {
		m.entryMark[a] = true
		if nodes[a].Kind == Parallel {
			m.addRegions(&nodes[a])
		}
	}
}

func (m *Machine[C]) addRegions(n *Node[C]) {
	for _, region := range n.Children {
		if !m.markedWithin(region) {
			m.addDescendants(region)
		}
	}
}

// markedWithin reports whether s or any descendant is marked for entry.
func (m *Machine[C]) markedWithin(s StateID) bool {
	return slices.Contains(m.entryMark[s:m.d.nodes[s].end], true)
}

func (m *Machine[C]) run(actions []Action[C], s StateID, phase Phase, evt Event) error {
	for _, a := range actions {
		if err := a(&m.ctx, evt); err != nil {
			return &ActionError{
				State: m.d.nodes[s].Name,
				Phase: phase,
				Event: evt.Type,
				Err:   err,
			}
		}
	}
	return nil
}
