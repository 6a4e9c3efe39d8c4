// Package statechart is a hierarchical, parallel state machine engine with
// Harel/SCXML transition semantics.
//
// A chart is described once, either with the fluent Builder or as a YAML/JSON
// ChartConfig, and compiled into an immutable Descriptor: flat state and rule
// tables indexed by dense, document-order StateIDs. Compilation reports every
// structural problem (parallel states with fewer than two regions, compound
// states without an initial child, unknown targets, unbound action or guard
// names) as a *ConstructionError, so malformed charts never reach runtime.
//
// A Machine pairs a Descriptor with one context value and one active
// configuration:
//
//	b := statechart.NewBuilder[Light]("light", "off")
//	b.State("off").On("toggle", "on", nil, nil)
//	b.State("on").On("toggle", "off", nil, nil)
//	d, err := b.Build()
//
//	m, err := statechart.New(d, Light{})
//	handled, err := m.Send(statechart.NewEvent("toggle", nil))
//
// Send either fires rules and reports true, or leaves the machine untouched
// and reports false. Exit actions run innermost first, then rule actions in
// selection order, then entry actions outermost first. Regions of a parallel
// state that no rule touches keep their active leaf.
//
// Machines are single-threaded and Send does not allocate. The mailbox,
// actor and realtime packages feed machines from many producers under either
// a goroutine-per-actor runtime or a cooperative, allocation-free poller.
package statechart
