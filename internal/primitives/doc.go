// Package primitives provides the serializable building blocks of a chart
// definition: events, the variable store used by data-driven charts, and the
// StateConfig/TransitionConfig/ChartConfig tree that the front-end reads from
// YAML or JSON.
//
// Nothing in this package knows about execution. The root package compiles a
// ChartConfig into an immutable, index-based descriptor; this package only
// checks that a definition is well formed syntactically.
//
// Core invariants:
//   - Events are values and are never mutated after construction.
//   - Declaration order is preserved everywhere (states, transitions,
//     actions) because transition selection depends on it.
//   - ComputeVersion is a pure function of the definition.
package primitives
