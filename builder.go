package statechart

import (
	"fmt"
	"strings"

	"github.com/comalice/statechart/internal/primitives"
)

// Builder provides a fluent API for constructing a Descriptor from Go code
// using string state names instead of hand-written definitions.
//
// Names use dot notation for hierarchy ("parent.child"). A parent that does
// not exist yet is created as a compound state and must be given an initial
// child before Build. Functions passed to the builder are registered under
// generated names, so the result is compiled and validated exactly like a
// YAML chart.
type Builder[C any] struct {
	root   *StateConfig
	states map[string]*StateConfig
	reg    *Registry[C]
	funcs  int
}

// StateBuilder provides fluent methods for configuring individual states.
type StateBuilder[C any] struct {
	b     *Builder[C]
	state *StateConfig
	name  string
}

// NewBuilder creates a builder for a chart whose root is a compound state
// named rootName entering initialStateName. Call ParallelRoot for a
// parallel root.
func NewBuilder[C any](rootName, initialStateName string) *Builder[C] {
	return &Builder[C]{
		root:   &StateConfig{ID: rootName, Initial: initialStateName},
		states: make(map[string]*StateConfig),
		reg:    NewRegistry[C](),
	}
}

// Registry exposes the builder's registry so named actions and guards can be
// mixed with inline functions.
func (b *Builder[C]) Registry() *Registry[C] {
	return b.reg
}

// ParallelRoot makes the root a parallel state whose top-level states are
// its regions.
func (b *Builder[C]) ParallelRoot() *Builder[C] {
	b.root.Type = primitives.Parallel
	b.root.Initial = ""
	return b
}

// State creates or retrieves a state by name.
// Supports dot notation for hierarchical states (e.g., "parent.child").
// If the parent doesn't exist, it will be auto-created as a compound state.
func (b *Builder[C]) State(name string) *StateBuilder[C] {
	if state, ok := b.states[name]; ok {
		return &StateBuilder[C]{b: b, state: state, name: name}
	}

	parentPath, id := splitPath(name)
	parent := b.root
	if parentPath != "" {
		parent = b.State(parentPath).state
	}

	state := &StateConfig{ID: id}
	parent.AddChild(state)
	b.states[name] = state
	return &StateBuilder[C]{b: b, state: state, name: name}
}

// Compound creates or retrieves a compound state with the given initial child.
func (b *Builder[C]) Compound(name, initialStateName string) *StateBuilder[C] {
	return b.State(name).Compound(initialStateName)
}

// Parallel creates or retrieves a parallel state.
func (b *Builder[C]) Parallel(name string) *StateBuilder[C] {
	return b.State(name).Parallel()
}

// Config returns the chart definition assembled so far.
func (b *Builder[C]) Config() *ChartConfig {
	return &ChartConfig{
		ID:      b.root.ID,
		Type:    b.root.Type,
		Initial: b.root.Initial,
		States:  b.root.Children,
	}
}

// Build validates the definition and constructs the Descriptor.
// All structural problems are reported together.
func (b *Builder[C]) Build() (*Descriptor[C], error) {
	return Compile(b.Config(), b.reg)
}

// splitPath splits a hierarchical path into parent and name components.
// For example, "parent.child" returns ("parent", "child").
// For "child", returns ("", "child").
func splitPath(path string) (parent, name string) {
	idx := strings.LastIndex(path, ".")
	if idx == -1 {
		return "", path
	}
	return path[:idx], path[idx+1:]
}

func (b *Builder[C]) actionName(state, role string, fn Action[C]) string {
	name := fmt.Sprintf("%s/%s#%d", state, role, b.funcs)
	b.funcs++
	b.reg.Action(name, fn)
	return name
}

func (b *Builder[C]) guardName(state string, fn Guard[C]) string {
	name := fmt.Sprintf("%s/guard#%d", state, b.funcs)
	b.funcs++
	b.reg.Guard(name, fn)
	return name
}

// StateBuilder fluent methods

// Atomic marks this state as a leaf.
// This is the default for states without children.
func (sb *StateBuilder[C]) Atomic() *StateBuilder[C] {
	sb.state.Type = primitives.Atomic
	return sb
}

// Compound marks this state as a compound state with the given initial child.
// initialStateName is the child's own name, not its dotted path.
func (sb *StateBuilder[C]) Compound(initialStateName string) *StateBuilder[C] {
	sb.state.Type = primitives.Compound
	sb.state.Initial = initialStateName
	return sb
}

// Parallel marks this state as a parallel state.
// All child states will be active concurrently when this state is entered.
func (sb *StateBuilder[C]) Parallel() *StateBuilder[C] {
	sb.state.Type = primitives.Parallel
	sb.state.Initial = ""
	return sb
}

// Entry appends an entry action.
func (sb *StateBuilder[C]) Entry(action Action[C]) *StateBuilder[C] {
	sb.state.AddEntry(sb.b.actionName(sb.name, "entry", action))
	return sb
}

// Exit appends an exit action.
func (sb *StateBuilder[C]) Exit(action Action[C]) *StateBuilder[C] {
	sb.state.AddExit(sb.b.actionName(sb.name, "exit", action))
	return sb
}

// On adds an external transition to targetName when eventName occurs.
// guard and action may be nil.
func (sb *StateBuilder[C]) On(eventName, targetName string, guard Guard[C], action Action[C]) *StateBuilder[C] {
	return sb.add(eventName, []string{targetName}, primitives.External, guard, action)
}

// OnTargets adds a transition entering several states at once. The targets
// must lie in distinct regions of a common parallel ancestor.
func (sb *StateBuilder[C]) OnTargets(eventName string, targetNames []string, guard Guard[C], action Action[C]) *StateBuilder[C] {
	return sb.add(eventName, targetNames, primitives.External, guard, action)
}

// OnInternal adds an internal transition: when the target is a descendant
// of this compound state, the state itself is not exited.
func (sb *StateBuilder[C]) OnInternal(eventName, targetName string, guard Guard[C], action Action[C]) *StateBuilder[C] {
	return sb.add(eventName, []string{targetName}, primitives.Internal, guard, action)
}

// OnTargetless adds a transition that runs its action without changing state.
// No exit or entry actions are triggered.
func (sb *StateBuilder[C]) OnTargetless(eventName string, guard Guard[C], action Action[C]) *StateBuilder[C] {
	return sb.add(eventName, nil, primitives.External, guard, action)
}

func (sb *StateBuilder[C]) add(eventName string, targets []string, typ primitives.TransitionType, guard Guard[C], action Action[C]) *StateBuilder[C] {
	t := TransitionConfig{Event: eventName, Targets: targets}
	if typ == primitives.Internal {
		t.Type = typ
	}
	if guard != nil {
		t.Guard = sb.b.guardName(sb.name, guard)
	}
	if action != nil {
		t.Actions = []string{sb.b.actionName(sb.name, "action", action)}
	}
	sb.state.AddTransition(t)
	return sb
}
