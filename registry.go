package statechart

import "fmt"

// Registry binds the action and guard names used by a chart definition to
// Go functions. Names without an explicit binding are handed to the
// optional factories, which lets a context type interpret names such as
// "count < 3" on its own.
type Registry[C any] struct {
	actions     map[string]Action[C]
	guards      map[string]Guard[C]
	actionMaker func(name string) (Action[C], error)
	guardMaker  func(name string) (Guard[C], error)
}

// NewRegistry creates an empty registry.
func NewRegistry[C any]() *Registry[C] {
	return &Registry[C]{
		actions: make(map[string]Action[C]),
		guards:  make(map[string]Guard[C]),
	}
}

// Action binds name to fn.
func (r *Registry[C]) Action(name string, fn Action[C]) *Registry[C] {
	r.actions[name] = fn
	return r
}

// Guard binds name to fn.
func (r *Registry[C]) Guard(name string, fn Guard[C]) *Registry[C] {
	r.guards[name] = fn
	return r
}

// ActionFactory sets the fallback used for unbound action names.
func (r *Registry[C]) ActionFactory(fn func(name string) (Action[C], error)) *Registry[C] {
	r.actionMaker = fn
	return r
}

// GuardFactory sets the fallback used for unbound guard names.
func (r *Registry[C]) GuardFactory(fn func(name string) (Guard[C], error)) *Registry[C] {
	r.guardMaker = fn
	return r
}

// LookupAction resolves an action name.
func (r *Registry[C]) LookupAction(name string) (Action[C], error) {
	if r != nil {
		if fn, ok := r.actions[name]; ok && fn != nil {
			return fn, nil
		}
		if r.actionMaker != nil {
			fn, err := r.actionMaker(name)
			if err != nil {
				return nil, err
			}
			if fn != nil {
				return fn, nil
			}
		}
	}
	return nil, fmt.Errorf("%q is not registered", name)
}

// LookupGuard resolves a guard name.
func (r *Registry[C]) LookupGuard(name string) (Guard[C], error) {
	if r != nil {
		if fn, ok := r.guards[name]; ok && fn != nil {
			return fn, nil
		}
		if r.guardMaker != nil {
			fn, err := r.guardMaker(name)
			if err != nil {
				return nil, err
			}
			if fn != nil {
				return fn, nil
			}
		}
	}
	return nil, fmt.Errorf("%q is not registered", name)
}
