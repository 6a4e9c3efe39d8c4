package primitives

import (
	"maps"
	"sort"
)

// Vars is the extended-state store used by data-driven charts.
//
// A Vars value belongs to exactly one machine and is only mutated by that
// machine's actions, so it carries no lock. Readers on other goroutines must
// work from a Snapshot.
type Vars struct {
	data map[string]any
}

// NewVars creates a store seeded with a copy of initial.
func NewVars(initial map[string]any) Vars {
	v := Vars{data: make(map[string]any, len(initial))}
	maps.Copy(v.data, initial)
	return v
}

// Get retrieves a value by key.
func (v *Vars) Get(key string) (any, bool) {
	val, ok := v.data[key]
	return val, ok
}

// Set stores a value by key.
func (v *Vars) Set(key string, val any) {
	if v.data == nil {
		v.data = make(map[string]any)
	}
	v.data[key] = val
}

// Delete removes a key.
func (v *Vars) Delete(key string) {
	delete(v.data, key)
}

// Len returns the number of stored keys.
func (v *Vars) Len() int {
	return len(v.data)
}

// Keys returns the stored keys in sorted order.
func (v *Vars) Keys() []string {
	keys := make([]string, 0, len(v.data))
	for k := range v.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a copy of the data that is safe to hand to other goroutines.
func (v *Vars) Snapshot() map[string]any {
	snap := make(map[string]any, len(v.data))
	maps.Copy(snap, v.data)
	return snap
}

// Float returns the value under key as a float64, converting integer types.
func (v *Vars) Float(key string) (float64, bool) {
	val, ok := v.data[key]
	if !ok {
		return 0, false
	}
	return ToFloat(val)
}

// ToFloat converts numeric values to float64.
func ToFloat(val any) (float64, bool) {
	switch n := val.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
