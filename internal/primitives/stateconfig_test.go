package primitives

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		newConfig   func() *StateConfig
		errContains string
	}{
		{
			name:      "valid atomic",
			newConfig: func() *StateConfig { return NewStateConfig("atomic", Atomic) },
		},
		{
			name: "inferred compound",
			newConfig: func() *StateConfig {
				return (&StateConfig{ID: "parent"}).WithInitial("a").WithChildren(NewStateConfig("a", ""))
			},
		},
		{
			name:        "missing ID",
			newConfig:   func() *StateConfig { return NewStateConfig("", Atomic) },
			errContains: "ID is required",
		},
		{
			name:        "bad ID",
			newConfig:   func() *StateConfig { return NewStateConfig("a.b", Atomic) },
			errContains: "invalid character",
		},
		{
			name:        "invalid type",
			newConfig:   func() *StateConfig { return NewStateConfig("bad", StateType("invalid")) },
			errContains: "invalid state type",
		},
		{
			name:        "atomic with initial",
			newConfig:   func() *StateConfig { return NewStateConfig("atomic", Atomic).WithInitial("foo") },
			errContains: "cannot have Initial",
		},
		{
			name: "atomic with children",
			newConfig: func() *StateConfig {
				return NewStateConfig("atomic", Atomic).WithChildren(NewStateConfig("child", Atomic))
			},
			errContains: "cannot have Children",
		},
		{
			name:        "parallel without children",
			newConfig:   func() *StateConfig { return NewStateConfig("p", Parallel) },
			errContains: "requires Children",
		},
		{
			name: "bad transition",
			newConfig: func() *StateConfig {
				return NewStateConfig("s", Atomic).Transition("", "t")
			},
			errContains: "event is required",
		},
		{
			name: "nested child failure",
			newConfig: func() *StateConfig {
				return NewStateConfig("p", Compound).WithInitial("c").WithChildren(NewStateConfig("", Atomic))
			},
			errContains: "failed validation",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.newConfig().Validate()
			if tt.errContains == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestStateConfigFluent(t *testing.T) {
	parent := NewStateConfig("parent", Compound).WithInitial("a")
	parent.State("a").Transition("go", "b", TransitionConfig{Guard: "ready", Actions: []string{"log"}})
	parent.State("b").AddEntry("enter-b").AddExit("exit-b")

	require.Len(t, parent.Children, 2)
	a := parent.Children[0]
	require.Len(t, a.Transitions, 1)
	assert.Equal(t, "go", a.Transitions[0].Event)
	assert.Equal(t, "b", a.Transitions[0].Target)
	assert.Equal(t, "ready", a.Transitions[0].Guard)
	assert.Equal(t, []string{"enter-b"}, parent.Children[1].Entry)
	assert.Equal(t, []string{"exit-b"}, parent.Children[1].Exit)
}

func TestStateConfigWalkDocumentOrder(t *testing.T) {
	root := NewStateConfig("root", Compound).WithInitial("a")
	a := root.State("a", Compound).WithInitial("a1")
	a.State("a1")
	a.State("a2")
	root.State("b")

	var order []string
	var depths []int
	root.Walk(func(s *StateConfig, depth int) bool {
		order = append(order, s.ID)
		depths = append(depths, depth)
		return true
	})
	assert.Equal(t, []string{"root", "a", "a1", "a2", "b"}, order)
	assert.Equal(t, []int{0, 1, 2, 2, 1}, depths)

	order = order[:0]
	root.Walk(func(s *StateConfig, _ int) bool {
		order = append(order, s.ID)
		return s.ID != "a"
	})
	assert.Equal(t, []string{"root", "a", "b"}, order)
}
