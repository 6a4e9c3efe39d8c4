// Package benchmarks provides shared helpers for benchmark tests.
package benchmarks

import (
	"bytes"
	"fmt"

	"github.com/comalice/statechart"
	"github.com/comalice/statechart/internal/extensibility"
	"github.com/comalice/statechart/internal/logging"
	"github.com/comalice/statechart/internal/primitives"
	"github.com/comalice/statechart/internal/production"
)

// GenFlatConfig creates a flat chart with n atomic states cycling via "tick" events.
func GenFlatConfig(n int) *statechart.ChartConfig {
	if n < 1 {
		n = 1
	}
	config := &statechart.ChartConfig{
		ID:      fmt.Sprintf("flat_%d", n),
		Initial: "s0",
	}
	for i := range n {
		sc := primitives.NewStateConfig(fmt.Sprintf("s%d", i), primitives.Atomic)
		sc.Transition("tick", fmt.Sprintf("s%d", (i+1)%n))
		config.States = append(config.States, sc)
	}
	return config
}

// GenDeepConfig creates a nested hierarchy of depth compound states whose
// innermost leaves flip on "tick". Every level also has a rule for "reset",
// so selection walks the whole ancestor chain.
func GenDeepConfig(depth int) *statechart.ChartConfig {
	if depth < 1 {
		depth = 1
	}
	config := &statechart.ChartConfig{ID: fmt.Sprintf("deep_%d", depth), Initial: "c0"}
	top := primitives.NewStateConfig("c0", primitives.Compound)
	config.States = []*statechart.StateConfig{top}
	cur := top
	for i := 1; i < depth; i++ {
		cur.WithInitial(fmt.Sprintf("c%d", i))
		cur.Transition("reset", "c0")
		cur = cur.State(fmt.Sprintf("c%d", i), primitives.Compound)
	}
	cur.WithInitial("leaf1")
	cur.State("leaf1").Transition("tick", "leaf2")
	cur.State("leaf2").Transition("tick", "leaf1")
	return config
}

// GenWideTransitions creates one main state with many guarded "tick"
// transitions. Only the last guard passes, so every event evaluates all of
// them.
func GenWideTransitions(numTransitions int) *statechart.ChartConfig {
	if numTransitions < 1 {
		numTransitions = 1
	}
	config := &statechart.ChartConfig{
		ID:      fmt.Sprintf("wide_%d", numTransitions),
		Initial: "main",
		Context: map[string]any{"lane": numTransitions - 1},
	}
	main := primitives.NewStateConfig("main", primitives.Atomic)
	config.States = append(config.States, main)
	for i := range numTransitions {
		target := fmt.Sprintf("target%d", i)
		main.Transition("tick", target, statechart.TransitionConfig{Guard: fmt.Sprintf("lane == %d", i)})
		tsc := primitives.NewStateConfig(target, primitives.Atomic)
		tsc.Transition("tick", "main")
		config.States = append(config.States, tsc)
	}
	return config
}

// GenParallelConfig creates a parallel root with the given number of
// regions, each flipping between two leaves on "tick".
func GenParallelConfig(regions int) *statechart.ChartConfig {
	if regions < 2 {
		regions = 2
	}
	config := &statechart.ChartConfig{ID: fmt.Sprintf("parallel_%d", regions), Type: primitives.Parallel}
	for i := range regions {
		r := primitives.NewStateConfig(fmt.Sprintf("r%d", i), primitives.Compound).WithInitial("on")
		r.State("on").Transition("tick", "off")
		r.State("off").Transition("tick", "on")
		config.States = append(config.States, r)
	}
	return config
}

// MustCompile compiles config with the built-in expression guards and named
// actions.
func MustCompile(config *statechart.ChartConfig) *statechart.Descriptor[statechart.Vars] {
	d, err := statechart.Compile(config, extensibility.NewRegistry(logging.NewNop()))
	if err != nil {
		panic(err)
	}
	return d
}

// MustMachine compiles config and starts a machine on its initial context.
func MustMachine(config *statechart.ChartConfig) *statechart.Machine[statechart.Vars] {
	d := MustCompile(config)
	m, err := statechart.New(d, statechart.NewVars(d.InitialContext()))
	if err != nil {
		panic(err)
	}
	return m
}

// GenTableYAML generates the YAML descriptor table of a flat or deep chart.
func GenTableYAML(numStates int, hierarchical bool) []byte {
	config := GenFlatConfig(numStates)
	if hierarchical {
		config = GenDeepConfig(numStates)
	}
	var buf bytes.Buffer
	if err := production.WriteTable(&buf, MustCompile(config).Table(), production.FormatYAML); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
