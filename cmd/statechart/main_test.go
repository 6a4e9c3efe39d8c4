package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const playerChart = `
id: player
initial: stopped
context:
  plays: 0
states:
  - id: stopped
    on:
      - event: play
        target: playing
        actions: [inc plays]
  - id: playing
    initial: loud
    states:
      - id: loud
        on:
          - event: quieter
            target: quiet
      - id: quiet
    on:
      - event: stop
        target: stopped
      - event: explode
        actions: [set broken=true, inc broken]
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestValidate(t *testing.T) {
	good := writeFile(t, "good.yaml", playerChart)
	out, _, err := execute(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "Chart player is valid")
	assert.Contains(t, out, "5 states, 4 rules")

	bad := writeFile(t, "bad.yaml", `
id: broken
initial: a
states:
  - id: a
    on:
      - event: go
        target: nowhere
  - id: b
    states:
      - id: b1
`)
	_, stderr, err := execute(t, "validate", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 problem(s)")
	assert.Contains(t, stderr, "nowhere")
	assert.Equal(t, 2, strings.Count(stderr, "  - "))
}

func TestValidateLayers(t *testing.T) {
	path := writeFile(t, "leaf.yaml", `
id: broken
initial: a
states:
  - id: a
    type: atomic
    initial: b
    on:
      - event: go
        target: nowhere
`)

	// A syntax failure stops before compilation.
	_, stderr, err := execute(t, "validate", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 problem(s)")
	assert.Contains(t, stderr, "atomic state a cannot have Initial")
	assert.NotContains(t, stderr, "nowhere")

	_, stderr, err = execute(t, "validate", "--layers", path)
	require.Error(t, err)
	assert.Contains(t, stderr, "syntax: 1 problem(s)")
	assert.Contains(t, stderr, "structure: ")
	assert.Contains(t, stderr, "nowhere")
	assert.Less(t, strings.Index(stderr, "syntax:"), strings.Index(stderr, "structure:"))

	// Other commands refuse the definition outright.
	_, _, err = execute(t, "compile", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid chart definition")
}

func TestCompile(t *testing.T) {
	path := writeFile(t, "player.yaml", playerChart)

	out, _, err := execute(t, "compile", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "player"`)
	assert.Contains(t, out, `"version": "`)

	out, _, err = execute(t, "compile", path, "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "id: player")

	_, _, err = execute(t, "compile", path, "-o", "xml")
	assert.Error(t, err)
}

func TestGraph(t *testing.T) {
	path := writeFile(t, "player.yaml", playerChart)

	out, _, err := execute(t, "graph", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "digraph"))
	assert.Contains(t, out, `"stopped" [label="stopped" style=filled fillcolor=lightgreen]`)

	out, _, err = execute(t, "graph", path, "--format", "mermaid")
	require.NoError(t, err)
	assert.Contains(t, out, "stateDiagram-v2")

	_, _, err = execute(t, "graph", path, "--format", "svg")
	assert.Error(t, err)
}

func TestDescribePrintsMarkdownWhenPiped(t *testing.T) {
	path := writeFile(t, "player.yaml", playerChart)
	out, _, err := execute(t, "describe", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# Chart `player`"))
	assert.Contains(t, out, "| plays | 0 |")
}

func TestRun(t *testing.T) {
	path := writeFile(t, "player.yaml", playerChart)
	for _, rt := range []string{"async", "realtime"} {
		t.Run(rt, func(t *testing.T) {
			out, _, err := execute(t, "run", path, "--runtime", rt, "--events", "play,quieter,bogus")
			require.NoError(t, err)
			assert.Equal(t, "playing.quiet\n", out)

			out, _, err = execute(t, "run", path, "--runtime", rt, "--events", "play,stop", "--trace")
			require.NoError(t, err)
			assert.Equal(t, "# play: exit [stopped] enter [playing playing.loud]\n"+
				"# stop: exit [playing.loud playing] enter [stopped]\n"+
				"stopped\n", out)

			_, _, err = execute(t, "run", path, "--runtime", rt, "--events", "play,explode,stop")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "not numeric")
		})
	}
}

func TestRunUsesConfigFile(t *testing.T) {
	path := writeFile(t, "player.yaml", playerChart)
	cfg := writeFile(t, "settings.yaml", "runtime: realtime\ntick_rate: 1ms\nmailbox_capacity: 1\n")
	out, _, err := execute(t, "run", path, "--config", cfg, "--events", "play,quieter,stop,play")
	require.NoError(t, err)
	assert.Equal(t, "playing.loud\n", out)

	_, _, err = execute(t, "run", path, "--runtime", "threads")
	assert.Error(t, err)
}
