package production

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/comalice/statechart"
)

func TestLoadChart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "device.yaml")
	require.NoError(t, os.WriteFile(path, []byte(deviceChart), 0o644))

	cfg, err := LoadChart(path)
	require.NoError(t, err)
	assert.Equal(t, "device", cfg.ID)
	assert.Len(t, cfg.States, 2)

	_, err = LoadChart(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = LoadChart(empty)
	assert.ErrorIs(t, err, statechart.ErrEmptyChart)
}

func TestLoadChartChecksSyntax(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
id: bad
initial: a
states:
  - id: a
    type: atomic
    initial: b
    on:
      - target: a
`), 0o644))

	_, err := LoadChart(path)
	require.ErrorIs(t, err, ErrInvalidDefinition)
	assert.Contains(t, err.Error(), "atomic state a cannot have Initial")

	// ReadChart only decodes, leaving every check to the caller.
	cfg, err := ReadChart(path)
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())
}

func TestWriteTable(t *testing.T) {
	table := compileDevice(t).Table()

	var js bytes.Buffer
	require.NoError(t, WriteTable(&js, table, FormatJSON))
	var fromJSON statechart.Table
	require.NoError(t, json.Unmarshal(js.Bytes(), &fromJSON))
	assert.Equal(t, table.Version, fromJSON.Version)
	assert.Equal(t, len(table.States), len(fromJSON.States))

	var ym bytes.Buffer
	require.NoError(t, WriteTable(&ym, table, FormatYAML))
	var fromYAML statechart.Table
	require.NoError(t, yaml.Unmarshal(ym.Bytes(), &fromYAML))
	assert.Equal(t, table.Rules, fromYAML.Rules)

	assert.Error(t, WriteTable(&js, table, Format("xml")))
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"json": FormatJSON, "YAML": FormatYAML, "yml": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("toml")
	assert.Error(t, err)
}
