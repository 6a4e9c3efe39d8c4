// Package production provides the file and presentation adapters around a
// compiled chart: definition loading, table export, visualization and
// transition publishing.
package production

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/comalice/statechart"
)

// Format selects a serialization for WriteTable.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want json or yaml)", s)
	}
}

// ErrInvalidDefinition marks a chart that fails the syntactic checks run
// before compilation.
var ErrInvalidDefinition = errors.New("invalid chart definition")

// ReadChart reads and decodes a YAML or JSON chart definition file without
// checking it.
func ReadChart(path string) (*statechart.ChartConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	cfg, err := statechart.ParseChart(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadChart reads a chart definition file and runs the syntactic checks of
// ChartConfig.Validate over it. Structural rules are left to the compiler.
func LoadChart(path string) (*statechart.ChartConfig, error) {
	cfg, err := ReadChart(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", path, ErrInvalidDefinition, err)
	}
	return cfg, nil
}

// WriteTable serializes a descriptor table in the given format.
func WriteTable(w io.Writer, t statechart.Table, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(t); err != nil {
			return fmt.Errorf("json marshal: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(t); err != nil {
			return fmt.Errorf("yaml marshal: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
