package statechart

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ParseChart decodes a YAML or JSON chart definition. Unknown fields are
// rejected so that misspelled keys do not silently drop behavior.
func ParseChart(data []byte) (*ChartConfig, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg ChartConfig
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyChart
		}
		return nil, fmt.Errorf("decode chart: %w", err)
	}
	return &cfg, nil
}

// CompileChart parses and compiles a chart definition in one step.
func CompileChart[C any](data []byte, reg *Registry[C]) (*Descriptor[C], error) {
	cfg, err := ParseChart(data)
	if err != nil {
		return nil, err
	}
	return Compile(cfg, reg)
}
