// Package config loads the runtime settings shared by the CLI commands.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Runtime adapter names.
const (
	RuntimeAsync    = "async"
	RuntimeRealtime = "realtime"
)

const (
	defaultMailboxCapacity  = 64
	defaultTickRate         = 10 * time.Millisecond
	defaultMaxEventsPerPoll = 1
	defaultMaxActors        = 16
	defaultHTTPAddr         = "127.0.0.1:8080"
)

// Config holds the settings for actors, adapters, logging and the HTTP API.
type Config struct {
	LogLevel         string        `mapstructure:"log_level" yaml:"log_level"`
	LogFormat        string        `mapstructure:"log_format" yaml:"log_format"`
	Runtime          string        `mapstructure:"runtime" yaml:"runtime"`
	MailboxCapacity  int           `mapstructure:"mailbox_capacity" yaml:"mailbox_capacity"`
	TickRate         time.Duration `mapstructure:"tick_rate" yaml:"tick_rate"`
	MaxEventsPerPoll int           `mapstructure:"max_events_per_poll" yaml:"max_events_per_poll"`
	MaxActors        int           `mapstructure:"max_actors" yaml:"max_actors"`
	HTTPAddr         string        `mapstructure:"http_addr" yaml:"http_addr"`
}

// DefaultConfig returns a Config with sensible defaults for every setting.
func DefaultConfig() Config {
	return Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Runtime:          RuntimeAsync,
		MailboxCapacity:  defaultMailboxCapacity,
		TickRate:         defaultTickRate,
		MaxEventsPerPoll: defaultMaxEventsPerPoll,
		MaxActors:        defaultMaxActors,
		HTTPAddr:         defaultHTTPAddr,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.LogLevel != "" {
		c.LogLevel = source.LogLevel
	}
	if source.LogFormat != "" {
		c.LogFormat = source.LogFormat
	}
	if source.Runtime != "" {
		c.Runtime = source.Runtime
	}
	if source.MailboxCapacity > 0 {
		c.MailboxCapacity = source.MailboxCapacity
	}
	if source.TickRate > 0 {
		c.TickRate = source.TickRate
	}
	if source.MaxEventsPerPoll > 0 {
		c.MaxEventsPerPoll = source.MaxEventsPerPoll
	}
	if source.MaxActors > 0 {
		c.MaxActors = source.MaxActors
	}
	if source.HTTPAddr != "" {
		c.HTTPAddr = source.HTTPAddr
	}
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format %q: want text or json", c.LogFormat))
	}
	switch c.Runtime {
	case RuntimeAsync, RuntimeRealtime:
	default:
		errs = append(errs, fmt.Errorf("runtime %q: want %s or %s", c.Runtime, RuntimeAsync, RuntimeRealtime))
	}
	if c.MailboxCapacity <= 0 {
		errs = append(errs, fmt.Errorf("mailbox_capacity must be positive, got %d", c.MailboxCapacity))
	}
	if c.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("tick_rate must be positive, got %s", c.TickRate))
	}
	if c.MaxEventsPerPoll <= 0 {
		errs = append(errs, fmt.Errorf("max_events_per_poll must be positive, got %d", c.MaxEventsPerPoll))
	}
	if c.MaxActors <= 0 {
		errs = append(errs, fmt.Errorf("max_actors must be positive, got %d", c.MaxActors))
	}
	return errors.Join(errs...)
}

// Decode converts a loosely typed settings map, as read from YAML, into a
// Config. Durations may be written as strings ("20ms") and numbers as
// strings; unknown keys are rejected.
func Decode(raw map[string]any) (Config, error) {
	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &cfg,
	})
	if err != nil {
		return cfg, err
	}
	if err := dec.Decode(raw); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Parse decodes YAML settings and merges them over the defaults.
func Parse(data []byte) (*Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	loaded, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.Merge(&loaded)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads a YAML config file, merges it with defaults, and returns the
// resulting Config.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}
