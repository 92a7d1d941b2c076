package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidConcurrency = errors.New("runtime.concurrency must be at least 1")
	ErrInvalidLogLevel    = errors.New("log.level is not a valid level")
	ErrMissingService     = errors.New("otel.service is required when otel.endpoint is set")
)

// Config is the hostgraph CLI configuration.
//
//	resolver:
//	  visibility_override: true
//	  negative_cache: true
//	runtime:
//	  concurrency: 8
//	otel:
//	  endpoint: localhost:4317
//	  service: hostgraph
//	log:
//	  level: info
type Config struct {
	Resolver Resolver `yaml:"resolver"`
	Runtime  Runtime  `yaml:"runtime"`
	OTel     OTel     `yaml:"otel"`
	Log      Log      `yaml:"log"`
}

type Resolver struct {
	VisibilityOverride bool `yaml:"visibility_override"`
	NegativeCache      bool `yaml:"negative_cache"`
}

type Runtime struct {
	Concurrency int `yaml:"concurrency"`
}

type OTel struct {
	Endpoint string `yaml:"endpoint"`
	Service  string `yaml:"service"`
}

type Log struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Resolver: Resolver{VisibilityOverride: true, NegativeCache: true},
		Runtime:  Runtime{Concurrency: 8},
		OTel:     OTel{Service: "hostgraph"},
		Log:      Log{Level: "info"},
	}
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result. An empty path loads the defaults.
// Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()
		if err := decode(f, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// applyEnv overlays environment variables, the highest priority source.
func (c *Config) applyEnv() {
	if v := os.Getenv("HOSTGRAPH_OTEL_ENDPOINT"); v != "" {
		c.OTel.Endpoint = v
	}
	if v := os.Getenv("HOSTGRAPH_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate reports every invalid setting, joined.
func (c *Config) Validate() error {
	var errs []error
	if c.Runtime.Concurrency < 1 {
		errs = append(errs, ErrInvalidConcurrency)
	}
	if _, err := c.Log.ZapLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.OTel.Endpoint != "" && c.OTel.Service == "" {
		errs = append(errs, ErrMissingService)
	}
	return errors.Join(errs...)
}

// ZapLevel parses Level.
func (l Log) ZapLevel() (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, l.Level)
	}
	return lvl, nil
}
