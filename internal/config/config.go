// Package config loads the simulation parameter bundle: milestones, their
// distributions, the start/end pairs to report and the run settings.
// It supports loading from YAML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/uvafan/toy-takeoff-modeling/internal/dist"
)

// DefaultTrials is the trial count used when none is configured.
const DefaultTrials = 1000

// Config is the complete, read-only parameter bundle for one run.
type Config struct {
	// Trials is the number of independent timelines to sample.
	Trials int `json:"trials" yaml:"trials" validate:"gte=1"`

	// Seed fixes the random streams. Nil means derive one from the clock.
	Seed *uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`

	// Workers bounds parallel trial execution. 0 means GOMAXPROCS.
	Workers int `json:"workers" yaml:"workers" validate:"gte=0"`

	Milestones []Milestone `json:"milestones" yaml:"milestones" validate:"required,min=1,dive"`
	Pairs      []Pair      `json:"pairs" yaml:"pairs" validate:"dive"`

	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// Milestone describes one milestone's sampling rule. A milestone with After
// set is relative: its distribution is over the delta in years from the
// referenced milestone. Otherwise it is absolute, in years from the origin.
type Milestone struct {
	Name             string    `json:"name" yaml:"name" validate:"required"`
	Description      string    `json:"description,omitempty" yaml:"description,omitempty"`
	After            string    `json:"after,omitempty" yaml:"after,omitempty"`
	NeverProbability float64   `json:"never_probability,omitempty" yaml:"never_probability,omitempty" validate:"gte=0,lte=1"`
	Distribution     dist.Spec `json:"distribution" yaml:"distribution"`
}

// Pair is a named start/end comparison whose time difference is reported.
type Pair struct {
	Name  string `json:"name" yaml:"name" validate:"required"`
	Start string `json:"start" yaml:"start" validate:"required"`
	End   string `json:"end" yaml:"end" validate:"required"`
}

// LoggingConfig configures operational logging.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	Level string `json:"level" yaml:"level"`
}

// Default returns the built-in AI takeoff scenario.
func Default() *Config {
	cfg, err := parse([]byte(SampleYAML))
	if err != nil {
		panic(fmt.Sprintf("config: built-in sample is invalid: %v", err))
	}
	return cfg
}

// Load returns the configuration at path, or the built-in scenario when path
// is empty, with environment overrides applied.
// Order: defaults -> file -> environment variables
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Trials:  DefaultTrials,
		Logging: LoggingConfig{Level: "info"},
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges and cross references. Distribution
// parameters and the dependency graph are checked when the bank is built.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	names := make(map[string]bool, len(c.Milestones))
	for _, m := range c.Milestones {
		names[m.Name] = true
	}

	pairNames := make(map[string]bool, len(c.Pairs))
	for _, p := range c.Pairs {
		if pairNames[p.Name] {
			return fmt.Errorf("invalid config: duplicate pair %q", p.Name)
		}
		pairNames[p.Name] = true
		if !names[p.Start] {
			return fmt.Errorf("invalid config: pair %q start references unknown milestone %q", p.Name, p.Start)
		}
		if !names[p.End] {
			return fmt.Errorf("invalid config: pair %q end references unknown milestone %q", p.Name, p.End)
		}
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("TAKEOFF_TRIALS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TAKEOFF_TRIALS: %w", err)
		}
		cfg.Trials = n
	}
	if v := os.Getenv("TAKEOFF_SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TAKEOFF_SEED: %w", err)
		}
		cfg.Seed = &n
	}
	if v := os.Getenv("TAKEOFF_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TAKEOFF_WORKERS: %w", err)
		}
		cfg.Workers = n
	}
	if v := os.Getenv("TAKEOFF_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	return nil
}
