// Package config loads engine settings from YAML files for the
// searchkit command.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/operator-framework/searchkit/pkg/search"
)

// Config mirrors the command line flags of searchkit. Zero values mean
// the engine default; a negative Threads counts down from the number of
// CPUs.
type Config struct {
	Engine    string `yaml:"engine"`
	Threads   int    `yaml:"threads"`
	Solutions int    `yaml:"solutions"`
	Assets    int    `yaml:"assets"`

	CloneDistance    int  `yaml:"cloneDistance"`
	AdaptiveDistance int  `yaml:"adaptiveDistance"`
	NoGoodsLimit     *int `yaml:"noGoodsLimit"`
	DiscrepancyLimit *int `yaml:"discrepancyLimit"`

	Limits Limits `yaml:"limits"`
	Cutoff Cutoff `yaml:"cutoff"`
}

type Limits struct {
	Nodes  uint64        `yaml:"nodes"`
	Fails  uint64        `yaml:"fails"`
	Time   time.Duration `yaml:"time"`
	Memory int           `yaml:"memory"`
}

// Cutoff selects the cutoff sequence of restart engines.
type Cutoff struct {
	Kind  string  `yaml:"kind"`
	Scale uint64  `yaml:"scale"`
	Base  float64 `yaml:"base"`
}

// Default returns the configuration used without a file.
func Default() *Config {
	return &Config{
		Engine: "dfs",
		Cutoff: Cutoff{
			Kind:  "geometric",
			Scale: search.DefaultCutoffScale,
			Base:  search.DefaultCutoffBase,
		},
	}
}

// Load reads path on top of the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file (%s): %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("error parsing config file (%s): %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file (%s): %w", path, err)
	}
	return c, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Solutions < 0:
		return fmt.Errorf("%w: solutions must not be negative", search.ErrInvalidOption)
	case c.Cutoff.Scale == 0:
		return fmt.Errorf("%w: cutoff scale must be positive", search.ErrInvalidOption)
	case c.Cutoff.Base < 1:
		return fmt.Errorf("%w: cutoff base must be at least 1", search.ErrInvalidOption)
	}
	_, err := search.ParseCutoff(c.Cutoff.Kind, c.Cutoff.Scale, c.Cutoff.Base)
	return err
}

// Options translates c into engine options. Unset values are left to
// the engine defaults.
func (c *Config) Options() ([]search.Option, error) {
	cutoff, err := search.ParseCutoff(c.Cutoff.Kind, c.Cutoff.Scale, c.Cutoff.Base)
	if err != nil {
		return nil, err
	}
	opts := []search.Option{
		search.WithCutoff(cutoff),
		search.WithNodeLimit(c.Limits.Nodes),
		search.WithFailLimit(c.Limits.Fails),
		search.WithTimeLimit(c.Limits.Time),
		search.WithMemoryLimit(c.Limits.Memory),
	}
	if c.Threads != 0 {
		opts = append(opts, search.WithThreads(c.Threads))
	}
	if c.Assets > 0 {
		opts = append(opts, search.WithAssets(c.Assets))
	}
	if c.CloneDistance > 0 {
		opts = append(opts, search.WithCloneDistance(c.CloneDistance))
	}
	if c.AdaptiveDistance > 0 {
		opts = append(opts, search.WithAdaptiveDistance(c.AdaptiveDistance))
	}
	if c.NoGoodsLimit != nil {
		opts = append(opts, search.WithNoGoodsLimit(*c.NoGoodsLimit))
	}
	if c.DiscrepancyLimit != nil {
		opts = append(opts, search.WithDiscrepancyLimit(*c.DiscrepancyLimit))
	}
	return opts, nil
}
