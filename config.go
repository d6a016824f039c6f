package primebench

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// RunConfig is the YAML-facing run configuration. Zero fields fall
// back to the defaults of DefaultSweepConfig / DefaultQuadrature.
type RunConfig struct {
	TValues     []float64 `yaml:"t_values"`
	SigmaValues []float64 `yaml:"sigma_values"`

	PrimeBound           uint64  `yaml:"prime_bound"`
	TruncationMultiplier float64 `yaml:"truncation_multiplier"`
	Nodes                int     `yaml:"quadrature_nodes"`
	RelTolerance         float64 `yaml:"relative_tolerance"`
	LowerCutoff          float64 `yaml:"lower_cutoff"`

	Workers int    `yaml:"workers"`
	Budget  string `yaml:"budget"` // Go duration string, e.g. "10m"
}

// DefaultRunConfig mirrors the reference grid.
func DefaultRunConfig() RunConfig {
	sweep := DefaultSweepConfig()
	q := DefaultQuadrature()
	return RunConfig{
		TValues:              sweep.TValues,
		SigmaValues:          sweep.SigmaValues,
		TruncationMultiplier: q.TruncationMultiplier,
		Nodes:                q.Nodes,
		RelTolerance:         q.RelTolerance,
		LowerCutoff:          q.LowerCutoff,
	}
}

// LoadRunConfig reads a YAML run configuration. Omitted fields keep
// their defaults.
func LoadRunConfig(path string) (RunConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return RunConfig{}, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultRunConfig()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return RunConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// SweepConfig validates the run configuration and maps it onto the
// engine's sweep configuration.
func (c RunConfig) SweepConfig() (SweepConfig, error) {
	if len(c.TValues) == 0 || len(c.SigmaValues) == 0 {
		return SweepConfig{}, fmt.Errorf("config needs non-empty t_values and sigma_values: %w", ErrInvalidBound)
	}
	for _, s := range c.SigmaValues {
		if s <= 0 || s >= 1 {
			return SweepConfig{}, fmt.Errorf("config sigma %g outside (0, 1): %w", s, ErrInvalidBound)
		}
	}

	var budget time.Duration
	if c.Budget != "" {
		var err error
		budget, err = time.ParseDuration(c.Budget)
		if err != nil {
			return SweepConfig{}, fmt.Errorf("parse budget %q: %w", c.Budget, err)
		}
	}

	return SweepConfig{
		TValues:     c.TValues,
		SigmaValues: c.SigmaValues,
		Quadrature: Quadrature{
			TruncationMultiplier: c.TruncationMultiplier,
			Nodes:                c.Nodes,
			RelTolerance:         c.RelTolerance,
			LowerCutoff:          c.LowerCutoff,
		},
		PrimeBound: c.PrimeBound,
		Workers:    c.Workers,
		Budget:     budget,
	}, nil
}
