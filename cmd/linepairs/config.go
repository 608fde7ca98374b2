package main

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gardar/ocrtrain/pkg/trainingset"
)

// yamlConfig mirrors the tunables of trainingset.Config. Unset keys keep the
// defaults.
type yamlConfig struct {
	Output            *string  `yaml:"output"`
	MinChars          *int     `yaml:"min_chars"`
	Summary           *bool    `yaml:"summary"`
	Reorder           *bool    `yaml:"reorder"`
	Page              *int     `yaml:"page"`
	Sanitize          *bool    `yaml:"sanitize"`
	IntrusionRatio    *float64 `yaml:"intrusion_ratio"`
	IntrusionTop      *float64 `yaml:"intrusion_top"`
	IntrusionBottom   *float64 `yaml:"intrusion_bottom"`
	RotationThreshold *float64 `yaml:"rotation_threshold"`
	Padding           *int     `yaml:"padding"`
	Binarize          *bool    `yaml:"binarize"`
	DPI               *int     `yaml:"dpi"`
	Format            *string  `yaml:"format"`
	Seed              *uint64  `yaml:"seed"`
	Ledger            *string  `yaml:"ledger"`
	Jobs              *int     `yaml:"jobs"`
}

// loadConfig reads a YAML file and applies it on top of cfg
func loadConfig(path string, cfg *trainingset.Config) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return nil, err
	}
	yc.apply(cfg)
	return &yc, nil
}

func (yc *yamlConfig) apply(cfg *trainingset.Config) {
	set(&cfg.OutputDir, yc.Output)
	set(&cfg.MinChars, yc.MinChars)
	set(&cfg.Summary, yc.Summary)
	set(&cfg.Reorder, yc.Reorder)
	set(&cfg.Page, yc.Page)
	set(&cfg.Sanitize, yc.Sanitize)
	set(&cfg.IntrusionTop, yc.IntrusionRatio)
	set(&cfg.IntrusionBottom, yc.IntrusionRatio)
	set(&cfg.IntrusionTop, yc.IntrusionTop)
	set(&cfg.IntrusionBottom, yc.IntrusionBottom)
	set(&cfg.RotationThreshold, yc.RotationThreshold)
	set(&cfg.Padding, yc.Padding)
	set(&cfg.Binarize, yc.Binarize)
	set(&cfg.DPI, yc.DPI)
	set(&cfg.ImageFormat, yc.Format)
	set(&cfg.Seed, yc.Seed)
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
