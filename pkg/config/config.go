// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package config loads kapanel's optional YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Thermoquad/kapanel/pkg/ka3005p"
	"github.com/Thermoquad/kapanel/pkg/transport"
)

// MaxSettle bounds every configured settle delay
const MaxSettle = 2 * time.Second

// Timing holds the settle delay per command class
type Timing struct {
	Query    time.Duration `yaml:"query"`
	Status   time.Duration `yaml:"status"`
	Identify time.Duration `yaml:"identify"`
	Command  time.Duration `yaml:"command"`

	// Drain bounds each read while collecting a reply after the settle delay
	Drain time.Duration `yaml:"drain"`
}

// Client converts to the protocol client's timing
func (t Timing) Client() ka3005p.Timing {
	return ka3005p.Timing{
		Query:    t.Query,
		Status:   t.Status,
		Identify: t.Identify,
		Command:  t.Command,
	}
}

// Config is the full set of file-configurable settings
type Config struct {
	Port      string        `yaml:"port"`
	Baud      int           `yaml:"baud"`
	VendorID  uint16        `yaml:"vendor_id"`
	ProductID uint16        `yaml:"product_id"`
	Timing    Timing        `yaml:"timing"`
	LogLevel  string        `yaml:"log_level"`
	LogFile   string        `yaml:"log_file"`
	Capture   string        `yaml:"capture"`
	Poll      time.Duration `yaml:"poll"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Baud:      9600,
		VendorID:  ka3005p.VendorID,
		ProductID: ka3005p.ProductID,
		Timing: Timing{
			Query:    ka3005p.DefaultQuerySettle,
			Status:   ka3005p.DefaultStatusSettle,
			Identify: ka3005p.DefaultIdentifySettle,
			Command:  ka3005p.DefaultCommandSettle,
			Drain:    transport.DefaultDrainTimeout,
		},
		LogLevel: "info",
	}
}

// DefaultPath returns the per-user config file location
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "kapanel", "config.yaml"), nil
}

// Parse overlays YAML data on the defaults and validates the result
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads a config file. A missing file at the default location is not an
// error when optional is true; the defaults are returned.
func Load(path string, optional bool) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges
func (c Config) Validate() error {
	var errs []error
	if c.Baud <= 0 {
		errs = append(errs, fmt.Errorf("baud must be positive, got %d", c.Baud))
	}
	if c.VendorID == 0 || c.ProductID == 0 {
		errs = append(errs, errors.New("vendor_id and product_id must be non-zero"))
	}
	settles := []struct {
		name  string
		value time.Duration
	}{
		{"query", c.Timing.Query},
		{"status", c.Timing.Status},
		{"identify", c.Timing.Identify},
		{"command", c.Timing.Command},
	}
	for _, s := range settles {
		if s.value < 0 || s.value > MaxSettle {
			errs = append(errs, fmt.Errorf("timing.%s must be within 0-%s, got %s", s.name, MaxSettle, s.value))
		}
	}
	if c.Timing.Drain <= 0 || c.Timing.Drain > MaxSettle {
		errs = append(errs, fmt.Errorf("timing.drain must be within 1ns-%s, got %s", MaxSettle, c.Timing.Drain))
	}
	if c.Poll < 0 {
		errs = append(errs, fmt.Errorf("poll must not be negative, got %s", c.Poll))
	}
	switch c.LogLevel {
	case "", "trace", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("unknown log_level %q", c.LogLevel))
	}
	return errors.Join(errs...)
}
