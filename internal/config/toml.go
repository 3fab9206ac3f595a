// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/nclock/internal/model"
	"github.com/verte-zerg/nclock/internal/vclock"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Clock  ClockConfig  `toml:"clock"`
	Engine EngineConfig `toml:"engine"`
}

// ClockConfig seeds settings that have never been persisted.
type ClockConfig struct {
	DayHours    *int    `toml:"day-hours"`
	ShowSeconds *bool   `toml:"show-seconds"`
	Language    *string `toml:"language"`
}

// EngineConfig maps sampling loop settings.
type EngineConfig struct {
	TickMs  *int  `toml:"tick-ms"`
	FlushMs *int  `toml:"flush-ms"`
	Bell    *bool `toml:"bell"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return FileConfig{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c FileConfig) Validate() error {
	if c.Clock.DayHours != nil {
		if err := vclock.ValidateHours(*c.Clock.DayHours); err != nil {
			return fmt.Errorf("clock.day-hours: %w", err)
		}
	}
	if c.Clock.Language != nil {
		if _, err := model.ParseLanguage(*c.Clock.Language); err != nil {
			return fmt.Errorf("clock.language: %w", err)
		}
	}
	if c.Engine.TickMs != nil && *c.Engine.TickMs <= 0 {
		return fmt.Errorf("engine.tick-ms must be > 0")
	}
	if c.Engine.FlushMs != nil && *c.Engine.FlushMs <= 0 {
		return fmt.Errorf("engine.flush-ms must be > 0")
	}
	return nil
}

// Defaults merges the [clock] section over the built-in defaults.
func (c FileConfig) Defaults() model.Defaults {
	d := model.DefaultSettings()
	if c.Clock.DayHours != nil {
		d.DayHours = *c.Clock.DayHours
	}
	if c.Clock.ShowSeconds != nil {
		d.ShowSeconds = *c.Clock.ShowSeconds
	}
	if c.Clock.Language != nil {
		if lang, err := model.ParseLanguage(*c.Clock.Language); err == nil {
			d.Language = lang
		}
	}
	return d
}

// Runtime merges the [engine] section over the built-in loop settings.
func (c FileConfig) Runtime() model.Config {
	cfg := model.DefaultConfig()
	if c.Engine.TickMs != nil {
		cfg.TickInterval = time.Duration(*c.Engine.TickMs) * time.Millisecond
	}
	if c.Engine.FlushMs != nil {
		cfg.FlushInterval = time.Duration(*c.Engine.FlushMs) * time.Millisecond
	}
	if c.Engine.Bell != nil {
		cfg.Bell = *c.Engine.Bell
	}
	return cfg
}
