// Package integration assembles a running gateway node from configuration.
//
// Presets bundle the storage and queue settings that vary between
// deployments into named profiles:
//
//	cfg := integration.LitePreset()  // in-memory, for development and tests
//	cfg := integration.FullPreset()  // persistent, for production relaying
//
// A preset is merged into the node config with ApplyPreset before flag
// overrides are applied.
package integration

import (
	"fmt"
	"time"

	"github.com/rony4d/lp-gateway/queue"
	"github.com/rony4d/lp-gateway/store"
)

// PresetConfig captures the tunables that vary across preset profiles.
type PresetConfig struct {
	Name          string
	Store         store.Config
	Queue         queue.Config
	EnableMetrics bool
}

func DefaultPreset() PresetConfig {
	return PresetConfig{
		Name:          "default",
		Store:         store.DefaultConfig(),
		Queue:         queue.DefaultConfig(),
		EnableMetrics: false,
	}
}

// LitePreset keeps all state in memory and services the queue eagerly. State
// is lost on restart, so pending votes and queued messages do not survive.
func LitePreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "lite"
	cfg.Store = store.LiteConfig()
	cfg.Queue.ServiceInterval = 200 * time.Millisecond
	cfg.Queue.BatchSize = 16
	cfg.EnableMetrics = true
	return cfg
}

// FullPreset is a leveldb backed node with larger caches and service rounds.
func FullPreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "full"
	cfg.Store.CacheMB = 256
	cfg.Store.Handles = 512
	cfg.Queue.ServiceInterval = 500 * time.Millisecond
	cfg.Queue.BatchSize = 256
	cfg.EnableMetrics = true
	return cfg
}

// GetPresetByName looks a preset up by name, as selected with --preset.
func GetPresetByName(name string) (PresetConfig, error) {
	switch name {
	case "lite":
		return LitePreset(), nil
	case "full":
		return FullPreset(), nil
	case "default":
		return DefaultPreset(), nil
	default:
		return PresetConfig{}, fmt.Errorf("unknown preset: %q (valid: lite, full, default)", name)
	}
}

// ApplyPreset merges preset into cfg. Zero valued preset fields leave cfg
// untouched; the store path is only replaced when the preset names one.
func ApplyPreset(cfg *Config, preset PresetConfig) {
	if preset.Store.Backend != "" {
		cfg.Store.Backend = preset.Store.Backend
	}
	if preset.Store.Path != "" {
		cfg.Store.Path = preset.Store.Path
	}
	if preset.Store.CacheMB > 0 {
		cfg.Store.CacheMB = preset.Store.CacheMB
	}
	if preset.Store.Handles > 0 {
		cfg.Store.Handles = preset.Store.Handles
	}
	if preset.Queue.ServiceInterval > 0 {
		cfg.Queue.ServiceInterval = preset.Queue.ServiceInterval
	}
	if preset.Queue.BatchSize > 0 {
		cfg.Queue.BatchSize = preset.Queue.BatchSize
	}
	cfg.EnableMetrics = preset.EnableMetrics
}
