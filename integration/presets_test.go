package integration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetPresetByName(t *testing.T) {
	for _, name := range []string{"default", "lite", "full"} {
		p, err := GetPresetByName(name)
		require.NoError(t, err)
		require.Equal(t, name, p.Name)
	}
	_, err := GetPresetByName("archive")
	require.Error(t, err)
}

func TestApplyPreset(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Store.Path = "custom"

	ApplyPreset(&cfg, LitePreset())
	require.Equal(t, "memory", cfg.Store.Backend)
	require.Equal(t, "custom", cfg.Store.Path)
	require.Equal(t, 200*time.Millisecond, cfg.Queue.ServiceInterval)
	require.Equal(t, 16, cfg.Queue.BatchSize)
	require.True(t, cfg.EnableMetrics)

	ApplyPreset(&cfg, FullPreset())
	require.Equal(t, "leveldb", cfg.Store.Backend)
	require.Equal(t, 256, cfg.Store.CacheMB)
	require.Equal(t, 512, cfg.Store.Handles)
	require.Equal(t, 256, cfg.Queue.BatchSize)

	ApplyPreset(&cfg, DefaultPreset())
	require.False(t, cfg.EnableMetrics)
}
