package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SeamusWaldron/cubeanim/internal/cube"
	"github.com/SeamusWaldron/cubeanim/internal/engine"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_MissingFileIsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, Default().Validate())
}

func TestLoad_EmptyFileIsDefault(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
fps: 30
speed: 0.1
palette: hero
orientation_snap: false
policy: reject
idle_interval: 5s
`))
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.FPS)
	assert.Equal(t, 0.1, cfg.Speed)
	assert.False(t, cfg.OrientationSnap)
	assert.Equal(t, 5*time.Second, cfg.IdleInterval)
	assert.Equal(t, cube.HeroPalette, cfg.PaletteColors())
	assert.Equal(t, engine.PolicyReject, cfg.EnginePolicy())

	// untouched keys keep their defaults
	assert.Equal(t, Default().Margin, cfg.Margin)
	assert.Equal(t, Default().Listen, cfg.Listen)
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeConfig(t, "frames_per_second: 30\n"))
	assert.Error(t, err)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero fps", "fps: 0"},
		{"speed above a quarter turn", "speed: 1.0"},
		{"epsilon too wide", "epsilon: 1.6"},
		{"unknown palette", "palette: neon"},
		{"unknown policy", "policy: drop"},
		{"empty queue", "queue_capacity: 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	want := Default()
	want.Speed = 0.2
	want.DBPath = "/tmp/cubeanim.db"

	require.NoError(t, Save(path, want))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
