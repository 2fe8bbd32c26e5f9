// Package config loads the application configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/SeamusWaldron/cubeanim/internal/cube"
	"github.com/SeamusWaldron/cubeanim/internal/engine"
	"github.com/SeamusWaldron/cubeanim/internal/lattice"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// AppConfig is the persistent application configuration.
type AppConfig struct {
	FPS             int     `yaml:"fps"`
	Speed           float64 `yaml:"speed"`
	Margin          float64 `yaml:"margin"`
	Epsilon         float64 `yaml:"epsilon"`
	Palette         string  `yaml:"palette"`
	OrientationSnap bool    `yaml:"orientation_snap"`
	QueueCapacity   int     `yaml:"queue_capacity"`
	Policy          string  `yaml:"policy"`
	// IdleInterval is the pause between automatic random moves.
	IdleInterval time.Duration `yaml:"idle_interval"`
	DBPath       string        `yaml:"db_path,omitempty"`
	Listen       string        `yaml:"listen"`
}

// Default returns the built-in configuration.
func Default() AppConfig {
	return AppConfig{
		FPS:             engine.DefaultFPS,
		Speed:           engine.DefaultSpeed,
		Margin:          lattice.DefaultMargin,
		Epsilon:         lattice.DefaultEpsilon,
		Palette:         "classic",
		OrientationSnap: true,
		QueueCapacity:   engine.DefaultQueueCapacity,
		Policy:          engine.PolicyQueue.String(),
		IdleInterval:    3 * time.Second,
		Listen:          "127.0.0.1:8080",
	}
}

// DefaultPath returns ~/.cubeanim/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".cubeanim", "config.yaml"), nil
}

// Load reads the file at path over the defaults. A missing file yields the
// defaults. Unknown keys are rejected.
func Load(path string) (AppConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate rejects values the engine would otherwise silently clamp.
func (c AppConfig) Validate() error {
	switch {
	case c.FPS <= 0 || c.FPS > 1000:
		return fmt.Errorf("%w: fps %d out of range (0, 1000]", ErrInvalidConfig, c.FPS)
	case c.Speed <= 0 || c.Speed > engine.MaxSpeed:
		return fmt.Errorf("%w: speed %g out of range (0, %.4f]", ErrInvalidConfig, c.Speed, engine.MaxSpeed)
	case c.Margin <= 0 || math.IsInf(c.Margin, 0):
		return fmt.Errorf("%w: margin %g must be positive", ErrInvalidConfig, c.Margin)
	case c.Epsilon <= 0 || c.Epsilon >= c.Margin/2:
		return fmt.Errorf("%w: epsilon %g must be in (0, margin/2)", ErrInvalidConfig, c.Epsilon)
	case c.QueueCapacity < 1:
		return fmt.Errorf("%w: queue_capacity %d must be at least 1", ErrInvalidConfig, c.QueueCapacity)
	case c.IdleInterval < 0:
		return fmt.Errorf("%w: idle_interval %s is negative", ErrInvalidConfig, c.IdleInterval)
	}

	if _, ok := cube.PaletteByName(c.Palette); !ok {
		return fmt.Errorf("%w: unknown palette %q", ErrInvalidConfig, c.Palette)
	}
	if _, err := engine.ParsePolicy(c.Policy); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// PaletteColors resolves the configured palette.
func (c AppConfig) PaletteColors() cube.Palette {
	p, _ := cube.PaletteByName(c.Palette)
	return p
}

// EnginePolicy resolves the configured busy policy.
func (c AppConfig) EnginePolicy() engine.Policy {
	p, _ := engine.ParsePolicy(c.Policy)
	return p
}
