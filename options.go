package cubeanim

import (
	"log/slog"

	"github.com/SeamusWaldron/cubeanim/internal/cube"
	"github.com/SeamusWaldron/cubeanim/internal/engine"
	"github.com/SeamusWaldron/cubeanim/internal/lattice"
)

// Option configures a Cube.
type Option func(*config)

type config struct {
	speed           float64
	margin          float64
	epsilon         float64
	size            float64
	palette         Palette
	snapOrientation bool
	queueCapacity   int
	policy          Policy
	strict          bool
	logger          *slog.Logger
}

func defaultConfig() *config {
	return &config{
		speed:           engine.DefaultSpeed,
		margin:          lattice.DefaultMargin,
		epsilon:         lattice.DefaultEpsilon,
		size:            cube.DefaultSize,
		palette:         ClassicPalette,
		snapOrientation: true,
		queueCapacity:   engine.DefaultQueueCapacity,
		policy:          PolicyQueue,
	}
}

func (c *config) cubeConfig() cube.Config {
	return cube.Config{
		Margin:  c.margin,
		Epsilon: c.epsilon,
		Size:    c.size,
		Palette: c.palette,
	}
}

func (c *config) engineConfig() engine.Config {
	return engine.Config{
		Speed:           c.speed,
		SnapOrientation: c.snapOrientation,
		QueueCapacity:   c.queueCapacity,
		Policy:          c.policy,
		Strict:          c.strict,
		Logger:          c.logger,
	}
}

// WithSpeed sets the rotation increment in radians per frame.
// Values outside (0, pi/4] are clamped.
func WithSpeed(radiansPerFrame float64) Option {
	return func(c *config) {
		c.speed = radiansPerFrame
	}
}

// WithMargin sets the distance between adjacent cubelet centers.
func WithMargin(margin float64) Option {
	return func(c *config) {
		c.margin = margin
	}
}

// WithEpsilon sets the layer membership tolerance. It must stay below half
// the margin; larger values fall back to the default ratio.
func WithEpsilon(epsilon float64) Option {
	return func(c *config) {
		c.epsilon = epsilon
	}
}

// WithCubeletSize sets the rendered cubelet edge length.
func WithCubeletSize(size float64) Option {
	return func(c *config) {
		c.size = size
	}
}

// WithPalette sets the sticker colors.
func WithPalette(p Palette) Option {
	return func(c *config) {
		c.palette = p
	}
}

// WithOrientationSnap enables or disables snapping cubelet orientations to
// the nearest axis-aligned rotation after every turn. Enabled by default.
func WithOrientationSnap(enabled bool) Option {
	return func(c *config) {
		c.snapOrientation = enabled
	}
}

// WithQueueCapacity bounds the number of pending moves.
func WithQueueCapacity(n int) Option {
	return func(c *config) {
		c.queueCapacity = n
	}
}

// WithPolicy chooses between queueing and rejecting moves submitted while
// a rotation is in flight.
func WithPolicy(p Policy) Option {
	return func(c *config) {
		c.policy = p
	}
}

// WithStrict reports lattice inconsistencies as errors instead of healing.
func WithStrict(strict bool) Option {
	return func(c *config) {
		c.strict = strict
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}
