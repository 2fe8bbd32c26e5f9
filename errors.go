package cubeanim

import (
	"github.com/SeamusWaldron/cubeanim/internal/ble"
	"github.com/SeamusWaldron/cubeanim/internal/cube"
	"github.com/SeamusWaldron/cubeanim/internal/engine"
	"github.com/SeamusWaldron/cubeanim/internal/notation"
)

// Sentinel errors, comparable with errors.Is.
var (
	// Notation errors
	ErrInvalidNotation = notation.ErrInvalidNotation

	// Engine errors
	ErrRotationInFlight     = engine.ErrRotationInFlight
	ErrQueueFull            = engine.ErrQueueFull
	ErrLatticeInconsistency = cube.ErrLatticeInconsistency
	ErrInvalidSnapshot      = cube.ErrInvalidSnapshot

	// Device errors
	ErrNotConnected   = ble.ErrNotConnected
	ErrDeviceNotFound = ble.ErrDeviceNotFound
)
