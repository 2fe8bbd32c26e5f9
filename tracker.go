package cubeanim

import (
	"sync"
	"time"
)

// DriftReport summarizes the rotations a DriftTracker has observed.
type DriftReport struct {
	Moves int `json:"moves"`
	// Failures counts rotations that completed with an error.
	Failures       int           `json:"failures"`
	Frames         int           `json:"frames"`
	MaxPosition    float64       `json:"max_position_drift"`
	MaxOrientation float64       `json:"max_orientation_drift"`
	Elapsed        time.Duration `json:"elapsed"`
	// Final is the drift of the assembly after the last observed rotation.
	Final Drift `json:"final"`
}

// DriftTracker collects per-rotation drift from a Cube.
type DriftTracker struct {
	cube *Cube

	mu     sync.Mutex
	report DriftReport
}

// Track attaches a tracker to c. Only rotations completed after the call
// are counted.
func Track(c *Cube) *DriftTracker {
	t := &DriftTracker{cube: c}
	c.OnRotation(t.observe)
	return t
}

func (t *DriftTracker) observe(res Result, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.report.Moves++
	if err != nil {
		t.report.Failures++
	}
	t.report.Frames += res.Frames
	t.report.Elapsed += res.Duration
	if res.PositionDrift > t.report.MaxPosition {
		t.report.MaxPosition = res.PositionDrift
	}
	if res.OrientationDrift > t.report.MaxOrientation {
		t.report.MaxOrientation = res.OrientationDrift
	}
}

// Report returns the accumulated figures together with the current
// assembly drift.
func (t *DriftTracker) Report() DriftReport {
	final := t.cube.Drift()

	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.report
	r.Final = final
	return r
}

// Reset clears the accumulated figures.
func (t *DriftTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.report = DriftReport{}
}
