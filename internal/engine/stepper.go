package engine

import "math"

const (
	// DefaultSpeed is the angular increment per frame in radians.
	DefaultSpeed = 0.05

	// MaxSpeed keeps a single step under half a quarter turn so the final
	// snap always lands on the intended multiple of pi/2.
	MaxSpeed = math.Pi / 4

	// TargetAngle is where a rotation stops stepping. The small undershoot
	// absorbs accumulation error; the snap at completion closes the gap.
	TargetAngle = math.Pi/2 - 0.001
)

// Stepper advances one rotation by a fixed increment per frame. It keeps no
// clock of its own.
type Stepper struct {
	sign        float64
	speed       float64
	target      float64
	accumulated float64
	frames      int
	done        bool
}

// NewStepper creates a stepper turning in the direction of sign (+1 or -1).
func NewStepper(sign, speed float64) *Stepper {
	if sign < 0 {
		sign = -1
	} else {
		sign = 1
	}
	return &Stepper{
		sign:   sign,
		speed:  ClampSpeed(speed),
		target: TargetAngle,
	}
}

// ClampSpeed maps non-positive speeds to DefaultSpeed and caps at MaxSpeed.
func ClampSpeed(speed float64) float64 {
	if speed <= 0 || math.IsNaN(speed) {
		return DefaultSpeed
	}
	if speed > MaxSpeed {
		return MaxSpeed
	}
	return speed
}

// Step returns the signed angle to apply this frame and whether the target
// has been reached. Once done, further calls return (0, true).
func (s *Stepper) Step() (float64, bool) {
	if s.done {
		return 0, true
	}
	s.accumulated += s.speed
	s.frames++
	if s.accumulated >= s.target {
		s.done = true
	}
	return s.sign * s.speed, s.done
}

// Accumulated returns the unsigned angle stepped so far.
func (s *Stepper) Accumulated() float64 {
	return s.accumulated
}

// Frames returns the number of steps taken.
func (s *Stepper) Frames() int {
	return s.frames
}

// Done reports whether the target has been reached.
func (s *Stepper) Done() bool {
	return s.done
}

// Progress returns completion in [0, 1].
func (s *Stepper) Progress() float64 {
	p := s.accumulated / (math.Pi / 2)
	if p > 1 {
		return 1
	}
	return p
}

// FramesFor returns how many frames a quarter turn takes at the given speed.
func FramesFor(speed float64) int {
	return int(math.Ceil(TargetAngle / ClampSpeed(speed)))
}
