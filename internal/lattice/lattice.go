// Package lattice classifies cubelet positions into the six face layers of a
// 3x3x3 cube and snaps drifted coordinates back onto the canonical grid.
package lattice

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultMargin is the spacing between adjacent cubelet centers.
	DefaultMargin = 3.0

	// DefaultEpsilon is the membership tolerance. It is large relative to
	// the margin so drift from chained quaternion products never drops a
	// cubelet out of its layer.
	DefaultEpsilon = 0.7
)

// ErrInvalidClassifier is returned for a margin/epsilon pair that cannot
// separate the three lattice planes of an axis.
var ErrInvalidClassifier = errors.New("lattice: invalid classifier parameters")

// Axis is one of the three coordinate axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	default:
		return "?"
	}
}

// Unit returns the positive unit vector of the axis.
func (a Axis) Unit() mgl64.Vec3 {
	var v mgl64.Vec3
	if a >= AxisX && a <= AxisZ {
		v[a] = 1
	}
	return v
}

// Layer names one of the six face layers.
type Layer int

const (
	Up Layer = iota
	Down
	Left
	Right
	Front
	Back
)

// Layers lists all six layers in declaration order.
var Layers = [6]Layer{Up, Down, Left, Right, Front, Back}

// String returns the single-letter notation of the layer.
func (l Layer) String() string {
	switch l {
	case Up:
		return "U"
	case Down:
		return "D"
	case Left:
		return "L"
	case Right:
		return "R"
	case Front:
		return "F"
	case Back:
		return "B"
	default:
		return "?"
	}
}

// Name returns the long name of the layer.
func (l Layer) Name() string {
	switch l {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	case Front:
		return "front"
	case Back:
		return "back"
	default:
		return "unknown"
	}
}

// Axis returns the axis the layer is perpendicular to.
func (l Layer) Axis() Axis {
	switch l {
	case Left, Right:
		return AxisX
	case Up, Down:
		return AxisY
	default:
		return AxisZ
	}
}

// Sign returns +1 for Up/Right/Front and -1 for Down/Left/Back.
func (l Layer) Sign() float64 {
	switch l {
	case Up, Right, Front:
		return 1
	default:
		return -1
	}
}

// Normal returns the outward unit normal of the layer.
func (l Layer) Normal() mgl64.Vec3 {
	return l.Axis().Unit().Mul(l.Sign())
}

// LayerFor returns the layer on the given side of an axis.
func LayerFor(axis Axis, sign float64) Layer {
	switch axis {
	case AxisX:
		if sign > 0 {
			return Right
		}
		return Left
	case AxisY:
		if sign > 0 {
			return Up
		}
		return Down
	default:
		if sign > 0 {
			return Front
		}
		return Back
	}
}

// Set is a bitmask of layer memberships.
type Set uint8

// Has reports whether l is in the set.
func (s Set) Has(l Layer) bool {
	return s&(1<<uint(l)) != 0
}

// With returns the set with l added.
func (s Set) With(l Layer) Set {
	return s | 1<<uint(l)
}

// Count returns the number of layers in the set.
func (s Set) Count() int {
	n := 0
	for _, l := range Layers {
		if s.Has(l) {
			n++
		}
	}
	return n
}

// Layers returns the members in declaration order.
func (s Set) Layers() []Layer {
	out := make([]Layer, 0, 3)
	for _, l := range Layers {
		if s.Has(l) {
			out = append(out, l)
		}
	}
	return out
}

func (s Set) String() string {
	if s == 0 {
		return "-"
	}
	var b strings.Builder
	for _, l := range s.Layers() {
		b.WriteString(l.String())
	}
	return b.String()
}

// Coord is a lattice index in {-1, 0, 1} per axis.
type Coord [3]int

// Classifier maps positions to layer memberships.
type Classifier struct {
	Margin  float64
	Epsilon float64
}

// DefaultClassifier returns a classifier with DefaultMargin and DefaultEpsilon.
func DefaultClassifier() Classifier {
	return Classifier{Margin: DefaultMargin, Epsilon: DefaultEpsilon}
}

// NewClassifier validates the parameters. Epsilon must stay below half the
// margin, otherwise a center coordinate could match an outer plane.
func NewClassifier(margin, epsilon float64) (Classifier, error) {
	if margin <= 0 || epsilon <= 0 || epsilon >= margin/2 {
		return Classifier{}, fmt.Errorf("%w: margin=%g epsilon=%g", ErrInvalidClassifier, margin, epsilon)
	}
	return Classifier{Margin: margin, Epsilon: epsilon}, nil
}

// Classify returns every layer whose extreme plane p lies on. Zero, one, two
// or three memberships are all valid results.
func (c Classifier) Classify(p mgl64.Vec3) Set {
	var s Set
	for axis := AxisX; axis <= AxisZ; axis++ {
		v := p[axis]
		if math.Abs(v+c.Margin) < c.Epsilon {
			s = s.With(LayerFor(axis, -1))
		}
		if math.Abs(v-c.Margin) < c.Epsilon {
			s = s.With(LayerFor(axis, 1))
		}
	}
	return s
}

// SnapScalar rounds v to the nearest multiple of the margin.
func (c Classifier) SnapScalar(v float64) float64 {
	s := math.Round(v/c.Margin) * c.Margin
	if s == 0 {
		// avoid -0 leaking into snapshots
		return 0
	}
	return s
}

// Snap rounds every coordinate of p to the nearest multiple of the margin.
func (c Classifier) Snap(p mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{c.SnapScalar(p[0]), c.SnapScalar(p[1]), c.SnapScalar(p[2])}
}

// Coord returns the lattice index of p, clamped to {-1, 0, 1}.
func (c Classifier) Coord(p mgl64.Vec3) Coord {
	var out Coord
	for i := 0; i < 3; i++ {
		n := int(math.Round(p[i] / c.Margin))
		if n > 1 {
			n = 1
		} else if n < -1 {
			n = -1
		}
		out[i] = n
	}
	return out
}

// Position returns the centered world-space position of a lattice index.
func (c Classifier) Position(coord Coord) mgl64.Vec3 {
	return mgl64.Vec3{
		float64(coord[0]) * c.Margin,
		float64(coord[1]) * c.Margin,
		float64(coord[2]) * c.Margin,
	}
}

// Residual returns the largest distance of any coordinate of p from the
// lattice.
func (c Classifier) Residual(p mgl64.Vec3) float64 {
	var worst float64
	for i := 0; i < 3; i++ {
		d := math.Abs(p[i] - c.SnapScalar(p[i]))
		if d > worst {
			worst = d
		}
	}
	return worst
}
