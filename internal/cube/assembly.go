// Package cube models a 3x3x3 cube as 27 rigid cubelets hanging off a single
// assembly node, with layer memberships derived from cubelet positions.
package cube

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/SeamusWaldron/cubeanim/internal/lattice"
	"github.com/SeamusWaldron/cubeanim/internal/scene"
)

// Sentinel errors for the cube package.
var (
	ErrLatticeInconsistency = errors.New("cube: lattice inconsistency")
	ErrInvalidSnapshot      = errors.New("cube: invalid snapshot")
)

// DefaultSize is the rendered edge length of one cubelet.
const DefaultSize = 2.8

// Config parameterizes an assembly. Presentation (palette, size) is kept
// separate from the lattice geometry.
type Config struct {
	Margin  float64
	Epsilon float64
	Size    float64
	Palette Palette
}

// DefaultConfig returns the standard geometry with the classic palette.
func DefaultConfig() Config {
	return Config{
		Margin:  lattice.DefaultMargin,
		Epsilon: lattice.DefaultEpsilon,
		Size:    DefaultSize,
		Palette: ClassicPalette,
	}
}

// Normalize clamps invalid values back to defaults.
func (c Config) Normalize() Config {
	if c.Margin <= 0 {
		c.Margin = lattice.DefaultMargin
	}
	if c.Epsilon <= 0 || c.Epsilon >= c.Margin/2 {
		c.Epsilon = c.Margin * lattice.DefaultEpsilon / lattice.DefaultMargin
	}
	if c.Size <= 0 || c.Size > c.Margin {
		c.Size = c.Margin * DefaultSize / lattice.DefaultMargin
	}
	return c
}

// Cubelet is one of the 27 sub-cubes. Identity is positional; Index is the
// construction slot and is only used for enumeration.
type Cubelet struct {
	Index  int
	Home   lattice.Coord
	Node   *scene.Node
	Colors Palette

	layers lattice.Set
}

// Layers returns the memberships from the latest classification.
func (c *Cubelet) Layers() lattice.Set {
	return c.layers
}

// Kind names the topological role from the latest classification.
func (c *Cubelet) Kind() string {
	switch c.layers.Count() {
	case 3:
		return "corner"
	case 2:
		return "edge"
	case 1:
		return "center"
	default:
		return "core"
	}
}

// Assembly owns the 27 cubelets and the six derived layer sets.
type Assembly struct {
	Root *scene.Node

	cfg        Config
	classifier lattice.Classifier
	cubelets   [27]*Cubelet
	layers     [6][]*Cubelet
	facelets   Facelets
}

// Build creates a solved assembly with cubelets at (i-1)*margin on every axis.
func Build(cfg Config) *Assembly {
	cfg = cfg.Normalize()

	a := &Assembly{
		Root:       scene.NewNode("assembly"),
		cfg:        cfg,
		classifier: lattice.Classifier{Margin: cfg.Margin, Epsilon: cfg.Epsilon},
	}

	for x := 0; x < 3; x++ {
		for y := 0; y < 3; y++ {
			for z := 0; z < 3; z++ {
				idx := x*9 + y*3 + z
				home := lattice.Coord{x - 1, y - 1, z - 1}

				node := scene.NewNode(fmt.Sprintf("cubelet-%02d", idx))
				node.Position = a.classifier.Position(home)
				a.Root.AddChild(node)

				a.cubelets[idx] = &Cubelet{
					Index:  idx,
					Home:   home,
					Node:   node,
					Colors: cfg.Palette,
				}
			}
		}
	}

	// A freshly built lattice is always consistent.
	_ = a.RecomputeLayers()
	return a
}

// Config returns the normalized configuration.
func (a *Assembly) Config() Config {
	return a.cfg
}

// Classifier returns the lattice classifier used by the assembly.
func (a *Assembly) Classifier() lattice.Classifier {
	return a.classifier
}

// Cubelets returns all 27 cubelets in index order.
func (a *Assembly) Cubelets() []*Cubelet {
	out := make([]*Cubelet, len(a.cubelets))
	copy(out, a.cubelets[:])
	return out
}

// Cubelet returns the cubelet in construction slot i.
func (a *Assembly) Cubelet(i int) *Cubelet {
	if i < 0 || i >= len(a.cubelets) {
		return nil
	}
	return a.cubelets[i]
}

// Layer returns the cubelets currently in layer l.
func (a *Assembly) Layer(l lattice.Layer) []*Cubelet {
	out := make([]*Cubelet, len(a.layers[l]))
	copy(out, a.layers[l])
	return out
}

// Classification returns all six layer sets, indexed by lattice.Layer.
func (a *Assembly) Classification() [6][]*Cubelet {
	var out [6][]*Cubelet
	for _, l := range lattice.Layers {
		out[l] = a.Layer(l)
	}
	return out
}

// LocalPosition returns the cubelet position expressed in the assembly frame,
// whatever its current parent.
func (a *Assembly) LocalPosition(c *Cubelet) mgl64.Vec3 {
	return a.Root.WorldToLocal(c.Node.WorldPosition())
}

// LocalOrientation returns the cubelet orientation relative to the assembly.
func (a *Assembly) LocalOrientation(c *Cubelet) mgl64.Quat {
	return a.Root.WorldQuaternion().Inverse().Mul(c.Node.WorldQuaternion()).Normalize()
}

// RecomputeLayers clears the six layer sets and reclassifies every cubelet
// from its position in the assembly frame: the world position mapped through
// Root.WorldToLocal. Moving or rotating Root never changes membership, and
// with Root at identity the assembly frame is world space. It is the only way
// layer sets change after Build.
func (a *Assembly) RecomputeLayers() error {
	for i := range a.layers {
		a.layers[i] = a.layers[i][:0]
	}

	for _, c := range a.cubelets {
		c.layers = a.classifier.Classify(a.LocalPosition(c))
		for _, l := range c.layers.Layers() {
			a.layers[l] = append(a.layers[l], c)
		}
	}

	a.facelets = a.computeFacelets()
	return a.Verify()
}

// Verify checks the lattice topology: 8 corners, 12 edges, 6 centers and one
// core, nine cubelets per layer and no two cubelets on the same site.
func (a *Assembly) Verify() error {
	var byCount [4]int
	sites := make(map[lattice.Coord]int, len(a.cubelets))

	for _, c := range a.cubelets {
		byCount[c.layers.Count()]++

		coord := a.classifier.Coord(a.LocalPosition(c))
		if other, ok := sites[coord]; ok {
			return fmt.Errorf("%w: cubelets %d and %d share site %v", ErrLatticeInconsistency, other, c.Index, coord)
		}
		sites[coord] = c.Index
	}

	if byCount != [4]int{1, 6, 12, 8} {
		return fmt.Errorf("%w: membership counts core=%d center=%d edge=%d corner=%d",
			ErrLatticeInconsistency, byCount[0], byCount[1], byCount[2], byCount[3])
	}

	for _, l := range lattice.Layers {
		if n := len(a.layers[l]); n != 9 {
			return fmt.Errorf("%w: layer %s holds %d cubelets", ErrLatticeInconsistency, l, n)
		}
	}

	return nil
}

// Heal re-snaps every root-parented cubelet onto the lattice and the nearest
// axis-aligned orientation, then reclassifies.
func (a *Assembly) Heal() error {
	for _, c := range a.cubelets {
		if c.Node.Parent() != a.Root {
			continue
		}
		c.Node.Position = a.classifier.Snap(c.Node.Position)
		c.Node.Rotation = SnapOrientation(c.Node.Rotation)
	}
	return a.RecomputeLayers()
}

// Drift measures the worst deviation of any cubelet from the lattice, in
// position units and in quaternion component units.
type Drift struct {
	Position    float64 `json:"position"`
	Orientation float64 `json:"orientation"`
}

// Drift reports how far the assembly has moved off the canonical lattice.
func (a *Assembly) Drift() Drift {
	var d Drift
	for _, c := range a.cubelets {
		if r := a.classifier.Residual(a.LocalPosition(c)); r > d.Position {
			d.Position = r
		}
		if r := OrientationResidual(a.LocalOrientation(c)); r > d.Orientation {
			d.Orientation = r
		}
	}
	return d
}
