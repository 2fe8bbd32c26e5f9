package cube

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/SeamusWaldron/cubeanim/internal/lattice"
)

// Snapshot is a serializable record of all 27 cubelet transforms relative
// to the assembly.
type Snapshot struct {
	Margin   float64        `json:"margin" jsonschema:"description=Lattice spacing the positions were recorded with"`
	Cubelets []CubeletState `json:"cubelets" jsonschema:"minItems=27,maxItems=27"`
}

// CubeletState is one cubelet transform. Rotation is stored as w, x, y, z.
type CubeletState struct {
	Index    int        `json:"index"`
	Position [3]float64 `json:"position"`
	Rotation [4]float64 `json:"rotation"`
}

// Snapshot records the assembly-relative transform of every cubelet.
func (a *Assembly) Snapshot() Snapshot {
	s := Snapshot{
		Margin:   a.cfg.Margin,
		Cubelets: make([]CubeletState, 0, len(a.cubelets)),
	}
	for _, c := range a.cubelets {
		p := a.LocalPosition(c)
		q := a.LocalOrientation(c)
		s.Cubelets = append(s.Cubelets, CubeletState{
			Index:    c.Index,
			Position: [3]float64{p[0], p[1], p[2]},
			Rotation: [4]float64{q.W, q.V[0], q.V[1], q.V[2]},
		})
	}
	return s
}

// Restore reparents every cubelet to the assembly and applies the recorded
// transforms. Positions recorded with a different margin are rescaled. The
// whole snapshot is validated before any cubelet moves; a rejected snapshot
// leaves the assembly as it was.
func (a *Assembly) Restore(s Snapshot) error {
	if err := a.validate(s); err != nil {
		return err
	}

	prev := a.Snapshot()
	a.apply(s)
	if err := a.RecomputeLayers(); err != nil {
		a.apply(prev)
		if rerr := a.RecomputeLayers(); rerr != nil {
			return fmt.Errorf("failed to roll back snapshot: %w", rerr)
		}
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return nil
}

func (a *Assembly) validate(s Snapshot) error {
	if len(s.Cubelets) != len(a.cubelets) {
		return fmt.Errorf("%w: expected %d cubelets, got %d", ErrInvalidSnapshot, len(a.cubelets), len(s.Cubelets))
	}
	if s.Margin <= 0 || math.IsNaN(s.Margin) || math.IsInf(s.Margin, 0) {
		return fmt.Errorf("%w: margin %g", ErrInvalidSnapshot, s.Margin)
	}

	scale := a.cfg.Margin / s.Margin
	seen := make(map[int]bool, len(s.Cubelets))
	sites := make(map[lattice.Coord]int, len(s.Cubelets))
	for _, st := range s.Cubelets {
		if st.Index < 0 || st.Index >= len(a.cubelets) || seen[st.Index] {
			return fmt.Errorf("%w: bad or duplicate index %d", ErrInvalidSnapshot, st.Index)
		}
		seen[st.Index] = true

		q := mgl64.Quat{W: st.Rotation[0], V: mgl64.Vec3{st.Rotation[1], st.Rotation[2], st.Rotation[3]}}
		if l := q.Len(); math.IsNaN(l) || math.Abs(l-1) > 1e-6 {
			return fmt.Errorf("%w: cubelet %d rotation is not a unit quaternion", ErrInvalidSnapshot, st.Index)
		}

		p := mgl64.Vec3{st.Position[0], st.Position[1], st.Position[2]}.Mul(scale)
		for i := 0; i < 3; i++ {
			if math.IsNaN(p[i]) || math.IsInf(p[i], 0) || math.Abs(p[i]) > a.cfg.Margin+a.cfg.Epsilon {
				return fmt.Errorf("%w: cubelet %d position %v is off the lattice", ErrInvalidSnapshot, st.Index, p)
			}
		}
		if r := a.classifier.Residual(p); r >= a.cfg.Epsilon {
			return fmt.Errorf("%w: cubelet %d position %v is %g off the lattice", ErrInvalidSnapshot, st.Index, p, r)
		}
		coord := a.classifier.Coord(p)
		if other, ok := sites[coord]; ok {
			return fmt.Errorf("%w: cubelets %d and %d share site %v", ErrInvalidSnapshot, other, st.Index, coord)
		}
		sites[coord] = st.Index
	}
	return nil
}

func (a *Assembly) apply(s Snapshot) {
	scale := a.cfg.Margin / s.Margin
	for _, st := range s.Cubelets {
		c := a.cubelets[st.Index]
		a.Root.AddChild(c.Node)
		c.Node.Position = mgl64.Vec3{st.Position[0], st.Position[1], st.Position[2]}.Mul(scale)
		c.Node.Rotation = mgl64.Quat{W: st.Rotation[0], V: mgl64.Vec3{st.Rotation[1], st.Rotation[2], st.Rotation[3]}}.Normalize()
	}
}
