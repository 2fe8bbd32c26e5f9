package cubeanim

import (
	"context"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/SeamusWaldron/cubeanim/internal/cube"
	"github.com/SeamusWaldron/cubeanim/internal/engine"
	"github.com/SeamusWaldron/cubeanim/internal/lattice"
)

// Aliases for the engine and assembly types exposed through Cube.
type (
	Result      = engine.Result
	Request     = engine.Request
	Clock       = engine.Clock
	Policy      = engine.Policy
	State       = engine.State
	Snapshot    = cube.Snapshot
	Facelets    = cube.Facelets
	Palette     = cube.Palette
	Color       = cube.Color
	Drift       = cube.Drift
	Layer       = lattice.Layer
	ManualClock = engine.ManualClock
	TickerClock = engine.TickerClock
)

const (
	PolicyQueue  = engine.PolicyQueue
	PolicyReject = engine.PolicyReject

	Idle     = engine.Idle
	Rotating = engine.Rotating

	LayerUp    = lattice.Up
	LayerDown  = lattice.Down
	LayerLeft  = lattice.Left
	LayerRight = lattice.Right
	LayerFront = lattice.Front
	LayerBack  = lattice.Back
)

// Palettes
var (
	ClassicPalette = cube.ClassicPalette
	HeroPalette    = cube.HeroPalette
)

// PaletteByName resolves "classic" or "hero".
func PaletteByName(name string) (Palette, bool) {
	return cube.PaletteByName(name)
}

// ParsePolicy resolves "queue" or "reject".
func ParsePolicy(s string) (Policy, error) {
	return engine.ParsePolicy(s)
}

// NewTickerClock creates a clock ticking fps times per second.
func NewTickerClock(fps int) *TickerClock {
	return engine.NewTickerClock(fps)
}

// Transform is the world transform of one cubelet, ready for a renderer.
// Rotation is stored as w, x, y, z.
type Transform struct {
	Index    int        `json:"index"`
	Position [3]float64 `json:"position"`
	Rotation [4]float64 `json:"rotation"`
}

// Cube is an animated 3x3x3 cube. All methods are safe for concurrent use,
// but frames must be driven from a single goroutine.
//
// Example:
//
//	c := cubeanim.New(cubeanim.WithSpeed(0.1))
//	c.Apply(cubeanim.SexyMove...)
//	fmt.Println(c.IsSolved())
type Cube struct {
	cfg *config
	eng *engine.Engine
}

// New creates a solved cube.
func New(opts ...Option) *Cube {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &Cube{
		cfg: cfg,
		eng: engine.New(cube.Build(cfg.cubeConfig()), cfg.engineConfig()),
	}
}

// Apply runs each move to completion without pacing, stopping at the first
// error. Moves already queued are completed first.
func (c *Cube) Apply(moves ...Move) error {
	clock := &engine.ManualClock{}
	for _, m := range moves {
		if _, err := c.eng.Rotate(context.Background(), m, clock, nil); err != nil {
			return err
		}
	}
	return nil
}

// ApplyNotation parses a move sequence and applies it. Nothing is applied
// if any token is invalid.
func (c *Cube) ApplyNotation(s string) error {
	moves, err := ParseMoves(s)
	if err != nil {
		return err
	}
	return c.Apply(moves...)
}

// Submit queues a move for animation. Frames are driven by Advance, Run,
// Rotate or Drain.
func (c *Cube) Submit(m Move) (*Request, error) {
	return c.eng.Submit(m)
}

// SubmitNotation parses and queues a single move.
func (c *Cube) SubmitNotation(s string) (*Request, error) {
	return c.eng.SubmitNotation(s)
}

// Advance performs one frame and reports whether a rotation was in progress.
func (c *Cube) Advance() bool {
	return c.eng.Advance()
}

// Rotate queues m and drives frames from clock until it completes.
func (c *Cube) Rotate(ctx context.Context, m Move, clock Clock, onFrame func()) (Result, error) {
	return c.eng.Rotate(ctx, m, clock, onFrame)
}

// Drain drives frames until every queued move has completed.
func (c *Cube) Drain(ctx context.Context, clock Clock, onFrame func()) error {
	return c.eng.Drain(ctx, clock, onFrame)
}

// Run drives frames until ctx is done.
func (c *Cube) Run(ctx context.Context, clock Clock, onFrame func()) error {
	return c.eng.Run(ctx, clock, onFrame)
}

// OnRotation registers a callback for every completed rotation.
func (c *Cube) OnRotation(fn func(Result, error)) {
	c.eng.OnComplete(fn)
}

// Busy reports whether a rotation is active or pending.
func (c *Cube) Busy() bool {
	return c.eng.Busy()
}

// State returns Idle or Rotating.
func (c *Cube) State() State {
	return c.eng.State()
}

// Pending returns the number of queued moves, excluding the active one.
func (c *Cube) Pending() int {
	return c.eng.Pending()
}

// Completed returns the number of finished rotations.
func (c *Cube) Completed() int {
	return c.eng.Completed()
}

// Progress reports the active move and its completion in [0, 1].
func (c *Cube) Progress() (Move, float64, bool) {
	return c.eng.Progress()
}

// Speed returns the effective rotation increment in radians per frame.
func (c *Cube) Speed() float64 {
	return c.eng.Config().Speed
}

// Layers returns the cubelet indices of every layer from the latest
// classification, indexed by Layer.
func (c *Cube) Layers() [6][]int {
	var out [6][]int
	c.eng.View(func(a *cube.Assembly) {
		for l, members := range a.Classification() {
			ids := make([]int, len(members))
			for i, m := range members {
				ids[i] = m.Index
			}
			out[l] = ids
		}
	})
	return out
}

// Transforms returns the current world transform of every cubelet,
// including the in-flight rotation.
func (c *Cube) Transforms() []Transform {
	out := make([]Transform, 0, 27)
	c.eng.View(func(a *cube.Assembly) {
		for _, cl := range a.Cubelets() {
			p := cl.Node.WorldPosition()
			q := cl.Node.WorldQuaternion()
			out = append(out, Transform{
				Index:    cl.Index,
				Position: [3]float64{p[0], p[1], p[2]},
				Rotation: [4]float64{q.W, q.V[0], q.V[1], q.V[2]},
			})
		}
	})
	return out
}

// Colors returns the sticker colors of a cubelet in its own frame, indexed
// by Layer, or false if index is out of range.
func (c *Cube) Colors(index int) (Palette, bool) {
	var (
		p  Palette
		ok bool
	)
	c.eng.View(func(a *cube.Assembly) {
		if cl := a.Cubelet(index); cl != nil {
			p, ok = cl.Colors, true
		}
	})
	return p, ok
}

// CubeletSize returns the rendered cubelet edge length.
func (c *Cube) CubeletSize() float64 {
	var size float64
	c.eng.View(func(a *cube.Assembly) {
		size = a.Config().Size
	})
	return size
}

// SetRootTransform moves the whole assembly in world space. It is allowed
// mid-rotation.
func (c *Cube) SetRootTransform(position mgl64.Vec3, rotation mgl64.Quat) {
	c.eng.MoveRoot(position, rotation)
}

// Facelets returns the sticker map from the latest classification.
func (c *Cube) Facelets() Facelets {
	var f Facelets
	c.eng.View(func(a *cube.Assembly) {
		f = a.Facelets()
	})
	return f
}

// IsSolved reports whether every face shows one color.
func (c *Cube) IsSolved() bool {
	var solved bool
	c.eng.View(func(a *cube.Assembly) {
		solved = a.IsSolved()
	})
	return solved
}

// String returns the unfolded sticker net.
func (c *Cube) String() string {
	return c.Facelets().String()
}

// Drift reports how far the cubelets sit from the canonical lattice.
func (c *Cube) Drift() Drift {
	var d Drift
	c.eng.View(func(a *cube.Assembly) {
		d = a.Drift()
	})
	return d
}

// Verify checks the lattice invariants. It fails with ErrRotationInFlight
// while busy.
func (c *Cube) Verify() error {
	return c.eng.WithAssembly(func(a *cube.Assembly) error {
		return a.Verify()
	})
}

// Snapshot records every cubelet transform. It fails with
// ErrRotationInFlight while busy.
func (c *Cube) Snapshot() (Snapshot, error) {
	var s Snapshot
	err := c.eng.WithAssembly(func(a *cube.Assembly) error {
		s = a.Snapshot()
		return nil
	})
	return s, err
}

// Restore replaces every cubelet transform with those in s.
func (c *Cube) Restore(s Snapshot) error {
	return c.eng.WithAssembly(func(a *cube.Assembly) error {
		return a.Restore(s)
	})
}

// Reset returns the cube to the solved state.
func (c *Cube) Reset() error {
	solved := cube.Build(c.cfg.cubeConfig()).Snapshot()
	return c.Restore(solved)
}
