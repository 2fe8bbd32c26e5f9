// Package engine animates quarter-turn layer rotations of a cube assembly.
//
// A rotation detaches the cubelets of one layer into a transient group node,
// turns the group a fixed increment per frame and, once the quarter turn is
// reached, re-attaches the cubelets to the assembly with snapped transforms
// and reclassifies every layer. Requests are served one at a time in
// submission order.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/SeamusWaldron/cubeanim/internal/cube"
	"github.com/SeamusWaldron/cubeanim/internal/lattice"
	"github.com/SeamusWaldron/cubeanim/internal/notation"
	"github.com/SeamusWaldron/cubeanim/internal/scene"
)

// Sentinel errors for the engine package.
var (
	ErrRotationInFlight = errors.New("engine: rotation in flight")
	ErrQueueFull        = errors.New("engine: rotation queue full")
	ErrPending          = errors.New("engine: request still pending")
)

// DefaultQueueCapacity bounds the number of pending requests.
const DefaultQueueCapacity = 64

// Policy decides what happens to a request submitted while busy.
type Policy int

const (
	// PolicyQueue appends to the FIFO queue.
	PolicyQueue Policy = iota
	// PolicyReject refuses with ErrRotationInFlight.
	PolicyReject
)

func (p Policy) String() string {
	if p == PolicyReject {
		return "reject"
	}
	return "queue"
}

// ParsePolicy resolves "queue" or "reject".
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "queue", "":
		return PolicyQueue, nil
	case "reject":
		return PolicyReject, nil
	default:
		return PolicyQueue, fmt.Errorf("unknown policy %q", s)
	}
}

// Config configures an Engine.
type Config struct {
	Speed           float64
	SnapOrientation bool
	QueueCapacity   int
	Policy          Policy
	// Strict reports lattice inconsistencies instead of healing them.
	Strict bool
	Logger *slog.Logger
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		Speed:           DefaultSpeed,
		SnapOrientation: true,
		QueueCapacity:   DefaultQueueCapacity,
		Policy:          PolicyQueue,
	}
}

// State is the engine state.
type State int

const (
	Idle State = iota
	Rotating
)

func (s State) String() string {
	if s == Rotating {
		return "rotating"
	}
	return "idle"
}

// faceTable resolves a face to its layer; the layer carries the axis.
var faceTable = map[notation.Face]lattice.Layer{
	notation.FaceU: lattice.Up,
	notation.FaceD: lattice.Down,
	notation.FaceL: lattice.Left,
	notation.FaceR: lattice.Right,
	notation.FaceF: lattice.Front,
	notation.FaceB: lattice.Back,
}

// LayerOf returns the layer turned by a face move.
func LayerOf(f notation.Face) (lattice.Layer, bool) {
	l, ok := faceTable[f]
	return l, ok
}

type rotation struct {
	req     *Request
	layer   lattice.Layer
	axis    mgl64.Vec3
	group   *scene.Node
	members []*cube.Cubelet
	stepper *Stepper
	angle   float64
	started time.Time
}

// Engine is the single mutator of cubelet parentage. Submit may be called
// from any goroutine; Advance must be driven by one frame loop.
type Engine struct {
	mu     sync.Mutex
	asm    *cube.Assembly
	cfg    Config
	logger *slog.Logger

	state      State
	active     *rotation
	queue      []*Request
	onComplete []func(Result, error)
	completed  int
}

// New creates an engine driving asm. Invalid config values are clamped.
func New(asm *cube.Assembly, cfg Config) *Engine {
	cfg.Speed = ClampSpeed(cfg.Speed)
	if cfg.QueueCapacity < 1 {
		cfg.QueueCapacity = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		asm:    asm,
		cfg:    cfg,
		logger: logger,
	}
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Submit enqueues a rotation. It fails fast on an invalid move and applies
// the configured busy policy.
func (e *Engine) Submit(m notation.Move) (*Request, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %+v", notation.ErrInvalidNotation, m)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	busy := e.state == Rotating || len(e.queue) > 0
	if busy && e.cfg.Policy == PolicyReject {
		return nil, fmt.Errorf("%w: cannot start %s", ErrRotationInFlight, m)
	}
	if len(e.queue) >= e.cfg.QueueCapacity {
		return nil, fmt.Errorf("%w: %d pending", ErrQueueFull, len(e.queue))
	}

	req := newRequest(m)
	e.queue = append(e.queue, req)
	return req, nil
}

// SubmitNotation parses s and submits it.
func (e *Engine) SubmitNotation(s string) (*Request, error) {
	m, err := notation.Parse(s)
	if err != nil {
		return nil, err
	}
	return e.Submit(m)
}

// OnComplete registers a callback run after every rotation, outside the
// engine lock.
func (e *Engine) OnComplete(fn func(Result, error)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onComplete = append(e.onComplete, fn)
}

// Advance performs one frame of work. It starts the next queued rotation
// when idle and reports whether a rotation was in progress this frame.
func (e *Engine) Advance() bool {
	e.mu.Lock()

	if e.active == nil {
		if len(e.queue) == 0 {
			e.mu.Unlock()
			return false
		}
		req := e.queue[0]
		e.queue[0] = nil
		e.queue = e.queue[1:]
		e.start(req)
	}

	r := e.active
	delta, done := r.stepper.Step()
	r.angle += delta
	r.group.Rotation = mgl64.QuatRotate(r.angle, r.axis)

	if !done {
		e.mu.Unlock()
		return true
	}

	res, err := e.finish()
	callbacks := make([]func(Result, error), len(e.onComplete))
	copy(callbacks, e.onComplete)
	e.mu.Unlock()

	r.req.complete(res, err)
	for _, cb := range callbacks {
		cb(res, err)
	}
	return true
}

func (e *Engine) start(req *Request) {
	layer := faceTable[req.Move.Face]
	members := e.asm.Layer(layer)

	group := scene.NewNode("rotation-" + req.Move.Notation())
	e.asm.Root.AddChild(group)
	for _, c := range members {
		group.Attach(c.Node)
	}

	e.active = &rotation{
		req:     req,
		layer:   layer,
		axis:    layer.Axis().Unit(),
		group:   group,
		members: members,
		stepper: NewStepper(req.Move.Direction.Sign(), e.cfg.Speed),
		started: time.Now(),
	}
	e.state = Rotating

	e.logger.Debug("rotation started",
		"id", req.ID,
		"move", req.Move.Notation(),
		"layer", layer.Name(),
		"members", len(members))
}

// finish fuses the group back into the assembly. Called with e.mu held.
func (e *Engine) finish() (Result, error) {
	r := e.active
	classifier := e.asm.Classifier()

	const quarter = math.Pi / 2
	r.angle = math.Round(r.angle/quarter) * quarter
	r.group.Rotation = mgl64.QuatRotate(r.angle, r.axis)

	res := Result{
		ID:     r.req.ID,
		Move:   r.req.Move,
		Layer:  r.layer,
		Frames: r.stepper.Frames(),
		Angle:  r.angle,
	}

	for _, c := range r.members {
		e.asm.Root.Attach(c.Node)

		if d := classifier.Residual(c.Node.Position); d > res.PositionDrift {
			res.PositionDrift = d
		}
		if d := cube.OrientationResidual(c.Node.Rotation); d > res.OrientationDrift {
			res.OrientationDrift = d
		}

		c.Node.Position = classifier.Snap(c.Node.Position)
		if e.cfg.SnapOrientation {
			c.Node.Rotation = cube.SnapOrientation(c.Node.Rotation)
		}
	}

	e.asm.Root.RemoveChild(r.group)
	e.active = nil
	e.state = Idle
	e.completed++
	res.Duration = time.Since(r.started)

	if err := e.asm.RecomputeLayers(); err != nil {
		if e.cfg.Strict {
			e.logger.Error("lattice inconsistency", "move", r.req.Move.Notation(), "error", err)
			return res, fmt.Errorf("failed to reclassify after %s: %w", r.req.Move, err)
		}
		e.logger.Warn("healing lattice", "move", r.req.Move.Notation(), "error", err)
		if herr := e.asm.Heal(); herr != nil {
			e.logger.Error("lattice heal failed", "move", r.req.Move.Notation(), "error", herr)
			return res, fmt.Errorf("failed to heal after %s: %w", r.req.Move, herr)
		}
	}

	e.logger.Info("rotation completed",
		"id", res.ID,
		"move", res.Move.Notation(),
		"frames", res.Frames,
		"position_drift", res.PositionDrift,
		"orientation_drift", res.OrientationDrift)

	return res, nil
}

// Rotate submits m and drives frames until it completes. Queued requests
// ahead of m are completed first. onFrame, if set, is called after every
// frame.
func (e *Engine) Rotate(ctx context.Context, m notation.Move, clock Clock, onFrame func()) (Result, error) {
	req, err := e.Submit(m)
	if err != nil {
		return Result{}, err
	}

	for {
		select {
		case <-req.Done():
			return req.Result()
		default:
		}

		if err := clock.Wait(ctx); err != nil {
			return Result{}, err
		}
		e.Advance()
		if onFrame != nil {
			onFrame()
		}
	}
}

// Drain drives frames until the engine is idle with an empty queue.
func (e *Engine) Drain(ctx context.Context, clock Clock, onFrame func()) error {
	for e.Busy() {
		if err := clock.Wait(ctx); err != nil {
			return err
		}
		e.Advance()
		if onFrame != nil {
			onFrame()
		}
	}
	return nil
}

// Run drives frames until ctx is done.
func (e *Engine) Run(ctx context.Context, clock Clock, onFrame func()) error {
	for {
		if err := clock.Wait(ctx); err != nil {
			return err
		}
		e.Advance()
		if onFrame != nil {
			onFrame()
		}
	}
}

// Busy reports whether a rotation is active or pending.
func (e *Engine) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == Rotating || len(e.queue) > 0
}

// State returns the current state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Pending returns the number of queued requests, excluding the active one.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

// Completed returns the number of finished rotations.
func (e *Engine) Completed() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.completed
}

// Progress reports the active move and its completion in [0, 1].
func (e *Engine) Progress() (notation.Move, float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return notation.Move{}, 0, false
	}
	return e.active.req.Move, e.active.stepper.Progress(), true
}

// ActiveGroup returns the transient rotation group, or nil when idle.
func (e *Engine) ActiveGroup() *scene.Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return nil
	}
	return e.active.group
}

// WithAssembly runs fn with exclusive access to the assembly. It refuses
// while a rotation is active or pending.
func (e *Engine) WithAssembly(fn func(*cube.Assembly) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Rotating || len(e.queue) > 0 {
		return ErrRotationInFlight
	}
	return fn(e.asm)
}

// View runs fn with the assembly under the engine lock, whatever the state.
// fn must not mutate the assembly.
func (e *Engine) View(fn func(*cube.Assembly)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.asm)
}

// MoveRoot sets the assembly root's world transform. Cubelet parentage is
// untouched, so it is allowed mid-rotation.
func (e *Engine) MoveRoot(position mgl64.Vec3, rotation mgl64.Quat) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.asm.Root.Position = position
	e.asm.Root.Rotation = rotation.Normalize()
}
