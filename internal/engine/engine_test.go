package engine

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SeamusWaldron/cubeanim/internal/cube"
	"github.com/SeamusWaldron/cubeanim/internal/lattice"
	"github.com/SeamusWaldron/cubeanim/internal/notation"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T, mutate ...func(*Config)) (*Engine, *cube.Assembly) {
	t.Helper()
	asm := cube.Build(cube.DefaultConfig())
	cfg := DefaultConfig()
	cfg.Logger = quietLogger()
	for _, fn := range mutate {
		fn(&cfg)
	}
	return New(asm, cfg), asm
}

func mustMove(t *testing.T, s string) notation.Move {
	t.Helper()
	m, err := notation.Parse(s)
	require.NoError(t, err)
	return m
}

func apply(t *testing.T, e *Engine, moves ...notation.Move) []Result {
	t.Helper()
	clock := &ManualClock{}
	out := make([]Result, 0, len(moves))
	for _, m := range moves {
		res, err := e.Rotate(context.Background(), m, clock, nil)
		require.NoError(t, err, m.Notation())
		out = append(out, res)
	}
	return out
}

func applySeq(t *testing.T, e *Engine, seq string) {
	t.Helper()
	moves, err := notation.ParseSequence(seq)
	require.NoError(t, err)
	apply(t, e, moves...)
}

func positions(asm *cube.Assembly) map[int]mgl64.Vec3 {
	out := make(map[int]mgl64.Vec3, 27)
	for _, c := range asm.Cubelets() {
		out[c.Index] = asm.LocalPosition(c)
	}
	return out
}

func assertOnLattice(t *testing.T, asm *cube.Assembly) {
	t.Helper()
	m := asm.Config().Margin
	for _, c := range asm.Cubelets() {
		require.Same(t, asm.Root, c.Node.Parent(), "cubelet %d", c.Index)
		for i, v := range c.Node.Position {
			ok := v == -m || v == 0 || v == m
			require.True(t, ok, "cubelet %d axis %d off lattice: %v", c.Index, i, v)
		}
	}
	require.NoError(t, asm.Verify())
}

func TestStepper_DefaultSpeed(t *testing.T) {
	s := NewStepper(1, DefaultSpeed)

	frames := 0
	var total float64
	for {
		delta, done := s.Step()
		total += delta
		frames++
		if done {
			break
		}
		require.Less(t, frames, 1000)
	}

	assert.Equal(t, 32, frames)
	assert.Equal(t, FramesFor(DefaultSpeed), frames)
	assert.GreaterOrEqual(t, s.Accumulated(), TargetAngle)
	assert.InDelta(t, 1.6, total, 1e-9)
	assert.Equal(t, 1.0, s.Progress())

	delta, done := s.Step()
	assert.Zero(t, delta)
	assert.True(t, done)
	assert.Equal(t, 32, s.Frames())
}

func TestStepper_CounterClockwise(t *testing.T) {
	s := NewStepper(-1, 0.5)
	delta, done := s.Step()
	assert.Equal(t, -0.5, delta)
	assert.False(t, done)
	assert.Equal(t, 4, FramesFor(0.5))
}

func TestClampSpeed(t *testing.T) {
	assert.Equal(t, DefaultSpeed, ClampSpeed(0))
	assert.Equal(t, DefaultSpeed, ClampSpeed(-1))
	assert.Equal(t, MaxSpeed, ClampSpeed(3))
	assert.Equal(t, 0.2, ClampSpeed(0.2))
}

func TestRotate_UpConcrete(t *testing.T) {
	for _, tt := range []struct {
		move string
		want func(x, z float64) (float64, float64)
	}{
		{"U", func(x, z float64) (float64, float64) { return z, -x }},
		{"U'", func(x, z float64) (float64, float64) { return -z, x }},
	} {
		t.Run(tt.move, func(t *testing.T) {
			e, asm := newTestEngine(t)
			before := positions(asm)

			res := apply(t, e, mustMove(t, tt.move))[0]
			assert.Equal(t, lattice.Up, res.Layer)
			assert.Equal(t, 32, res.Frames)
			assert.InDelta(t, mustMove(t, tt.move).Direction.Sign()*math.Pi/2, res.Angle, 1e-15)

			after := positions(asm)
			for idx, p := range before {
				got := after[idx]
				if p[1] != 3 {
					assert.Equal(t, p, got, "cubelet %d outside the layer moved", idx)
					continue
				}
				wx, wz := tt.want(p[0], p[2])
				assert.Equal(t, mgl64.Vec3{wx, 3, wz}, got, "cubelet %d", idx)
			}
			assertOnLattice(t, asm)
		})
	}
}

func TestRotate_InverseRestores(t *testing.T) {
	for _, m := range notation.All() {
		t.Run(m.Notation(), func(t *testing.T) {
			e, asm := newTestEngine(t)
			before := positions(asm)

			apply(t, e, m, m.Inverse())

			assert.Equal(t, before, positions(asm))
			for _, c := range asm.Cubelets() {
				assert.True(t, c.Node.Rotation.OrientationEqualThreshold(mgl64.QuatIdent(), 1e-12), "cubelet %d", c.Index)
			}
			assert.True(t, asm.IsSolved())
		})
	}
}

func TestRotate_OrderFour(t *testing.T) {
	for _, m := range notation.All() {
		t.Run(m.Notation(), func(t *testing.T) {
			e, asm := newTestEngine(t)
			before := positions(asm)

			apply(t, e, m, m, m)
			assert.False(t, asm.IsSolved())
			apply(t, e, m)

			assert.Equal(t, before, positions(asm))
			assert.True(t, asm.IsSolved(), asm.String())
		})
	}
}

func TestRotate_LatticeClosure(t *testing.T) {
	e, asm := newTestEngine(t)
	rng := notation.NewRand(7)

	for i := 0; i < 60; i++ {
		apply(t, e, notation.Random(rng))
		assertOnLattice(t, asm)
	}
}

func TestRotate_DisjointDuringRotation(t *testing.T) {
	e, asm := newTestEngine(t)

	_, err := e.Submit(mustMove(t, "F"))
	require.NoError(t, err)
	require.True(t, e.Advance())

	group := e.ActiveGroup()
	require.NotNil(t, group)
	assert.Equal(t, Rotating, e.State())
	assert.Len(t, group.Children(), 9)
	assert.Len(t, asm.Root.Children(), 19)

	inGroup := 0
	for _, c := range asm.Cubelets() {
		switch c.Node.Parent() {
		case group:
			inGroup++
			assert.True(t, c.Layers().Has(lattice.Front))
		case asm.Root:
			assert.False(t, c.Layers().Has(lattice.Front))
		default:
			t.Fatalf("cubelet %d has unexpected parent", c.Index)
		}
	}
	assert.Equal(t, 9, inGroup)

	move, progress, ok := e.Progress()
	assert.True(t, ok)
	assert.Equal(t, "F", move.Notation())
	assert.Greater(t, progress, 0.0)

	require.NoError(t, e.Drain(context.Background(), &ManualClock{}, nil))
	assert.Nil(t, e.ActiveGroup())
	assert.Nil(t, group.Parent())
	assert.Len(t, asm.Root.Children(), 27)
	assert.Equal(t, Idle, e.State())
	assert.Equal(t, 1, e.Completed())
}

func TestRotate_DriftRegression(t *testing.T) {
	for _, snap := range []bool{true, false} {
		name := "snap"
		if !snap {
			name = "nosnap"
		}
		t.Run(name, func(t *testing.T) {
			e, asm := newTestEngine(t, func(c *Config) { c.SnapOrientation = snap })

			moves := notation.RandomSequence(notation.NewRand(2024), 200)
			apply(t, e, moves...)
			assertOnLattice(t, asm)

			d := asm.Drift()
			assert.Zero(t, d.Position)
			if snap {
				assert.Less(t, d.Orientation, 1e-12)
			} else {
				assert.Less(t, d.Orientation, 1e-9)
			}

			for i := len(moves) - 1; i >= 0; i-- {
				apply(t, e, moves[i].Inverse())
			}
			assert.True(t, asm.IsSolved(), asm.String())
		})
	}
}

func TestRotate_NetsGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for name, seq := range map[string]string{
		"u":         "U",
		"u_prime":   "U'",
		"sexy_move": "R U R' U'",
	} {
		t.Run(name, func(t *testing.T) {
			e, asm := newTestEngine(t)
			applySeq(t, e, seq)
			g.Assert(t, name, []byte(asm.String()))
		})
	}
}

func TestSubmit_InvalidMove(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.Submit(notation.Move{Face: "X", Direction: notation.Clockwise})
	assert.ErrorIs(t, err, notation.ErrInvalidNotation)

	_, err = e.SubmitNotation("U2")
	assert.ErrorIs(t, err, notation.ErrInvalidNotation)

	assert.False(t, e.Busy())
}

func TestSubmit_RejectPolicy(t *testing.T) {
	e, _ := newTestEngine(t, func(c *Config) { c.Policy = PolicyReject })

	_, err := e.SubmitNotation("U")
	require.NoError(t, err)

	_, err = e.SubmitNotation("R")
	assert.ErrorIs(t, err, ErrRotationInFlight)

	e.Advance()
	_, err = e.SubmitNotation("R")
	assert.ErrorIs(t, err, ErrRotationInFlight)

	require.NoError(t, e.Drain(context.Background(), &ManualClock{}, nil))
	_, err = e.SubmitNotation("R")
	assert.NoError(t, err)
}

func TestSubmit_QueueFull(t *testing.T) {
	e, _ := newTestEngine(t, func(c *Config) { c.QueueCapacity = 2 })

	for _, s := range []string{"U", "D"} {
		_, err := e.SubmitNotation(s)
		require.NoError(t, err)
	}
	_, err := e.SubmitNotation("L")
	assert.ErrorIs(t, err, ErrQueueFull)

	// starting a rotation frees a queue slot
	e.Advance()
	assert.Equal(t, 1, e.Pending())
	_, err = e.SubmitNotation("L")
	assert.NoError(t, err)
}

func TestQueue_FIFO(t *testing.T) {
	e, _ := newTestEngine(t)

	var order []string
	e.OnComplete(func(res Result, err error) {
		require.NoError(t, err)
		order = append(order, res.Move.Notation())
	})

	var reqs []*Request
	for _, s := range []string{"R", "U", "F'", "B"} {
		req, err := e.SubmitNotation(s)
		require.NoError(t, err)
		reqs = append(reqs, req)
	}

	_, err := reqs[0].Result()
	assert.ErrorIs(t, err, ErrPending)

	clock := &ManualClock{}
	require.NoError(t, e.Drain(context.Background(), clock, nil))

	assert.Equal(t, []string{"R", "U", "F'", "B"}, order)
	assert.Equal(t, int64(4*32), clock.Frames())
	for _, req := range reqs {
		res, err := req.Wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, req.ID, res.ID)
	}
}

func TestRotate_ContextCancelled(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Rotate(ctx, mustMove(t, "U"), &ManualClock{}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRotate_OnFrameCalledPerFrame(t *testing.T) {
	e, _ := newTestEngine(t, func(c *Config) { c.Speed = 0.5 })

	frames := 0
	_, err := e.Rotate(context.Background(), mustMove(t, "R"), &ManualClock{}, func() { frames++ })
	require.NoError(t, err)
	assert.Equal(t, 4, frames)
}

// perturb knocks a Down-layer corner off its plane while an Up rotation is
// in flight, so the post-rotation classification fails.
func perturb(t *testing.T, e *Engine, asm *cube.Assembly) *cube.Cubelet {
	t.Helper()
	_, err := e.SubmitNotation("U")
	require.NoError(t, err)
	e.Advance()

	c := asm.Cubelet(20)
	require.Equal(t, mgl64.Vec3{3, -3, 3}, c.Node.Position)
	c.Node.Position = mgl64.Vec3{3, -3, 2.2}
	return c
}

func TestLatticeInconsistency_Heals(t *testing.T) {
	e, asm := newTestEngine(t)
	c := perturb(t, e, asm)

	var gotErr error
	e.OnComplete(func(_ Result, err error) { gotErr = err })
	require.NoError(t, e.Drain(context.Background(), &ManualClock{}, nil))

	assert.NoError(t, gotErr)
	assert.Equal(t, mgl64.Vec3{3, -3, 3}, c.Node.Position)
	assert.NoError(t, asm.Verify())
}

func TestLatticeInconsistency_Strict(t *testing.T) {
	e, asm := newTestEngine(t, func(c *Config) { c.Strict = true })
	perturb(t, e, asm)

	var gotErr error
	e.OnComplete(func(_ Result, err error) { gotErr = err })
	require.NoError(t, e.Drain(context.Background(), &ManualClock{}, nil))

	assert.ErrorIs(t, gotErr, cube.ErrLatticeInconsistency)
	assert.Equal(t, Idle, e.State())
	assert.Nil(t, e.ActiveGroup())
}

func TestWithAssembly_RefusesWhileBusy(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.SubmitNotation("U")
	require.NoError(t, err)

	called := false
	err = e.WithAssembly(func(*cube.Assembly) error { called = true; return nil })
	assert.ErrorIs(t, err, ErrRotationInFlight)
	assert.False(t, called)

	require.NoError(t, e.Drain(context.Background(), &ManualClock{}, nil))
	require.NoError(t, e.WithAssembly(func(a *cube.Assembly) error {
		called = true
		return a.Verify()
	}))
	assert.True(t, called)
}

func TestNew_ClampsConfig(t *testing.T) {
	e := New(cube.Build(cube.DefaultConfig()), Config{Speed: 10, QueueCapacity: -3, Logger: quietLogger()})
	assert.Equal(t, MaxSpeed, e.Config().Speed)
	assert.Equal(t, 1, e.Config().QueueCapacity)
}
