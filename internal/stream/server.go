package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/SeamusWaldron/cubeanim"
)

// Idle bob parameters: the assembly floats up and down along y.
const (
	BobAmplitude = 0.5
	// BobSpeed is in radians per millisecond.
	BobSpeed = 0.002
)

// Config configures a Server.
type Config struct {
	Addr string
	FPS  int
	// Bob floats the whole assembly while it animates.
	Bob bool
	// AutoInterval submits a random move whenever the cube has been idle
	// this long. Zero disables it.
	AutoInterval time.Duration
	Seed         uint64
	// Clock paces frames. Nil uses a TickerClock at FPS.
	Clock  cubeanim.Clock
	Logger *slog.Logger
}

// Server runs the cube's frame loop and streams every frame.
type Server struct {
	cube   *cubeanim.Cube
	cfg    Config
	hub    *Hub
	logger *slog.Logger
	rng    *rand.Rand

	frame    uint64
	lastBusy time.Time
}

// NewServer creates a server animating c.
func NewServer(c *cubeanim.Cube, cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.FPS <= 0 {
		cfg.FPS = 60
	}
	s := &Server{
		cube:   c,
		cfg:    cfg,
		logger: cfg.Logger,
		rng:    cubeanim.NewRand(cfg.Seed),
	}
	s.hub = NewHub(c, cfg.Logger, s.hello)

	c.OnRotation(func(res cubeanim.Result, err error) {
		msg := RotationMessage{
			Type:             TypeRotation,
			ID:               res.ID.String(),
			Move:             res.Move.Notation(),
			Frames:           res.Frames,
			PositionDrift:    res.PositionDrift,
			OrientationDrift: res.OrientationDrift,
		}
		if err != nil {
			msg.Error = err.Error()
		}
		s.hub.Broadcast(msg)
	})
	return s
}

// Hub returns the subscriber hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) hello(clientID string) HelloMessage {
	msg := HelloMessage{
		Type:     TypeHello,
		ClientID: clientID,
		Colors:   make([][6]string, 27),
		FPS:      s.cfg.FPS,
	}
	for i := range msg.Colors {
		p, _ := s.cube.Colors(i)
		for face, color := range p {
			msg.Colors[i][face] = color.Name()
		}
	}
	msg.Size = s.cube.CubeletSize()
	return msg
}

// Handler returns the HTTP routes: /ws, /schema and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.hub.Handle)
	mux.HandleFunc("/schema", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/schema+json")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(Schema()); err != nil {
			s.logger.Error("failed to write schema", "error", err)
		}
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":      "ok",
			"subscribers": s.hub.Count(),
			"busy":        s.cube.Busy(),
			"completed":   s.cube.Completed(),
		})
	})
	return mux
}

// Tick runs one frame at now: bob, auto move, advance and broadcast.
func (s *Server) Tick(now time.Time) FrameMessage {
	if s.cfg.Bob {
		y := math.Sin(float64(now.UnixMilli())*BobSpeed) * BobAmplitude
		s.cube.SetRootTransform(mgl64.Vec3{0, y, 0}, mgl64.QuatIdent())
	}

	if s.cube.Busy() || s.lastBusy.IsZero() {
		s.lastBusy = now
	} else if s.cfg.AutoInterval > 0 && now.Sub(s.lastBusy) >= s.cfg.AutoInterval {
		m := cubeanim.RandomMove(s.rng)
		if _, err := s.cube.Submit(m); err != nil {
			s.logger.Warn("auto move refused", "move", m.Notation(), "error", err)
		}
		s.lastBusy = now
	}

	s.cube.Advance()
	s.frame++

	msg := FrameMessage{
		Type:     TypeFrame,
		Frame:    s.frame,
		Time:     now.UnixMilli(),
		Cubelets: s.cube.Transforms(),
		Pending:  s.cube.Pending(),
		Solved:   s.cube.IsSolved(),
	}
	if m, p, ok := s.cube.Progress(); ok {
		msg.Active = &ActiveRotation{Move: m.Notation(), Progress: p}
	}
	s.hub.Broadcast(msg)
	return msg
}

// Run serves HTTP on cfg.Addr and drives frames from cfg.Clock until ctx is
// done.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	go func() {
		s.logger.Info("stream listening", "addr", s.cfg.Addr, "fps", s.cfg.FPS)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cancel(fmt.Errorf("failed to serve: %w", err))
		}
	}()

	clock := s.cfg.Clock
	if clock == nil {
		tc := cubeanim.NewTickerClock(s.cfg.FPS)
		defer tc.Stop()
		clock = tc
	}

	for clock.Wait(ctx) == nil {
		s.Tick(time.Now())
	}

	s.hub.Close()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 2*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}

	if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) && !errors.Is(cause, context.DeadlineExceeded) {
		return cause
	}
	return nil
}
