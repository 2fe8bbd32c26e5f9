package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/SeamusWaldron/cubeanim/internal/lattice"
	"github.com/SeamusWaldron/cubeanim/internal/notation"
)

// Result describes a completed rotation.
type Result struct {
	ID     uuid.UUID     `json:"id"`
	Move   notation.Move `json:"move"`
	Layer  lattice.Layer `json:"layer"`
	Frames int           `json:"frames"`
	// Angle is the snapped group angle, always a signed quarter turn.
	Angle float64 `json:"angle"`
	// PositionDrift and OrientationDrift are the largest deviations of the
	// rotated cubelets from the lattice before snapping.
	PositionDrift    float64       `json:"position_drift"`
	OrientationDrift float64       `json:"orientation_drift"`
	Duration         time.Duration `json:"duration"`
}

// Request is a submitted rotation. It completes exactly once.
type Request struct {
	ID        uuid.UUID
	Move      notation.Move
	Submitted time.Time

	done   chan struct{}
	result Result
	err    error
}

func newRequest(m notation.Move) *Request {
	return &Request{
		ID:        uuid.New(),
		Move:      m,
		Submitted: time.Now(),
		done:      make(chan struct{}),
	}
}

func (r *Request) complete(res Result, err error) {
	r.result = res
	r.err = err
	close(r.done)
}

// Done is closed when the rotation has completed or failed.
func (r *Request) Done() <-chan struct{} {
	return r.done
}

// Result returns the outcome. It is only meaningful after Done is closed.
func (r *Request) Result() (Result, error) {
	select {
	case <-r.done:
		return r.result, r.err
	default:
		return Result{}, ErrPending
	}
}

// Wait blocks until the request completes or ctx is done. Some other
// goroutine must be advancing the engine.
func (r *Request) Wait(ctx context.Context) (Result, error) {
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-r.done:
		return r.result, r.err
	}
}
