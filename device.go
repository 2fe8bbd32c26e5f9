package cubeanim

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/SeamusWaldron/cubeanim/internal/ble"
	"github.com/SeamusWaldron/cubeanim/internal/protocol"
)

// Device is a GoCube found by Scan.
type Device = ble.ScanResult

// Orientation is the physical orientation reported by a GoCube.
type Orientation = protocol.Orientation

// Scan discovers nearby GoCube devices.
//
// Ensure the cube is not connected to another host (e.g., the phone app).
func Scan(ctx context.Context, timeout time.Duration, logger *slog.Logger) ([]Device, error) {
	client, err := ble.NewClient(logger)
	if err != nil {
		return nil, err
	}
	return client.Scan(ctx, timeout)
}

// Mirror replays the turns of a physical GoCube onto a Cube. Physical moves
// are translated to the engine's sign convention before submission.
//
//	m, err := cubeanim.ConnectMirror(ctx, device, c, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer m.Close()
//	c.Run(ctx, cubeanim.NewTickerClock(60), render)
type Mirror struct {
	client *ble.Client
	cube   *Cube
	logger *slog.Logger

	mu                sync.RWMutex
	followOrientation bool
	dropped           int
	onMove            func(Move)
	onOrientation     func(Orientation)
	onBattery         func(int)
}

// ConnectMirror connects to device and starts mirroring its turns onto c.
// It gives up with ctx.Err() once ctx is done.
func ConnectMirror(ctx context.Context, device Device, c *Cube, logger *slog.Logger) (*Mirror, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	client, err := ble.NewClient(logger)
	if err != nil {
		return nil, err
	}
	if err := client.ConnectToContext(ctx, device); err != nil {
		return nil, err
	}

	m := newMirror(client, c, logger)
	client.SetMessageCallback(m.handleMessage)
	if err := client.SendCommand(protocol.CmdEnableOrientation); err != nil {
		logger.Warn("enable orientation failed", "error", err)
	}
	return m, nil
}

// ConnectFirstMirror scans for ten seconds and mirrors the first GoCube
// found.
func ConnectFirstMirror(ctx context.Context, c *Cube, logger *slog.Logger) (*Mirror, error) {
	devices, err := Scan(ctx, 10*time.Second, logger)
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, ErrDeviceNotFound
	}
	return ConnectMirror(ctx, devices[0], c, logger)
}

func newMirror(client *ble.Client, c *Cube, logger *slog.Logger) *Mirror {
	return &Mirror{
		client: client,
		cube:   c,
		logger: logger,
	}
}

// Close disconnects from the device.
func (m *Mirror) Close() error {
	return m.client.Disconnect()
}

// DeviceName returns the connected device name.
func (m *Mirror) DeviceName() string {
	return m.client.DeviceName()
}

// Battery returns the last known battery level (0-100), or -1 if unknown.
func (m *Mirror) Battery() int {
	return m.client.Battery()
}

// FlashBacklight flashes the cube backlight.
func (m *Mirror) FlashBacklight() error {
	return m.client.FlashBacklight()
}

// FollowOrientation makes the assembly root track the physical cube's
// orientation sensor.
func (m *Mirror) FollowOrientation(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.followOrientation = enabled
}

// Dropped returns the number of moves the engine refused.
func (m *Mirror) Dropped() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dropped
}

// OnMove sets a callback for every engine move submitted.
func (m *Mirror) OnMove(cb func(Move)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onMove = cb
}

// OnOrientation sets a callback for orientation updates.
func (m *Mirror) OnOrientation(cb func(Orientation)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onOrientation = cb
}

// OnBattery sets a callback for battery level updates.
func (m *Mirror) OnBattery(cb func(int)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onBattery = cb
}

func (m *Mirror) handleMessage(msg *protocol.Message) {
	switch msg.Type {
	case protocol.MsgTypeRotation:
		m.handleRotation(msg)
	case protocol.MsgTypeOrientation:
		m.handleOrientation(msg)
	case protocol.MsgTypeBattery:
		m.handleBattery(msg)
	}
}

func (m *Mirror) handleRotation(msg *protocol.Message) {
	moves, err := protocol.RotationMoves(msg)
	if err != nil {
		m.logger.Debug("dropping rotation message", "error", err)
		return
	}

	for _, mv := range moves {
		if _, err := m.cube.Submit(mv); err != nil {
			m.logger.Warn("mirror move refused", "move", mv.Notation(), "error", err)
			m.mu.Lock()
			m.dropped++
			m.mu.Unlock()
			continue
		}

		m.mu.RLock()
		cb := m.onMove
		m.mu.RUnlock()
		if cb != nil {
			cb(mv)
		}
	}
}

func (m *Mirror) handleOrientation(msg *protocol.Message) {
	o, err := protocol.DecodeOrientation(msg.Payload)
	if err != nil {
		m.logger.Debug("dropping orientation message", "error", err)
		return
	}

	m.mu.RLock()
	follow := m.followOrientation
	cb := m.onOrientation
	m.mu.RUnlock()

	if follow {
		m.cube.SetRootTransform(mgl64.Vec3{}, o.Quat)
	}
	if cb != nil {
		cb(o)
	}
}

func (m *Mirror) handleBattery(msg *protocol.Message) {
	level, err := protocol.DecodeBattery(msg.Payload)
	if err != nil {
		return
	}

	m.mu.RLock()
	cb := m.onBattery
	m.mu.RUnlock()
	if cb != nil {
		cb(level)
	}
}
