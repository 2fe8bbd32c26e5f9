package protocol

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidPayload is returned when a payload does not match its type.
var ErrInvalidPayload = errors.New("protocol: invalid payload")

// Rotation is one face turn reported by the cube.
type Rotation struct {
	Code      byte   `json:"code"`
	Center    byte   `json:"center"`
	Clockwise bool   `json:"clockwise"`
	Color     string `json:"color"`
}

// rotationColors is indexed by code/2.
var rotationColors = [6]string{"blue", "green", "white", "yellow", "red", "orange"}

// DecodeRotation decodes a rotation payload of (code, center) byte pairs.
// Even codes are clockwise, odd codes counter-clockwise.
func DecodeRotation(payload []byte) ([]Rotation, error) {
	if len(payload) == 0 || len(payload)%2 != 0 {
		return nil, fmt.Errorf("%w: rotation payload length %d", ErrInvalidPayload, len(payload))
	}

	out := make([]Rotation, 0, len(payload)/2)
	for i := 0; i+1 < len(payload); i += 2 {
		code := payload[i]
		idx := int(code / 2)
		if idx >= len(rotationColors) {
			return nil, fmt.Errorf("%w: rotation code 0x%02X", ErrInvalidPayload, code)
		}
		out = append(out, Rotation{
			Code:      code,
			Center:    payload[i+1],
			Clockwise: code%2 == 0,
			Color:     rotationColors[idx],
		})
	}
	return out, nil
}

// DecodeBattery returns the battery level in percent.
func DecodeBattery(payload []byte) (int, error) {
	if len(payload) < 1 {
		return 0, fmt.Errorf("%w: empty battery payload", ErrInvalidPayload)
	}
	return int(payload[0]), nil
}

// DecodeCubeType returns "standard" or "edge".
func DecodeCubeType(payload []byte) (string, error) {
	if len(payload) < 1 {
		return "", fmt.Errorf("%w: empty cube type payload", ErrInvalidPayload)
	}
	if payload[0] == 0x01 {
		return "edge", nil
	}
	return "standard", nil
}

// Orientation is the physical orientation reported by the cube's sensor.
type Orientation struct {
	Quat mgl64.Quat
	// Up and Front name the cube faces currently pointing up and toward the
	// viewer, in U/D/L/R/F/B letters.
	Up    string
	Front string
}

// DecodeOrientation decodes an ASCII "x#y#z#w" payload. The cube sends raw
// integers; the quaternion is normalized.
func DecodeOrientation(payload []byte) (Orientation, error) {
	parts := strings.Split(string(payload), "#")
	if len(parts) != 4 {
		return Orientation{}, fmt.Errorf("%w: orientation has %d fields", ErrInvalidPayload, len(parts))
	}

	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(leadingNumber(p), 64)
		if err != nil {
			return Orientation{}, fmt.Errorf("%w: orientation field %d: %v", ErrInvalidPayload, i, err)
		}
		v[i] = f
	}

	q := mgl64.Quat{W: v[3], V: mgl64.Vec3{v[0], v[1], v[2]}}
	if q.Len() == 0 {
		return Orientation{}, fmt.Errorf("%w: zero quaternion", ErrInvalidPayload)
	}
	q = q.Normalize()

	return Orientation{
		Quat:  q,
		Up:    faceAlong(q.Rotate(mgl64.Vec3{0, 1, 0})),
		Front: faceAlong(q.Rotate(mgl64.Vec3{0, 0, 1})),
	}, nil
}

// leadingNumber trims trailing bytes that are not part of a decimal number.
func leadingNumber(s string) string {
	end := 0
	for i, r := range s {
		if (r == '-' && i == 0) || r == '.' || (r >= '0' && r <= '9') {
			end = i + 1
			continue
		}
		break
	}
	return s[:end]
}

func faceAlong(v mgl64.Vec3) string {
	ax, ay, az := math.Abs(v[0]), math.Abs(v[1]), math.Abs(v[2])
	switch {
	case ay >= ax && ay >= az:
		if v[1] > 0 {
			return "U"
		}
		return "D"
	case az >= ax:
		if v[2] > 0 {
			return "F"
		}
		return "B"
	default:
		if v[0] > 0 {
			return "R"
		}
		return "L"
	}
}

// OfflineStats are the counters the cube keeps while disconnected.
type OfflineStats struct {
	Moves   int `json:"moves"`
	Seconds int `json:"seconds"`
	Solves  int `json:"solves"`
}

// DecodeOfflineStats decodes an ASCII "moves#seconds#solves" payload.
func DecodeOfflineStats(payload []byte) (OfflineStats, error) {
	parts := strings.Split(string(payload), "#")
	if len(parts) != 3 {
		return OfflineStats{}, fmt.Errorf("%w: offline stats has %d fields", ErrInvalidPayload, len(parts))
	}

	var n [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(leadingNumber(p))
		if err != nil {
			return OfflineStats{}, fmt.Errorf("%w: offline stats field %d: %v", ErrInvalidPayload, i, err)
		}
		n[i] = v
	}
	return OfflineStats{Moves: n[0], Seconds: n[1], Solves: n[2]}, nil
}
