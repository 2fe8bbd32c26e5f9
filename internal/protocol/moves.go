package protocol

import (
	"fmt"

	"github.com/SeamusWaldron/cubeanim/internal/notation"
)

// colorFace maps the center color of a turned face to its notation letter,
// with white up and green front.
var colorFace = map[string]notation.Face{
	"white":  notation.FaceU,
	"yellow": notation.FaceD,
	"green":  notation.FaceF,
	"blue":   notation.FaceB,
	"red":    notation.FaceR,
	"orange": notation.FaceL,
}

// PhysicalMove returns the move as a person holding the cube would name it.
func PhysicalMove(r Rotation) (notation.Move, error) {
	face, ok := colorFace[r.Color]
	if !ok {
		return notation.Move{}, fmt.Errorf("%w: color %q", ErrInvalidPayload, r.Color)
	}
	dir := notation.CounterClockwise
	if r.Clockwise {
		dir = notation.Clockwise
	}
	return notation.Move{Face: face, Direction: dir}, nil
}

// EngineMove maps a physical move onto the animation engine's convention,
// where clockwise is a positive right-handed turn about +x, +y or +z. On
// the U, R and F faces that is the physical counter-clockwise turn; D, L and
// B agree with physical notation.
func EngineMove(physical notation.Move) notation.Move {
	switch physical.Face {
	case notation.FaceU, notation.FaceR, notation.FaceF:
		return physical.Inverse()
	default:
		return physical
	}
}

// RotationMoves decodes a rotation message into engine moves.
func RotationMoves(msg *Message) ([]notation.Move, error) {
	if msg.Type != MsgTypeRotation {
		return nil, fmt.Errorf("%w: message type %s is not a rotation", ErrInvalidPayload, msg.TypeName())
	}
	rots, err := DecodeRotation(msg.Payload)
	if err != nil {
		return nil, err
	}

	out := make([]notation.Move, 0, len(rots))
	for _, r := range rots {
		m, err := PhysicalMove(r)
		if err != nil {
			return nil, err
		}
		out = append(out, EngineMove(m))
	}
	return out, nil
}
