// Package notation parses and formats face-turn notation.
//
// The grammar is a single face letter from UDLRFB optionally followed by a
// prime ('), which marks a counter-clockwise quarter turn. Anything else is
// rejected.
package notation

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrInvalidNotation is returned for a symbol outside the grammar.
var ErrInvalidNotation = errors.New("notation: invalid move notation")

// Face represents a cube face in standard notation.
type Face string

const (
	FaceU Face = "U" // Up
	FaceD Face = "D" // Down
	FaceL Face = "L" // Left
	FaceR Face = "R" // Right
	FaceF Face = "F" // Front
	FaceB Face = "B" // Back
)

// Faces lists the six faces in notation order.
var Faces = [6]Face{FaceU, FaceD, FaceL, FaceR, FaceF, FaceB}

// Valid reports whether f is one of the six faces.
func (f Face) Valid() bool {
	switch f {
	case FaceU, FaceD, FaceL, FaceR, FaceF, FaceB:
		return true
	}
	return false
}

// Name returns the long lowercase name of the face.
func (f Face) Name() string {
	switch f {
	case FaceU:
		return "up"
	case FaceD:
		return "down"
	case FaceL:
		return "left"
	case FaceR:
		return "right"
	case FaceF:
		return "front"
	case FaceB:
		return "back"
	default:
		return "unknown"
	}
}

// Direction is the sense of a quarter turn.
type Direction int

const (
	Clockwise        Direction = 1
	CounterClockwise Direction = -1
)

// Sign returns +1 for clockwise and -1 for counter-clockwise.
func (d Direction) Sign() float64 {
	if d == CounterClockwise {
		return -1
	}
	return 1
}

func (d Direction) String() string {
	if d == CounterClockwise {
		return "counter-clockwise"
	}
	return "clockwise"
}

// Move is a single quarter turn of one face layer.
type Move struct {
	Face      Face      `json:"face"`
	Direction Direction `json:"direction"`
}

// Notation returns the standard notation string for this move.
// Examples: U, U', R, R'
func (m Move) Notation() string {
	if m.Direction == CounterClockwise {
		return string(m.Face) + "'"
	}
	return string(m.Face)
}

// String returns the notation string (alias for Notation).
func (m Move) String() string {
	return m.Notation()
}

// Inverse returns the inverse of this move. U becomes U', U' becomes U.
func (m Move) Inverse() Move {
	inv := m
	if m.Direction == CounterClockwise {
		inv.Direction = Clockwise
	} else {
		inv.Direction = CounterClockwise
	}
	return inv
}

// Valid reports whether the move has a known face and direction.
func (m Move) Valid() bool {
	return m.Face.Valid() && (m.Direction == Clockwise || m.Direction == CounterClockwise)
}

// Describe returns a human-readable description, e.g. "Up layer clockwise".
func (m Move) Describe() string {
	// Casers carry state and are not shared across goroutines.
	return cases.Title(language.English).String(m.Face.Name()) + " layer " + m.Direction.String()
}

// Parse parses a single notation symbol. Surrounding whitespace is ignored;
// lowercase letters, half turns and any other suffix are rejected.
func Parse(s string) (Move, error) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 2 {
		return Move{}, fmt.Errorf("%w: %q", ErrInvalidNotation, s)
	}

	face := Face(s[:1])
	if !face.Valid() {
		return Move{}, fmt.Errorf("%w: %q", ErrInvalidNotation, s)
	}

	dir := Clockwise
	if len(s) == 2 {
		if s[1] != '\'' {
			return Move{}, fmt.Errorf("%w: %q", ErrInvalidNotation, s)
		}
		dir = CounterClockwise
	}

	return Move{Face: face, Direction: dir}, nil
}

// ParseSequence parses a whitespace-separated sequence of moves. The first
// invalid token fails the whole sequence.
func ParseSequence(s string) ([]Move, error) {
	parts := strings.Fields(s)
	moves := make([]Move, 0, len(parts))

	for i, part := range parts {
		m, err := Parse(part)
		if err != nil {
			return nil, fmt.Errorf("token %d: %w", i+1, err)
		}
		moves = append(moves, m)
	}

	return moves, nil
}

// Format formats moves as a space-separated string.
func Format(moves []Move) string {
	if len(moves) == 0 {
		return ""
	}

	parts := make([]string, len(moves))
	for i, m := range moves {
		parts[i] = m.Notation()
	}

	return strings.Join(parts, " ")
}

// All returns the twelve quarter-turn moves in a fixed order.
func All() []Move {
	out := make([]Move, 0, 12)
	for _, f := range Faces {
		out = append(out, Move{Face: f, Direction: Clockwise}, Move{Face: f, Direction: CounterClockwise})
	}
	return out
}

// NewRand returns a deterministic generator for the given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Random draws one of the twelve moves uniformly.
func Random(rng *rand.Rand) Move {
	all := All()
	if rng == nil {
		return all[rand.IntN(len(all))]
	}
	return all[rng.IntN(len(all))]
}

// RandomSequence draws n moves uniformly.
func RandomSequence(rng *rand.Rand, n int) []Move {
	out := make([]Move, n)
	for i := range out {
		out[i] = Random(rng)
	}
	return out
}
