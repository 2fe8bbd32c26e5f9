package cubeanim

import (
	"math/rand/v2"

	"github.com/SeamusWaldron/cubeanim/internal/notation"
)

// Face represents a cube face in standard notation.
type Face = notation.Face

const (
	FaceU = notation.FaceU
	FaceD = notation.FaceD
	FaceL = notation.FaceL
	FaceR = notation.FaceR
	FaceF = notation.FaceF
	FaceB = notation.FaceB
)

// Direction is the sense of a quarter turn.
type Direction = notation.Direction

const (
	CW  = notation.Clockwise
	CCW = notation.CounterClockwise
)

// Move is a single quarter turn of one face layer.
type Move = notation.Move

// ParseMove parses a single symbol such as "U" or "R'".
// Returns an error wrapping ErrInvalidNotation if the symbol is invalid.
func ParseMove(s string) (Move, error) {
	return notation.Parse(s)
}

// ParseMoves parses a space-separated sequence. The first invalid token
// fails the whole sequence.
func ParseMoves(s string) ([]Move, error) {
	return notation.ParseSequence(s)
}

// FormatMoves formats moves as a space-separated string.
func FormatMoves(moves []Move) string {
	return notation.Format(moves)
}

// RandomMove draws one of the twelve moves uniformly. A nil rng uses the
// global source.
func RandomMove(rng *rand.Rand) Move {
	return notation.Random(rng)
}

// NewRand returns a deterministic generator for RandomMove.
func NewRand(seed uint64) *rand.Rand {
	return notation.NewRand(seed)
}
