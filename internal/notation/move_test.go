package notation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Move
	}{
		{"U", Move{Face: FaceU, Direction: Clockwise}},
		{"U'", Move{Face: FaceU, Direction: CounterClockwise}},
		{" B' ", Move{Face: FaceB, Direction: CounterClockwise}},
		{"L", Move{Face: FaceL, Direction: Clockwise}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Rejects(t *testing.T) {
	for _, in := range []string{"", "X", "u", "U2", "U''", "U`", "M", "R'x"} {
		_, err := Parse(in)
		assert.ErrorIs(t, err, ErrInvalidNotation, "input %q", in)
	}
}

func TestParseSequence(t *testing.T) {
	moves, err := ParseSequence("R U R' U'")
	require.NoError(t, err)
	assert.Equal(t, "R U R' U'", Format(moves))

	_, err = ParseSequence("R U Q")
	assert.ErrorIs(t, err, ErrInvalidNotation)

	moves, err = ParseSequence("   ")
	require.NoError(t, err)
	assert.Empty(t, moves)
}

func TestInverse(t *testing.T) {
	for _, m := range All() {
		assert.NotEqual(t, m, m.Inverse())
		assert.Equal(t, m, m.Inverse().Inverse())
	}
}

func TestAll(t *testing.T) {
	all := All()
	require.Len(t, all, 12)

	seen := make(map[string]bool)
	for _, m := range all {
		assert.True(t, m.Valid())
		seen[m.Notation()] = true
	}
	assert.Len(t, seen, 12)
}

func TestRandom_Deterministic(t *testing.T) {
	a := RandomSequence(NewRand(42), 50)
	b := RandomSequence(NewRand(42), 50)
	assert.Equal(t, a, b)

	for _, m := range a {
		assert.True(t, m.Valid())
	}
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Up layer clockwise", Move{Face: FaceU, Direction: Clockwise}.Describe())
	assert.Equal(t, "Back layer counter-clockwise", Move{Face: FaceB, Direction: CounterClockwise}.Describe())
}
