package lattice

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_Canonical(t *testing.T) {
	c := DefaultClassifier()

	tests := []struct {
		name string
		p    mgl64.Vec3
		want Set
	}{
		{"center", mgl64.Vec3{0, 0, 0}, 0},
		{"up center", mgl64.Vec3{0, 3, 0}, Set(0).With(Up)},
		{"front-up edge", mgl64.Vec3{0, 3, 3}, Set(0).With(Up).With(Front)},
		{"right-down-back corner", mgl64.Vec3{3, -3, -3}, Set(0).With(Right).With(Down).With(Back)},
		{"left-front-up corner", mgl64.Vec3{-3, 3, 3}, Set(0).With(Left).With(Up).With(Front)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.p))
		})
	}
}

func TestClassify_ToleratesDrift(t *testing.T) {
	c := DefaultClassifier()

	got := c.Classify(mgl64.Vec3{2.5, -0.4, 3.69})
	assert.True(t, got.Has(Right))
	assert.True(t, got.Has(Front))
	assert.Equal(t, 2, got.Count())

	assert.Equal(t, Set(0), c.Classify(mgl64.Vec3{1.5, 1.5, -1.5}))
}

func TestClassify_Boundary(t *testing.T) {
	c := DefaultClassifier()
	// exactly epsilon away is outside the strict inequality
	assert.False(t, c.Classify(mgl64.Vec3{3.7, 0, 0}).Has(Right))
	assert.True(t, c.Classify(mgl64.Vec3{3.69, 0, 0}).Has(Right))
}

func TestSetLayersAndString(t *testing.T) {
	s := Set(0).With(Front).With(Up).With(Right)
	assert.Equal(t, []Layer{Up, Right, Front}, s.Layers())
	assert.Equal(t, "URF", s.String())
	assert.Equal(t, "-", Set(0).String())
}

func TestSnap(t *testing.T) {
	c := DefaultClassifier()
	assert.Equal(t, mgl64.Vec3{3, 0, -3}, c.Snap(mgl64.Vec3{2.9999999, -0.0000001, -3.0000002}))
	assert.InDelta(t, 0.1, c.Residual(mgl64.Vec3{3.1, 0, 0}), 1e-12)
}

func TestCoordRoundTrip(t *testing.T) {
	c := DefaultClassifier()
	for x := -1; x <= 1; x++ {
		for y := -1; y <= 1; y++ {
			for z := -1; z <= 1; z++ {
				coord := Coord{x, y, z}
				assert.Equal(t, coord, c.Coord(c.Position(coord)))
			}
		}
	}
}

func TestNewClassifier_Validation(t *testing.T) {
	_, err := NewClassifier(3, 1.5)
	require.ErrorIs(t, err, ErrInvalidClassifier)

	_, err = NewClassifier(0, 0.1)
	require.ErrorIs(t, err, ErrInvalidClassifier)

	c, err := NewClassifier(3, 0.7)
	require.NoError(t, err)
	assert.Equal(t, DefaultClassifier(), c)
}

func TestLayerGeometry(t *testing.T) {
	for _, l := range Layers {
		n := l.Normal()
		assert.InDelta(t, 1.0, n.Len(), 1e-15, l.String())
		assert.Equal(t, l, LayerFor(l.Axis(), l.Sign()))
	}
	assert.Equal(t, mgl64.Vec3{0, 1, 0}, Up.Normal())
	assert.Equal(t, mgl64.Vec3{-1, 0, 0}, Left.Normal())
	assert.Equal(t, mgl64.Vec3{0, 0, -1}, Back.Normal())
}
