package cube

import (
	"strings"

	"github.com/SeamusWaldron/cubeanim/internal/lattice"
)

// Facelets is the sticker map of the assembly. Each face is indexed as seen
// from outside the cube:
//
//	0 1 2
//	3 4 5
//	6 7 8
//
// Up is viewed with Front at the bottom, Down with Front at the top and the
// four sides with Up at the top.
type Facelets [6][9]Color

// Facelets returns the sticker map computed at the latest classification.
func (a *Assembly) Facelets() Facelets {
	return a.facelets
}

// IsSolved reports whether every face shows a single color.
func (a *Assembly) IsSolved() bool {
	for _, l := range lattice.Layers {
		face := a.facelets[l]
		for i := 1; i < 9; i++ {
			if face[i] != face[0] {
				return false
			}
		}
	}
	return true
}

func (a *Assembly) computeFacelets() Facelets {
	var f Facelets
	for _, l := range lattice.Layers {
		normal := l.Normal()
		for _, c := range a.layers[l] {
			coord := a.classifier.Coord(a.LocalPosition(c))
			q := a.LocalOrientation(c)

			// find the cubelet face now pointing along the layer normal
			color := c.Colors[l]
			for _, k := range lattice.Layers {
				if q.Rotate(k.Normal()).Dot(normal) > 0.5 {
					color = c.Colors[k]
					break
				}
			}
			f[l][faceletIndex(l, coord)] = color
		}
	}
	return f
}

func faceletIndex(l lattice.Layer, c lattice.Coord) int {
	x, y, z := c[0], c[1], c[2]
	var row, col int
	switch l {
	case lattice.Up:
		row, col = z+1, x+1
	case lattice.Down:
		row, col = 1-z, x+1
	case lattice.Front:
		row, col = 1-y, x+1
	case lattice.Back:
		row, col = 1-y, 1-x
	case lattice.Right:
		row, col = 1-y, 1-z
	case lattice.Left:
		row, col = 1-y, z+1
	}
	return row*3 + col
}

// String returns the sticker map as an unfolded net.
func (f Facelets) String() string {
	var b strings.Builder

	// U face (indented)
	for row := 0; row < 3; row++ {
		b.WriteString("      ")
		for col := 0; col < 3; col++ {
			b.WriteString(f[lattice.Up][row*3+col].String() + " ")
		}
		b.WriteString("\n")
	}

	// L, F, R, B faces (side by side)
	for row := 0; row < 3; row++ {
		for _, face := range []lattice.Layer{lattice.Left, lattice.Front, lattice.Right, lattice.Back} {
			for col := 0; col < 3; col++ {
				b.WriteString(f[face][row*3+col].String() + " ")
			}
		}
		b.WriteString("\n")
	}

	// D face (indented)
	for row := 0; row < 3; row++ {
		b.WriteString("      ")
		for col := 0; col < 3; col++ {
			b.WriteString(f[lattice.Down][row*3+col].String() + " ")
		}
		b.WriteString("\n")
	}

	return b.String()
}

// String returns the current sticker map as an unfolded net.
func (a *Assembly) String() string {
	return a.facelets.String()
}
