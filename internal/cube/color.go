package cube

import "github.com/SeamusWaldron/cubeanim/internal/lattice"

// Color represents a sticker color.
type Color byte

const (
	White Color = iota
	Yellow
	Green
	Blue
	Red
	Orange
)

func (c Color) String() string {
	switch c {
	case White:
		return "W"
	case Yellow:
		return "Y"
	case Green:
		return "G"
	case Blue:
		return "B"
	case Red:
		return "R"
	case Orange:
		return "O"
	default:
		return "?"
	}
}

// Name returns the lowercase color name.
func (c Color) Name() string {
	switch c {
	case White:
		return "white"
	case Yellow:
		return "yellow"
	case Green:
		return "green"
	case Blue:
		return "blue"
	case Red:
		return "red"
	case Orange:
		return "orange"
	default:
		return "unknown"
	}
}

// Palette assigns a color to each outward face direction, indexed by
// lattice.Layer.
type Palette [6]Color

// ClassicPalette is the usual scheme: white up, green front.
var ClassicPalette = Palette{
	lattice.Up:    White,
	lattice.Down:  Yellow,
	lattice.Left:  Orange,
	lattice.Right: Red,
	lattice.Front: Green,
	lattice.Back:  Blue,
}

// HeroPalette is the landing-page scheme: green up, yellow front.
var HeroPalette = Palette{
	lattice.Up:    Green,
	lattice.Down:  Blue,
	lattice.Left:  Orange,
	lattice.Right: Red,
	lattice.Front: Yellow,
	lattice.Back:  White,
}

// PaletteByName resolves "classic" or "hero".
func PaletteByName(name string) (Palette, bool) {
	switch name {
	case "classic", "":
		return ClassicPalette, true
	case "hero":
		return HeroPalette, true
	default:
		return Palette{}, false
	}
}
