package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/SeamusWaldron/cubeanim"
	"github.com/SeamusWaldron/cubeanim/internal/cube"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	activeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	moveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// stickerColors maps sticker colors to terminal background colors.
var stickerColors = map[cube.Color]lipgloss.Color{
	cube.White:  lipgloss.Color("255"),
	cube.Yellow: lipgloss.Color("226"),
	cube.Green:  lipgloss.Color("34"),
	cube.Blue:   lipgloss.Color("27"),
	cube.Red:    lipgloss.Color("160"),
	cube.Orange: lipgloss.Color("208"),
}

func sticker(c cube.Color) string {
	return lipgloss.NewStyle().
		Background(stickerColors[c]).
		Foreground(lipgloss.Color("0")).
		Render(" " + c.String() + " ")
}

// renderNet draws the unfolded cube with colored stickers.
func renderNet(f cubeanim.Facelets) string {
	var b strings.Builder
	blank := strings.Repeat(" ", 9)

	writeRow := func(face cubeanim.Layer, row int) {
		for col := 0; col < 3; col++ {
			b.WriteString(sticker(f[face][row*3+col]))
		}
	}

	for row := 0; row < 3; row++ {
		b.WriteString(blank)
		writeRow(cubeanim.LayerUp, row)
		b.WriteString("\n")
	}
	for row := 0; row < 3; row++ {
		for _, face := range []cubeanim.Layer{cubeanim.LayerLeft, cubeanim.LayerFront, cubeanim.LayerRight, cubeanim.LayerBack} {
			writeRow(face, row)
		}
		b.WriteString("\n")
	}
	for row := 0; row < 3; row++ {
		b.WriteString(blank)
		writeRow(cubeanim.LayerDown, row)
		b.WriteString("\n")
	}
	return b.String()
}

// progressBar renders p in [0, 1] as a fixed-width bar.
func progressBar(p float64, width int) string {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	filled := int(p*float64(width) + 0.5)
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}

// formatLayers lists the cubelet indices of every layer.
func formatLayers(layers [6][]int) string {
	var b strings.Builder
	for l, ids := range layers {
		fmt.Fprintf(&b, "%-6s %v\n", cubeanim.Layer(l).Name(), ids)
	}
	return b.String()
}
