package engine

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/SeamusWaldron/cubeanim/internal/cube"
	"github.com/SeamusWaldron/cubeanim/internal/lattice"
)

type scenarioFile struct {
	Scenarios []scenario `yaml:"scenarios"`
}

type scenario struct {
	Name   string `yaml:"name"`
	Moves  string `yaml:"moves"`
	Solved bool   `yaml:"solved"`
	// Facelets maps a lowercase layer name to its nine stickers in
	// facelet order.
	Facelets map[string]string `yaml:"facelets,omitempty"`
}

func loadScenarios(t *testing.T, path string) []scenario {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var f scenarioFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	require.NoError(t, decoder.Decode(&f))
	require.NotEmpty(t, f.Scenarios)
	return f.Scenarios
}

func faceString(face [9]cube.Color) string {
	var b strings.Builder
	for _, c := range face {
		b.WriteString(c.String())
	}
	return b.String()
}

func TestScenarios(t *testing.T) {
	byName := make(map[string]lattice.Layer)
	for _, l := range lattice.Layers {
		byName[l.Name()] = l
	}

	for _, sc := range loadScenarios(t, "testdata/scenarios.yaml") {
		t.Run(sc.Name, func(t *testing.T) {
			e, asm := newTestEngine(t)
			applySeq(t, e, sc.Moves)

			assertOnLattice(t, asm)
			assert.Equal(t, sc.Solved, asm.IsSolved(), asm.String())

			facelets := asm.Facelets()
			for name, want := range sc.Facelets {
				l, ok := byName[name]
				require.True(t, ok, "unknown layer %q", name)
				assert.Equal(t, want, faceString(facelets[l]), name)
			}
		})
	}
}
