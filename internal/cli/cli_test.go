package cli

import (
	"bytes"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SeamusWaldron/cubeanim"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func plain(s string) string {
	return ansi.ReplaceAllString(s, "")
}

func TestRenderNet_Solved(t *testing.T) {
	c := cubeanim.New(cubeanim.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	lines := strings.Split(strings.TrimRight(plain(renderNet(c.Facelets())), "\n"), "\n")
	require.Len(t, lines, 9)

	assert.Equal(t, strings.Repeat(" ", 9)+" W  W  W ", lines[0])
	assert.Equal(t, " O  O  O  G  G  G  R  R  R  B  B  B ", lines[4])
	assert.Equal(t, strings.Repeat(" ", 9)+" Y  Y  Y ", lines[8])
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		p    float64
		want string
	}{
		{0, "[    ]"},
		{0.5, "[==  ]"},
		{1, "[====]"},
		{-1, "[    ]"},
		{2, "[====]"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, progressBar(tt.p, 4), "p=%v", tt.p)
	}
}

func TestKeyMove(t *testing.T) {
	m, ok := keyMove("r")
	require.True(t, ok)
	assert.Equal(t, cubeanim.R, m)

	m, ok = keyMove("R")
	require.True(t, ok)
	assert.Equal(t, cubeanim.RPrime, m)

	_, ok = keyMove("x")
	assert.False(t, ok)
}

func newTestModel(t *testing.T) (*playModel, *cubeanim.Cube) {
	t.Helper()
	c := cubeanim.New(
		cubeanim.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		cubeanim.WithSpeed(math.Pi/4),
	)
	return newPlayModel(c, 60, 3*time.Second, 1), c
}

func press(m *playModel, r rune) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	return cmd
}

func TestPlayModel_KeysQueueMoves(t *testing.T) {
	m, c := newTestModel(t)

	press(m, 'u')
	press(m, 'F')
	press(m, 'z')
	assert.Equal(t, 2, c.Pending())
	assert.Equal(t, []cubeanim.Move{cubeanim.U, cubeanim.FPrime}, m.history)

	start := time.UnixMilli(0)
	for i := 0; i < 4; i++ {
		_, cmd := m.Update(frameMsg(start.Add(time.Duration(i) * time.Second / 60)))
		assert.NotNil(t, cmd, "every frame schedules the next")
	}
	assert.Equal(t, 2, c.Completed())
	require.NotNil(t, m.last)
	assert.Equal(t, cubeanim.FPrime, m.last.Move)
	assert.Contains(t, plain(m.View()), "Moves: U F'")
}

func TestPlayModel_SpaceMakesRandomMove(t *testing.T) {
	m, c := newTestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	assert.Equal(t, 1, c.Pending())
	assert.Len(t, m.history, 1)
}

func TestPlayModel_AutoMove(t *testing.T) {
	m, c := newTestModel(t)
	press(m, 'a')
	require.True(t, m.auto)

	start := time.UnixMilli(1_000_000)
	m.Update(frameMsg(start))
	m.Update(frameMsg(start.Add(2 * time.Second)))
	assert.Equal(t, 0, c.Pending())
	assert.False(t, c.Busy())

	m.Update(frameMsg(start.Add(3 * time.Second)))
	assert.True(t, c.Busy())
	assert.Len(t, m.history, 1)
}

func TestPlayModel_Reset(t *testing.T) {
	m, c := newTestModel(t)
	require.NoError(t, c.Apply(cubeanim.R))
	require.False(t, c.IsSolved())

	press(m, '0')
	assert.True(t, c.IsSolved())
	assert.Contains(t, plain(m.View()), "SOLVED")
}

func TestPlayModel_Quit(t *testing.T) {
	m, _ := newTestModel(t)
	cmd := press(m, 'q')
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.Equal(t, "Goodbye!\n", m.View())
}

// execute runs the root command with args, resetting every flag first.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return plain(out.String()), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

type testEnv struct {
	config string
	db     string
}

func newTestEnv(t *testing.T) testEnv {
	dir := t.TempDir()
	return testEnv{
		config: filepath.Join(dir, "config.yaml"),
		db:     filepath.Join(dir, "cubeanim.db"),
	}
}

func (e testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return execute(t, append(args, "--config", e.config, "--db", e.db)...)
}

func TestRunCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "run", "R U R' U'")
	require.NoError(t, err)
	assert.Contains(t, out, "Moves:   R U R' U'")
	assert.Contains(t, out, "Frames:  128")
	assert.Contains(t, out, "Lattice consistent")

	out, err = env.run(t, "run", "F F F F", "--layers")
	require.NoError(t, err)
	assert.Contains(t, out, "SOLVED")
	assert.Contains(t, out, "up")

	_, err = env.run(t, "run", "R2")
	assert.ErrorIs(t, err, cubeanim.ErrInvalidNotation)
}

func TestSnapshotCommands(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "snapshot", "save", "checker", "--moves", "R U", "--notes", "two moves")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved snapshot checker")

	_, err = env.run(t, "snapshot", "save", "checker")
	assert.Error(t, err, "names are unique without --force")

	_, err = env.run(t, "snapshot", "save", "checker", "--moves", "R U", "--force")
	require.NoError(t, err)

	out, err = env.run(t, "snapshot", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "checker")
	assert.NotContains(t, out, "two moves", "forced save replaces the notes")

	out, err = env.run(t, "snapshot", "show", "checker")
	require.NoError(t, err)
	assert.NotContains(t, out, "SOLVED")

	_, err = env.run(t, "snapshot", "delete", "checker")
	require.NoError(t, err)

	_, err = env.run(t, "snapshot", "show", "checker")
	assert.Error(t, err)
}

func TestDriftCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "drift", "--moves", "8", "--seed", "42")
	require.NoError(t, err)
	assert.Contains(t, out, "Seed:              42")
	assert.Contains(t, out, "Frames:            512")
	assert.Contains(t, out, "SOLVED")
	assert.Contains(t, out, "Saved report")

	out, err = env.run(t, "drift", "--moves", "4", "--seed", "7", "--no-snap", "--no-save")
	require.NoError(t, err)
	assert.Contains(t, out, "Orientation snap:  false")
	assert.NotContains(t, out, "Saved report")

	out, err = env.run(t, "drift", "--list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "42")
}

func TestConfigCommands(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, env.config, strings.TrimSpace(out))

	_, err = env.run(t, "config", "init")
	require.NoError(t, err)
	_, err = env.run(t, "config", "init")
	assert.Error(t, err)
	_, err = env.run(t, "config", "init", "--force")
	require.NoError(t, err)

	out, err = env.run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "fps: 60")
	assert.Contains(t, out, "idle_interval: 3s")
}

func TestServeSchema(t *testing.T) {
	out, err := execute(t, "serve", "--schema")
	require.NoError(t, err)
	assert.Contains(t, out, `"cubeanim stream"`)
}
