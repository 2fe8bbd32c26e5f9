package cli

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cubeanim"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Turn the cube interactively in the terminal",
	Long: `Animate the cube in the terminal.

Keys:
  u d l r f b    turn that layer clockwise
  U D L R F B    turn that layer counter-clockwise
  space          random move
  a              toggle automatic random moves
  0              reset to solved (when idle)
  q              quit`,
	RunE: runPlay,
}

var (
	playFPS  int
	playAuto bool
	playSeed uint64
)

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().IntVar(&playFPS, "fps", 0, "Frames per second (default from config)")
	playCmd.Flags().BoolVarP(&playAuto, "auto", "a", false, "Start with automatic random moves")
	playCmd.Flags().Uint64Var(&playSeed, "seed", 0, "Random move seed (default: time based)")
}

// Messages
type frameMsg time.Time
type mirrorMoveMsg struct{ move cubeanim.Move }
type batteryMsg struct{ level int }

// playModel animates a cube from keyboard input, and optionally from a
// mirrored physical cube.
type playModel struct {
	cube         *cubeanim.Cube
	title        string
	fps          int
	autoInterval time.Duration
	auto         bool
	rng          *rand.Rand

	lastActive time.Time
	last       *cubeanim.Result
	history    []cubeanim.Move
	err        error
	quitting   bool

	// mirror mode
	mirror  *cubeanim.Mirror
	events  chan tea.Msg
	battery int
}

func newPlayModel(c *cubeanim.Cube, fps int, autoInterval time.Duration, seed uint64) *playModel {
	if fps <= 0 {
		fps = 60
	}
	m := &playModel{
		cube:         c,
		title:        "cubeanim",
		fps:          fps,
		autoInterval: autoInterval,
		rng:          cubeanim.NewRand(seed),
		battery:      -1,
	}
	// Advance runs inside Update, so completion callbacks do too.
	c.OnRotation(func(res cubeanim.Result, err error) {
		m.last = &res
		if err != nil {
			m.err = err
		}
	})
	return m
}

func (m *playModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.tickCmd()}
	if m.events != nil {
		cmds = append(cmds, m.listenForEvents())
	}
	return tea.Batch(cmds...)
}

func (m *playModel) tickCmd() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m *playModel) listenForEvents() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

func (m *playModel) submit(mv cubeanim.Move) {
	if _, err := m.cube.Submit(mv); err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.record(mv)
}

func (m *playModel) record(mv cubeanim.Move) {
	m.history = append(m.history, mv)
	if len(m.history) > 20 {
		m.history = m.history[len(m.history)-20:]
	}
}

func (m *playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case frameMsg:
		m.frame(time.Time(msg))
		return m, m.tickCmd()

	case mirrorMoveMsg:
		m.record(msg.move)
		return m, m.listenForEvents()

	case batteryMsg:
		m.battery = msg.level
		return m, m.listenForEvents()
	}
	return m, nil
}

func (m *playModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q", "esc", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case " ":
		m.submit(cubeanim.RandomMove(m.rng))
	case "a":
		m.auto = !m.auto
		m.lastActive = time.Time{}
	case "0":
		if err := m.cube.Reset(); err != nil {
			m.err = err
		} else {
			m.err = nil
			m.history = nil
			m.last = nil
		}
	default:
		if len(key) == 1 {
			if mv, ok := keyMove(key); ok {
				m.submit(mv)
			}
		}
	}
	return m, nil
}

// keyMove maps a lowercase face letter to a clockwise turn and an uppercase
// one to a counter-clockwise turn.
func keyMove(key string) (cubeanim.Move, bool) {
	face := cubeanim.Face(strings.ToUpper(key))
	if !face.Valid() {
		return cubeanim.Move{}, false
	}
	dir := cubeanim.CW
	if key == string(face) {
		dir = cubeanim.CCW
	}
	return cubeanim.Move{Face: face, Direction: dir}, true
}

func (m *playModel) frame(now time.Time) {
	if m.cube.Busy() || m.lastActive.IsZero() {
		m.lastActive = now
	} else if m.auto && now.Sub(m.lastActive) >= m.autoInterval {
		m.submit(cubeanim.RandomMove(m.rng))
		m.lastActive = now
	}
	m.cube.Advance()
}

func (m *playModel) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title))
	if m.mirror != nil {
		status := " " + m.mirror.DeviceName()
		if m.battery >= 0 {
			status += fmt.Sprintf(" (Battery: %d%%)", m.battery)
		}
		b.WriteString(statusStyle.Render(status))
	}
	b.WriteString("\n\n")

	b.WriteString(renderNet(m.cube.Facelets()))
	b.WriteString("\n")

	if mv, p, ok := m.cube.Progress(); ok {
		b.WriteString(fmt.Sprintf("Turning: %s %s %s\n",
			activeStyle.Render(mv.Notation()), progressBar(p, 20), statusStyle.Render(mv.Describe())))
	} else if m.cube.IsSolved() {
		b.WriteString(activeStyle.Render("SOLVED"))
		b.WriteString("\n")
	} else {
		b.WriteString("Idle\n")
	}
	b.WriteString(fmt.Sprintf("Queued: %d  Completed: %d\n", m.cube.Pending(), m.cube.Completed()))

	if m.last != nil {
		b.WriteString(statusStyle.Render(fmt.Sprintf("Last: %s in %d frames, drift %.2e / %.2e",
			m.last.Move.Notation(), m.last.Frames, m.last.PositionDrift, m.last.OrientationDrift)))
		b.WriteString("\n")
	}

	if len(m.history) > 0 {
		b.WriteString("Moves: ")
		b.WriteString(moveStyle.Render(cubeanim.FormatMoves(m.history)))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	auto := "off"
	if m.auto {
		auto = "on"
	}
	help := fmt.Sprintf("Keys: udlrfb=turn  UDLRFB=prime  space=random  a=auto(%s)  0=reset  q=quit", auto)
	if m.mirror != nil {
		help = fmt.Sprintf("Turn the physical cube  a=auto(%s)  0=reset  q=quit", auto)
	}
	b.WriteString(helpStyle.Render(help))
	b.WriteString("\n")

	return b.String()
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fps := cfg.FPS
	if playFPS > 0 {
		fps = playFPS
	}
	seed := playSeed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	c := newCube(cfg, newLogger(cmd.ErrOrStderr()))
	model := newPlayModel(c, fps, cfg.IdleInterval, seed)
	model.auto = playAuto

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
