package cli

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cubeanim"
)

var mirrorCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Mirror a physical GoCube in the terminal",
	Long: `Connect to a GoCube over Bluetooth and animate every turn made on the
physical cube. The virtual cube starts solved; solve the physical cube
before connecting so both agree.`,
	Args: cobra.NoArgs,
	RunE: runMirror,
}

var (
	mirrorFollow  bool
	mirrorTimeout time.Duration
)

func init() {
	rootCmd.AddCommand(mirrorCmd)
	mirrorCmd.Flags().BoolVar(&mirrorFollow, "follow", false, "Rotate the whole cube with the physical cube's orientation")
	mirrorCmd.Flags().DurationVarP(&mirrorTimeout, "timeout", "t", 5*time.Second, "Scan duration")
}

// attachMirror feeds mirror events into the play model.
func (m *playModel) attachMirror(mirror *cubeanim.Mirror) {
	m.mirror = mirror
	m.title = "cubeanim mirror"
	m.events = make(chan tea.Msg, 100)

	send := func(msg tea.Msg) {
		select {
		case m.events <- msg:
		default:
			// Channel full, drop message
		}
	}
	mirror.OnMove(func(mv cubeanim.Move) { send(mirrorMoveMsg{move: mv}) })
	mirror.OnBattery(func(level int) { send(batteryMsg{level: level}) })
}

func runMirror(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr())

	// Scan before the TUI takes over the screen.
	devices, err := scanForGoCube(cmd.Context(), mirrorTimeout, logger, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		return cubeanim.ErrDeviceNotFound
	}

	c := newCube(cfg, logger)
	mirror, err := cubeanim.ConnectMirror(cmd.Context(), devices[0], c, logger)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer mirror.Close()
	mirror.FollowOrientation(mirrorFollow)

	model := newPlayModel(c, cfg.FPS, cfg.IdleInterval, uint64(time.Now().UnixNano()))
	model.attachMirror(mirror)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	if n := mirror.Dropped(); n > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%d moves were dropped because the queue was full.\n", n)
	}
	return nil
}
