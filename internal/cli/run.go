package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cubeanim"
)

var runCmd = &cobra.Command{
	Use:   "run <moves>",
	Short: "Apply a move sequence without a display",
	Long: `Apply a space separated move sequence frame by frame and print the result.

Example:
  cubeanim run "R U R' U'"`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

var (
	runTransforms bool
	runLayers     bool
)

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runTransforms, "transforms", false, "Print cubelet world transforms as JSON")
	runCmd.Flags().BoolVar(&runLayers, "layers", false, "Print the cubelets in each layer")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	moves, err := cubeanim.ParseMoves(args[0])
	if err != nil {
		return err
	}

	c := newCube(cfg, newLogger(cmd.ErrOrStderr()))
	tracker := cubeanim.Track(c)
	if err := c.Apply(moves...); err != nil {
		return fmt.Errorf("failed to apply moves: %w", err)
	}

	out := cmd.OutOrStdout()
	if runTransforms {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(c.Transforms())
	}

	rep := tracker.Report()
	fmt.Fprintln(out, titleStyle.Render("cubeanim run"))
	fmt.Fprintf(out, "Moves:   %s\n", moveStyle.Render(cubeanim.FormatMoves(moves)))
	fmt.Fprintf(out, "Frames:  %d\n", rep.Frames)
	fmt.Fprintf(out, "Drift:   max %.2e / %.2e, final %.2e / %.2e\n",
		rep.MaxPosition, rep.MaxOrientation, rep.Final.Position, rep.Final.Orientation)
	fmt.Fprintln(out)
	fmt.Fprint(out, renderNet(c.Facelets()))
	fmt.Fprintln(out)

	if runLayers {
		fmt.Fprint(out, formatLayers(c.Layers()))
		fmt.Fprintln(out)
	}

	if err := c.Verify(); err != nil {
		return err
	}
	if c.IsSolved() {
		fmt.Fprintln(out, activeStyle.Render("SOLVED"))
	} else {
		fmt.Fprintln(out, statusStyle.Render("Lattice consistent"))
	}
	return nil
}
