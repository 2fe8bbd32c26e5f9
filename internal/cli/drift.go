package cli

import (
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cubeanim"
	"github.com/SeamusWaldron/cubeanim/internal/config"
	"github.com/SeamusWaldron/cubeanim/internal/storage"
)

var driftCmd = &cobra.Command{
	Use:   "drift",
	Short: "Measure lattice drift over a random scramble and its inverse",
	Long: `Apply a random move sequence frame by frame, then its inverse, and report
how far cubelets strayed from the lattice. The cube must end solved.

Reports are stored in the database unless --no-save is given.`,
	RunE: runDrift,
}

var (
	driftMoves  int
	driftSeed   uint64
	driftNoSnap bool
	driftNoSave bool
	driftList   bool
	driftLimit  int
)

func init() {
	rootCmd.AddCommand(driftCmd)
	driftCmd.Flags().IntVarP(&driftMoves, "moves", "n", 100, "Number of random moves")
	driftCmd.Flags().Uint64Var(&driftSeed, "seed", 0, "Random seed (default: time based)")
	driftCmd.Flags().BoolVar(&driftNoSnap, "no-snap", false, "Do not snap orientations after each rotation")
	driftCmd.Flags().BoolVar(&driftNoSave, "no-save", false, "Do not store the report")
	driftCmd.Flags().BoolVar(&driftList, "list", false, "List stored reports instead of running")
	driftCmd.Flags().IntVar(&driftLimit, "limit", 20, "Number of reports to list")
}

func runDrift(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if driftList {
		db, err := openDB(cfg)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		reports, err := storage.NewReportRepository(db).List(driftLimit)
		if err != nil {
			return err
		}
		printReports(out, reports)
		return nil
	}

	if driftMoves <= 0 {
		return fmt.Errorf("--moves must be positive, got %d", driftMoves)
	}
	seed := driftSeed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	rep, err := measureDrift(cfg, seed, driftMoves, !driftNoSnap, newLogger(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}

	fmt.Fprintln(out, titleStyle.Render("Drift report"))
	fmt.Fprintf(out, "Seed:              %d\n", rep.Seed)
	fmt.Fprintf(out, "Moves:             %d (+%d inverse)\n", rep.Moves, rep.Moves)
	fmt.Fprintf(out, "Frames:            %d\n", rep.Frames)
	fmt.Fprintf(out, "Speed:             %.4f rad/frame\n", rep.Speed)
	fmt.Fprintf(out, "Orientation snap:  %t\n", rep.OrientationSnap)
	fmt.Fprintf(out, "Max drift:         %.3e position, %.3e orientation\n", rep.MaxPositionDrift, rep.MaxOrientationDrift)
	fmt.Fprintf(out, "Final drift:       %.3e position, %.3e orientation\n", rep.FinalPositionDrift, rep.FinalOrientationDrift)
	if rep.SolvedAfterInverse {
		fmt.Fprintf(out, "Inverse:           %s\n", activeStyle.Render("SOLVED"))
	} else {
		fmt.Fprintf(out, "Inverse:           %s\n", errorStyle.Render("NOT SOLVED"))
	}

	if !driftNoSave {
		db, err := openDB(cfg)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		id, err := storage.NewReportRepository(db).Create(rep)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved report %s\n", statusStyle.Render(id))
	}

	if !rep.SolvedAfterInverse {
		return fmt.Errorf("cube not solved after inverse sequence")
	}
	return nil
}

// measureDrift scrambles a fresh cube with n random moves, undoes them and
// reports the drift seen along the way.
func measureDrift(cfg config.AppConfig, seed uint64, n int, snap bool, logger *slog.Logger) (storage.DriftReport, error) {
	c := newCube(cfg, logger, cubeanim.WithOrientationSnap(snap))
	tracker := cubeanim.Track(c)

	rng := cubeanim.NewRand(seed)
	moves := make([]cubeanim.Move, n)
	for i := range moves {
		moves[i] = cubeanim.RandomMove(rng)
	}
	inverse := make([]cubeanim.Move, n)
	for i, m := range moves {
		inverse[n-1-i] = m.Inverse()
	}

	logger.Debug("Applying scramble", "moves", n, "seed", seed)
	if err := c.Apply(moves...); err != nil {
		return storage.DriftReport{}, fmt.Errorf("scramble failed: %w", err)
	}
	logger.Debug("Applying inverse", "moves", n)
	if err := c.Apply(inverse...); err != nil {
		return storage.DriftReport{}, fmt.Errorf("inverse failed: %w", err)
	}

	r := tracker.Report()
	return storage.DriftReport{
		Seed:                  seed,
		Moves:                 n,
		Frames:                r.Frames,
		Speed:                 c.Speed(),
		OrientationSnap:       snap,
		MaxPositionDrift:      r.MaxPosition,
		MaxOrientationDrift:   r.MaxOrientation,
		FinalPositionDrift:    r.Final.Position,
		FinalOrientationDrift: r.Final.Orientation,
		SolvedAfterInverse:    c.IsSolved(),
	}, nil
}

func printReports(w io.Writer, reports []storage.DriftReport) {
	if len(reports) == 0 {
		fmt.Fprintln(w, "No drift reports.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tSEED\tMOVES\tFRAMES\tSNAP\tMAX POS\tMAX ORIENT\tSOLVED")
	for _, r := range reports {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%t\t%.2e\t%.2e\t%t\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Seed, r.Moves, r.Frames,
			r.OrientationSnap, r.MaxPositionDrift, r.MaxOrientationDrift, r.SolvedAfterInverse)
	}
	tw.Flush()
}
