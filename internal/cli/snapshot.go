package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cubeanim"
	"github.com/SeamusWaldron/cubeanim/internal/storage"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Save and restore cube states",
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Apply moves to a solved cube and save the result",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotSave,
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved snapshots",
	Args:  cobra.NoArgs,
	RunE:  runSnapshotList,
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show <id|name>",
	Short: "Restore a snapshot and print it",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotShow,
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete <id|name>",
	Short: "Delete a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotDelete,
}

var (
	snapshotMoves string
	snapshotNotes string
	snapshotForce bool
)

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotSaveCmd, snapshotListCmd, snapshotShowCmd, snapshotDeleteCmd)

	snapshotSaveCmd.Flags().StringVarP(&snapshotMoves, "moves", "m", "", "Moves to apply before saving")
	snapshotSaveCmd.Flags().StringVar(&snapshotNotes, "notes", "", "Notes to store with the snapshot")
	snapshotSaveCmd.Flags().BoolVarP(&snapshotForce, "force", "f", false, "Overwrite an existing snapshot with the same name")
}

func runSnapshotSave(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	c := newCube(cfg, newLogger(cmd.ErrOrStderr()))
	if snapshotMoves != "" {
		if err := c.ApplyNotation(snapshotMoves); err != nil {
			return err
		}
	}
	state, err := c.Snapshot()
	if err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	repo := storage.NewSnapshotRepository(db)
	save := repo.Create
	if snapshotForce {
		save = repo.Replace
	}
	id, err := save(args[0], state, c.IsSolved(), snapshotNotes)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved snapshot %s (%s)\n", activeStyle.Render(args[0]), statusStyle.Render(id))
	return nil
}

func runSnapshotList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	records, err := storage.NewSnapshotRepository(db).List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No snapshots.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tID\tCREATED\tSOLVED\tNOTES")
	for _, r := range records {
		notes := ""
		if r.Notes != nil {
			notes = *r.Notes
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n",
			r.Name, r.SnapshotID[:8], r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Solved, notes)
	}
	return tw.Flush()
}

func runSnapshotShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	rec, err := storage.NewSnapshotRepository(db).Get(args[0])
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("snapshot %q not found", args[0])
	}
	if err != nil {
		return err
	}

	c := newCube(cfg, newLogger(cmd.ErrOrStderr()), cubeanim.WithMargin(rec.Margin))
	if err := c.Restore(rec.State); err != nil {
		return fmt.Errorf("failed to restore snapshot: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render(rec.Name))
	fmt.Fprintf(out, "ID:      %s\n", rec.SnapshotID)
	fmt.Fprintf(out, "Created: %s\n", rec.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	if rec.Notes != nil {
		fmt.Fprintf(out, "Notes:   %s\n", *rec.Notes)
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, renderNet(c.Facelets()))
	if c.IsSolved() {
		fmt.Fprintln(out, activeStyle.Render("SOLVED"))
	}
	return nil
}

func runSnapshotDelete(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := storage.NewSnapshotRepository(db).Delete(args[0]); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("snapshot %q not found", args[0])
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted snapshot %s\n", args[0])
	return nil
}
