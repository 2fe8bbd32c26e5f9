package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cubeanim"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for GoCube devices",
	Long: `Scan for nearby GoCube devices over Bluetooth.

Ensure the cube is not connected to another host (e.g. the phone app).`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

var scanTimeout time.Duration

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().DurationVarP(&scanTimeout, "timeout", "t", 5*time.Second, "Scan duration")
}

func runScan(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	devices, err := scanForGoCube(cmd.Context(), scanTimeout, newLogger(cmd.ErrOrStderr()), out)
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		fmt.Fprintln(out, "No GoCube devices found.")
		return nil
	}
	for _, d := range devices {
		fmt.Fprintf(out, "%s  %s  RSSI %d\n", activeStyle.Render(d.Name), statusStyle.Render(d.Address), d.RSSI)
	}
	return nil
}

// scanForGoCube runs a single scan, reporting progress to w.
func scanForGoCube(ctx context.Context, timeout time.Duration, logger *slog.Logger, w io.Writer) ([]cubeanim.Device, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	fmt.Fprintln(w, "Scanning for GoCube devices...")

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	devices, err := cubeanim.Scan(ctx, timeout, logger)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	if len(devices) > 0 {
		fmt.Fprintf(w, "Found: %s\n", devices[0].Name)
	}
	return devices, nil
}
