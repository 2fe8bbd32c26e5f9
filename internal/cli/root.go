// Package cli implements the command-line interface for cubeanim.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cubeanim"
	"github.com/SeamusWaldron/cubeanim/internal/config"
	"github.com/SeamusWaldron/cubeanim/internal/storage"
)

const version = "0.1.0"

var (
	// Global flags
	configPath string
	dbPath     string
	verbose    bool
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "cubeanim",
	Short: "3x3x3 cube layer rotation animator",
	Long: `cubeanim animates quarter turns of a 3x3x3 cube built from 27 cubelets.

Play it in the terminal, apply move sequences headlessly, measure lattice
drift, stream frames to a browser over websocket, or mirror a physical
GoCube over Bluetooth.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: ~/.cubeanim/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database file path (default: ~/.cubeanim/cubeanim.db)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// loadConfig reads the config file named by --config or the default path.
func loadConfig() (config.AppConfig, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return config.Default(), err
	}
	return config.Load(path)
}

// newLogger logs to w, at debug level with --verbose.
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newCube builds a cube from the application config.
func newCube(cfg config.AppConfig, logger *slog.Logger, extra ...cubeanim.Option) *cubeanim.Cube {
	opts := []cubeanim.Option{
		cubeanim.WithSpeed(cfg.Speed),
		cubeanim.WithMargin(cfg.Margin),
		cubeanim.WithEpsilon(cfg.Epsilon),
		cubeanim.WithPalette(cfg.PaletteColors()),
		cubeanim.WithOrientationSnap(cfg.OrientationSnap),
		cubeanim.WithQueueCapacity(cfg.QueueCapacity),
		cubeanim.WithPolicy(cfg.EnginePolicy()),
		cubeanim.WithLogger(logger),
	}
	return cubeanim.New(append(opts, extra...)...)
}

// openDB opens the database named by --db, the config file or the default.
func openDB(cfg config.AppConfig) (*storage.DB, error) {
	path := dbPath
	if path == "" {
		path = cfg.DBPath
	}
	if path == "" {
		return storage.OpenDefault()
	}
	return storage.Open(path)
}
