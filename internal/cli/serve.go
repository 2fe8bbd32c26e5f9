package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cubeanim/internal/stream"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Stream animation frames over websocket",
	Long: `Run the frame loop and stream every frame to websocket clients on /ws.

Clients receive a hello message with the sticker colors, then one frame
message per tick. They may send {"type":"rotate","notation":"R'"} to queue
a move. The message schema is served on /schema.`,
	RunE: runServe,
}

var (
	serveAddr   string
	serveAuto   bool
	serveBob    bool
	serveSeed   uint64
	serveSchema bool
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
	serveCmd.Flags().BoolVar(&serveAuto, "auto", true, "Make a random move whenever the cube has been idle for the configured interval")
	serveCmd.Flags().BoolVar(&serveBob, "bob", true, "Float the cube up and down")
	serveCmd.Flags().Uint64Var(&serveSeed, "seed", 0, "Random move seed (default: time based)")
	serveCmd.Flags().BoolVar(&serveSchema, "schema", false, "Print the message schema and exit")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveSchema {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(stream.Schema())
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr())
	c := newCube(cfg, logger)

	scfg := stream.Config{
		Addr:   cfg.Listen,
		FPS:    cfg.FPS,
		Bob:    serveBob,
		Seed:   serveSeed,
		Logger: logger,
	}
	if serveAddr != "" {
		scfg.Addr = serveAddr
	}
	if serveAuto {
		scfg.AutoInterval = cfg.IdleInterval
	}
	if scfg.Seed == 0 {
		scfg.Seed = uint64(time.Now().UnixNano())
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Fprintf(cmd.OutOrStdout(), "Streaming on ws://%s/ws (Ctrl+C to stop)\n", scfg.Addr)
	return stream.NewServer(c, scfg).Run(ctx)
}
