// BLE Monitor - prints every GoCube notification with its decoded meaning,
// including the engine move each physical turn is mirrored as.
//
// Usage:
//
//	ble-monitor [address]
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SeamusWaldron/cubeanim/internal/ble"
	"github.com/SeamusWaldron/cubeanim/internal/protocol"
)

func main() {
	fmt.Println("GoCube BLE Monitor")
	fmt.Println("==================")
	fmt.Println()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	client, err := ble.NewClient(logger)
	if err != nil {
		fmt.Printf("Failed to enable adapter: %v\n", err)
		os.Exit(1)
	}
	client.SetMessageCallback(printMessage)

	if len(os.Args) > 1 {
		fmt.Printf("Connecting to %s...\n", os.Args[1])
		err = client.Connect(ctx, os.Args[1])
	} else {
		err = connectFirst(ctx, client)
	}
	if err != nil {
		fmt.Printf("Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer client.Disconnect()

	fmt.Printf("Connected to %s\n", client.DeviceName())
	fmt.Println()

	for _, cmd := range []byte{
		protocol.CmdRequestCubeType,
		protocol.CmdRequestBattery,
		protocol.CmdRequestOfflineStats,
		protocol.CmdEnableOrientation,
	} {
		if err := client.SendCommand(cmd); err != nil {
			fmt.Printf("Command 0x%02X failed: %v\n", cmd, err)
		}
	}

	fmt.Println("Rotate the cube to see data...")
	fmt.Println("Press Ctrl+C to exit")
	fmt.Println()

	<-ctx.Done()
	fmt.Println("\nDisconnecting...")
}

func connectFirst(ctx context.Context, client *ble.Client) error {
	fmt.Println("Scanning for GoCube...")
	results, err := client.Scan(ctx, 10*time.Second)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return ble.ErrDeviceNotFound
	}
	fmt.Printf("Found: %s (%s)\n", results[0].Name, results[0].Address)
	return client.ConnectTo(results[0])
}

func printMessage(msg *protocol.Message) {
	fmt.Printf("[%s] %-13s %s\n", time.Now().Format("15:04:05.000"), msg.TypeName(), hex.EncodeToString(msg.Payload))

	switch msg.Type {
	case protocol.MsgTypeRotation:
		rotations, err := protocol.DecodeRotation(msg.Payload)
		if err != nil {
			fmt.Printf("      error: %v\n", err)
			return
		}
		for _, r := range rotations {
			physical, err := protocol.PhysicalMove(r)
			if err != nil {
				fmt.Printf("      %s center=%d: %v\n", r.Color, r.Center, err)
				continue
			}
			fmt.Printf("      %s center=%d  physical=%-2s engine=%s\n",
				r.Color, r.Center, physical.Notation(), protocol.EngineMove(physical).Notation())
		}

	case protocol.MsgTypeOrientation:
		o, err := protocol.DecodeOrientation(msg.Payload)
		if err != nil {
			fmt.Printf("      error: %v\n", err)
			return
		}
		fmt.Printf("      %+v\n", o)

	case protocol.MsgTypeBattery:
		if level, err := protocol.DecodeBattery(msg.Payload); err == nil {
			fmt.Printf("      battery %d%%\n", level)
		}

	case protocol.MsgTypeCubeType:
		if name, err := protocol.DecodeCubeType(msg.Payload); err == nil {
			fmt.Printf("      cube type %s\n", name)
		}

	case protocol.MsgTypeOfflineStats:
		if stats, err := protocol.DecodeOfflineStats(msg.Payload); err == nil {
			fmt.Printf("      offline moves=%d seconds=%d solves=%d\n", stats.Moves, stats.Seconds, stats.Solves)
		}
	}
}
