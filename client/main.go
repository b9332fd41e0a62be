package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/pterm/pterm"

	"github.com/puizinam/go-udp-hub/internal"
	"github.com/puizinam/go-udp-hub/internal/logging"
	"github.com/puizinam/go-udp-hub/internal/peer"
	"github.com/puizinam/go-udp-hub/internal/registry"
)

// Peer IDs drawn when none is given on the command line
const (
	MIN_RANDOM_ID = 1
	MAX_RANDOM_ID = 9999
)

func main() {
	id := peerIDFromArgs(os.Args[1:])
	pterm.Info.Printfln("Starting client with ID: %d", id)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, id); err != nil {
		pterm.Error.Printfln("[CLIENT %d] %v", id, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, id registry.PeerID) error {
	var cfg peer.Config
	if err := internal.LoadConfig(&cfg); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, logFile, err := logging.NewFile(cfg.LogFile(id))
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	server, err := net.ResolveUDPAddr("udp", cfg.ServerAddr())
	if err != nil {
		return fmt.Errorf("failed to resolve server address %s: %w", cfg.ServerAddr(), err)
	}
	// Any local port will do, the hub learns it from the registration datagram
	conn, err := net.ListenPacket("udp", ":0")
	if err != nil {
		return fmt.Errorf("failed to open socket: %w", err)
	}
	return peer.New(id, conn, server, cfg, peer.WithLogger(log)).Run(ctx)
}

// This function returns the peer ID given as the only argument. Without an argument, or with one that
// is not an integer, a random ID is used instead.
func peerIDFromArgs(args []string) registry.PeerID {
	if len(args) > 0 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err == nil {
			return registry.PeerID(id)
		}
		fmt.Println("Usage: client [client_id]")
		fmt.Printf("Using random client ID instead between %d and %d.\n", MIN_RANDOM_ID, MAX_RANDOM_ID)
	}
	return registry.PeerID(MIN_RANDOM_ID + rand.IntN(MAX_RANDOM_ID-MIN_RANDOM_ID+1))
}
