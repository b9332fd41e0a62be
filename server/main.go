package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"

	"github.com/puizinam/go-udp-hub/internal"
	"github.com/puizinam/go-udp-hub/internal/echo"
	"github.com/puizinam/go-udp-hub/internal/hub"
	"github.com/puizinam/go-udp-hub/internal/logging"
)

func main() {
	invalidArgsMessage := `Failed to start server. The program expects a single command-line argument:
    'hub': starts the registration-and-broadcast hub (UDP)
    'echo': starts the echo server (TCP)`
	if len(os.Args) != 2 {
		fmt.Println(invalidArgsMessage)
		return
	}

	// An operator interrupt is the only way to stop the server
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "hub":
		err = runHub(ctx)
	case "echo":
		err = runEcho(ctx)
	default:
		fmt.Println(invalidArgsMessage)
		return
	}
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func runHub(ctx context.Context) error {
	var cfg hub.Config
	if err := internal.LoadConfig(&cfg); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, logFile, err := logging.NewFile(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", cfg.LogFile, err)
	}
	defer logFile.Close()

	conn, err := net.ListenPacket("udp", cfg.Addr())
	if err != nil {
		logBindingError(log, cfg.Addr(), err)
		return err
	}
	printBanner("UDP hub running at "+conn.LocalAddr().String(), cfg.LogFile)

	err = hub.New(conn, cfg, hub.WithLogger(log)).Run(ctx)
	if errors.Is(err, hub.ErrShutdownTimeout) {
		// The socket is closed regardless; a slow task is not a failed shutdown
		return nil
	}
	return err
}

func runEcho(ctx context.Context) error {
	var cfg echo.Config
	if err := internal.LoadConfig(&cfg); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logging.New(logging.WithConsole())
	listener, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		logBindingError(log, cfg.Addr(), err)
		return err
	}
	printBanner("Echo server running at "+listener.Addr().String(), "")
	return echo.NewServer(listener, log).Serve(ctx)
}
