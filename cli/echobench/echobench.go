package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"

	internalcli "github.com/puizinam/go-udp-hub/cli/internal"
	"github.com/puizinam/go-udp-hub/internal"
	"github.com/puizinam/go-udp-hub/internal/echo"
)

// This program measures round-trip latency against the echo server ("server echo"). It connects once,
// sends NUMBER_OF_TRIALS pings over the same connection and reports each round trip and the average.
func main() {
	var cfg echo.Config
	if err := internal.LoadConfig(&cfg); err != nil {
		internalcli.LogFatalError("failed to load configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		internalcli.LogFatalError("invalid configuration", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", cfg.Addr())
	if err != nil {
		internalcli.LogFatalError("failed to connect to "+cfg.Addr(), err)
	}
	defer conn.Close()

	result, err := echo.Bench(ctx, conn, cfg.Trials, echo.DefaultMessage, func(trial int, d time.Duration) {
		pterm.Printfln("Trial %d: %.3f ms", trial, echo.Milliseconds(d))
	})
	if err != nil {
		pterm.Warning.Printfln("Benchmark stopped early: %v", err)
	}
	if len(result.Trials) == 0 {
		return
	}

	pterm.DefaultSection.Println("RESULTS")
	pterm.Info.Printfln(
		"Average run time over %d trials: %.3f ms",
		len(result.Trials), echo.Milliseconds(result.Average()),
	)
}
