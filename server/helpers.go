package main

import (
	"log/slog"

	"github.com/pterm/pterm"

	"github.com/puizinam/go-udp-hub/internal/logging"
)

const BINDING_ERROR = "Failed to bind listener"

func logBindingError(log *slog.Logger, addr string, err error) {
	log.Error(BINDING_ERROR, slog.String("addr", addr), logging.Error(err))
}

func printBanner(event string, logFile string) {
	pterm.DefaultHeader.Println(event)
	if logFile != "" {
		pterm.Info.Printfln("Appending log entries to %s", logFile)
	}
	pterm.Info.Println("Press Ctrl+C to stop the server.")
}
