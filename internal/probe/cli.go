package probe

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/okian/ladder/pkg/logger"
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string, verbose bool) error {
	if logFile == "" {
		logFile = "probe_" + time.Now().Format("20060102_150405") + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	out := io.MultiWriter(os.Stdout, file)
	if err := logger.InitWithWriter(out, logger.FormatText); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	log.SetOutput(out)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the probe.
func ShowHelp() {
	os.Stdout.WriteString(`Ladder Probe
============

Fetches every view of a running ladder service and checks the leaderboard
invariants: one snapshot date, the default-tab cap, tab isolation, job
filtering, newly listed rows sorted last and the three-step sort cycle.

Usage:
  go run ./cmd/probe [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -workers int
        Concurrent view fetches (default 4)
  -timeout duration
        HTTP request timeout (default 30s)
  -limit int
        Row cap expected on the default tab (default 100)
  -reload
        Request a reload and wait for it before probing
  -reload-wait duration
        How long to wait for the reload (default 2m)
  -export string
        Write the fetched views to an .xlsx workbook
  -log string
        Log file for probe output (default: probe_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Probe a local service
  go run ./cmd/probe

  # Reload first, then export every tab
  go run ./cmd/probe -reload -export ladder.xlsx
`)
}
