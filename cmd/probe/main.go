package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/okian/ladder/internal/domain/pipeline"
	"github.com/okian/ladder/internal/probe"
)

// Default configuration constants.
const (
	defaultWorkers      = 4
	defaultTimeout      = 30 * time.Second
	defaultProbeTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		workers    = flag.Int("workers", defaultWorkers, "Concurrent view fetches")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		limit      = flag.Int("limit", pipeline.DefaultLimit, "Row cap expected on the default tab")
		reload     = flag.Bool("reload", false, "Request a reload and wait for it before probing")
		reloadWait = flag.Duration("reload-wait", probe.DefaultReloadWait, "How long to wait for the reload")
		exportFile = flag.String("export", "", "Write the fetched views to an .xlsx workbook")
		logFile    = flag.String("log", "", "Log file for probe output (default: probe_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		probe.ShowHelp()
		return
	}

	if err := probe.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultProbeTimeout)
	defer cancel()

	config := &probe.Config{
		BaseURL:    *baseURL,
		Workers:    max(*workers, 1),
		Timeout:    *timeout,
		Limit:      *limit,
		Reload:     *reload,
		ReloadWait: *reloadWait,
		ExportFile: *exportFile,
		LogFile:    *logFile,
		Verbose:    *verbose,
	}

	if err := probe.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Probe failed: " + err.Error() + "\n")
		if errors.Is(err, probe.ErrViolations) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
