package probe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/ladder/internal/domain/ranking"
	"github.com/okian/ladder/internal/domain/types"
	"github.com/okian/ladder/pkg/logger"
)

// ErrViolations is returned by Run when any check failed.
var ErrViolations = errors.New("invariant violations")

// Run executes a complete probe against a running service.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting ladder probe",
		logger.String("baseURL", config.BaseURL),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Int("limit", config.Limit),
		logger.Bool("reload", config.Reload),
		logger.String("export", config.ExportFile))

	client := newHTTPClient(config.BaseURL, config.Timeout)

	// Step 1: Check service health
	health, err := client.Health(ctx)
	if err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}
	logger.Get().Info(ctx, "service is up",
		logger.String("status", health.Status),
		logger.Uint64("generation", health.Generation),
		logger.String("snapshotDate", health.SnapshotDate))

	// Step 2: Optionally reload and wait for the new snapshot
	if config.Reload {
		if health, err = reloadAndWait(ctx, config, client); err != nil {
			return fmt.Errorf("reload failed: %w", err)
		}
	}
	stats.SnapshotDate = health.SnapshotDate
	stats.Generation = health.Generation

	// Step 3: Build the view list from tabs and jobs
	requests, err := planViews(ctx, client)
	if err != nil {
		return fmt.Errorf("view planning failed: %w", err)
	}

	// Step 4: Fetch views concurrently
	views := fetchViews(ctx, config, client, requests, stats)
	if len(views) == 0 {
		return fmt.Errorf("no views could be fetched")
	}

	// Step 5: Verify
	violations := verifyViews(ctx, config, views, stats)
	toggle, err := toggleCycle(ctx, client)
	if err != nil {
		logger.Get().Warn(ctx, "toggle cycle fetch failed", logger.Error(err))
	} else {
		stats.ChecksRun++
		violations = append(violations, checkToggleCycle(toggle[0], toggle[1:])...)
		stats.Violations = len(violations)
	}

	// Step 6: Export
	if config.ExportFile != "" {
		if err := exportViews(ctx, config.ExportFile, views); err != nil {
			logger.Get().Warn(ctx, "failed to export views", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	if len(violations) > 0 {
		return fmt.Errorf("%d checks failed: %w", len(violations), ErrViolations)
	}
	logger.Get().Info(ctx, "probe completed successfully")
	return nil
}

// reloadAndWait requests a reload and polls health until the queued
// generation is served.
func reloadAndWait(ctx context.Context, config *Config, client *HTTPClient) (health types.Health, err error) {
	gen, err := client.Reload(ctx)
	if err != nil {
		return health, err
	}
	logger.Get().Info(ctx, "reload queued", logger.Uint64("generation", gen))

	wait := config.ReloadWait
	if wait <= 0 {
		wait = DefaultReloadWait
	}
	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	ticker := time.NewTicker(ReloadPollInterval)
	defer ticker.Stop()
	for {
		health, err = client.Health(waitCtx)
		if err == nil && health.Generation >= gen && !health.Loading {
			return health, nil
		}
		select {
		case <-waitCtx.Done():
			return health, fmt.Errorf("generation %d not served: %w", gen, waitCtx.Err())
		case <-ticker.C:
		}
	}
}

// planViews lists the views to fetch: the default view, each sort of it,
// every other tab and every job within a tab.
func planViews(ctx context.Context, client *HTTPClient) ([]Fetched, error) {
	tabs, err := client.Tabs(ctx)
	if err != nil {
		return nil, err
	}

	requests := []Fetched{{Name: "default", Query: viewQuery(0, "", "")}}
	for _, m := range ranking.Metrics() {
		for _, dir := range []string{"desc", "asc"} {
			sort := string(m) + ":" + dir
			requests = append(requests, Fetched{Name: "sort " + sort, Query: viewQuery(0, "", sort)})
		}
	}

	for _, t := range tabs {
		if t.ID != 0 {
			requests = append(requests, Fetched{Name: fmt.Sprintf("tab %d %s", t.ID, t.Label), Query: viewQuery(t.ID, "", ""), Tab: t.ID})
		}
		jobs, err := client.SubGroups(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		for _, j := range jobs {
			requests = append(requests, Fetched{Name: fmt.Sprintf("tab %d %s", t.ID, j), Query: viewQuery(t.ID, j, ""), Tab: t.ID, Job: j})
		}
	}
	return requests, nil
}

// toggleCycle fetches the default view and then follows next_sort
// ToggleCycle times.
func toggleCycle(ctx context.Context, client *HTTPClient) ([]Fetched, error) {
	view, err := client.View(ctx, "")
	if err != nil {
		return nil, err
	}
	out := []Fetched{{Name: "toggle start", View: view}}
	for i := 0; i < ToggleCycle; i++ {
		q := viewQuery(0, "", view.NextSort)
		if view, err = client.View(ctx, q); err != nil {
			return nil, err
		}
		out = append(out, Fetched{Name: fmt.Sprintf("toggle %d", i+1), Query: q, View: view})
	}
	return out, nil
}

// displayFinalStats logs the final probe statistics.
func displayFinalStats(stats *Stats) {
	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("viewsFetched", stats.ViewsFetched),
		logger.Int("viewsFailed", stats.ViewsFailed),
		logger.Int("rowsSeen", stats.RowsSeen),
		logger.Int("checksRun", stats.ChecksRun),
		logger.Int("violations", stats.Violations),
		logger.String("snapshotDate", stats.SnapshotDate),
		logger.Uint64("generation", stats.Generation),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("viewsPerSecond", stats.ViewsPerSecond()))
}
