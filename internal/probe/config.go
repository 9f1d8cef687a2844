package probe

import (
	"time"

	"github.com/okian/ladder/internal/domain/types"
)

// Config holds configuration for a probe run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Workers    int           // Concurrent view fetches
	Timeout    time.Duration // HTTP request timeout
	Limit      int           // Row cap expected on the default tab
	Reload     bool          // Request a reload before probing
	ReloadWait time.Duration // How long to wait for the reload to land
	ExportFile string        // Optional .xlsx export of the fetched views
	LogFile    string        // Log file for probe output
	Verbose    bool          // Enable verbose logging
}

// Fetched is one view retrieved from the service together with the query
// that produced it.
type Fetched struct {
	Name  string // human label, e.g. "tab 3" or "sort level:asc"
	Query string // raw query string sent to /view
	Tab   int
	Job   string
	View  types.View
}

// Violation is one failed check.
type Violation struct {
	Check  string
	View   string
	Detail string
}

// Stats holds probe statistics.
type Stats struct {
	ViewsFetched int
	ViewsFailed  int
	RowsSeen     int
	ChecksRun    int
	Violations   int
	SnapshotDate string
	Generation   uint64
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
}

// ViewsPerSecond is the fetch rate over the whole run.
func (s *Stats) ViewsPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.ViewsFetched) / s.Duration.Seconds()
}
