package repository

import (
	"context"
	"time"

	"github.com/okian/ladder/internal/domain/normalize"
	"github.com/okian/ladder/internal/domain/pipeline"
)

// Record is one published load result.
type Record struct {
	ID         string // load request id
	Generation uint64
	Source     string // source kind, e.g. "http" or "xlsx"
	Snapshot   pipeline.Snapshot
	Report     normalize.Report
	Err        error // fetch failure that produced an empty snapshot, if any
	LoadedAt   time.Time
}

// Store provides access to the snapshot being served.
type Store interface {
	// Replace publishes rec wholesale. It returns ErrStaleGeneration when
	// a record of the same or a newer generation is already published.
	Replace(ctx context.Context, rec Record) error

	// Current returns the published record, or ErrNoSnapshot before the
	// first load completes.
	Current(ctx context.Context) (Record, error)

	// Generation returns the generation of the published record, 0 if none.
	Generation(ctx context.Context) uint64
}
