// Package source fetches raw leaderboard records from the published sheet.
package source

import (
	"context"

	"github.com/okian/ladder/internal/domain/model"
)

// Source kinds, used as metric and log labels.
const (
	KindHTTP = "http"
	KindXLSX = "xlsx"
)

// Source yields one raw batch per call.
type Source interface {
	// Kind names the source for logs and metrics.
	Kind() string

	// Fetch returns every raw record of the sheet. Failures are reported
	// with one of this package's sentinel errors.
	Fetch(ctx context.Context) ([]model.RawRecord, error)
}
