// Package repository holds the snapshot currently served by the service.
package repository

import "time"

// Option applies a configuration option to the SnapshotStore.
type Option func(*SnapshotStore)

// WithClock sets the time source used to stamp published records.
func WithClock(now func() time.Time) Option {
	return func(s *SnapshotStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithDateLayout sets the layout used to read snapshot dates for metrics.
func WithDateLayout(layout string) Option {
	return func(s *SnapshotStore) {
		if layout != "" {
			s.dateLayout = layout
		}
	}
}
