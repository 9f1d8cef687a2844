package repository

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/ladder/pkg/metrics"
)

const defaultDateLayout = "2006-01-02"

// SnapshotStore is an in-memory Store. Readers load an immutable record
// through an atomic pointer; writers serialize on a mutex so the generation
// check and the swap happen together.
type SnapshotStore struct {
	mu         sync.Mutex
	current    atomic.Pointer[Record]
	now        func() time.Time
	dateLayout string
}

// NewSnapshotStore constructs an empty store.
func NewSnapshotStore(opts ...Option) *SnapshotStore {
	s := &SnapshotStore{
		now:        time.Now,
		dateLayout: defaultDateLayout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Replace implements Store.Replace.
func (s *SnapshotStore) Replace(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur := s.current.Load(); cur != nil && rec.Generation <= cur.Generation {
		metrics.RecordStaleSnapshot()
		return fmt.Errorf("generation %d, serving %d: %w", rec.Generation, cur.Generation, ErrStaleGeneration)
	}

	if rec.LoadedAt.IsZero() {
		rec.LoadedAt = s.now()
	}
	s.current.Store(&rec)

	metrics.UpdateSnapshot(rec.Generation, len(rec.Snapshot.Entries), rec.Snapshot.NewlyListed(), s.dateUnix(rec.Snapshot.Date))
	return nil
}

// Current implements Store.Current.
func (s *SnapshotStore) Current(ctx context.Context) (Record, error) {
	cur := s.current.Load()
	if cur == nil {
		return Record{}, ErrNoSnapshot
	}
	return *cur, nil
}

// Generation implements Store.Generation.
func (s *SnapshotStore) Generation(ctx context.Context) uint64 {
	if cur := s.current.Load(); cur != nil {
		return cur.Generation
	}
	return 0
}

// dateUnix reads a snapshot date for metrics; unparseable dates yield 0.
func (s *SnapshotStore) dateUnix(date string) int64 {
	t, err := time.Parse(s.dateLayout, date)
	if err != nil {
		return 0
	}
	return t.Unix()
}
