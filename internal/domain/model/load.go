package model

import "time"

// LoadRequest asks the loader to fetch a fresh batch from the source.
// Generation increases monotonically; a result for an older generation must
// never replace a newer snapshot.
type LoadRequest struct {
	ID          string    // unique id, used for log correlation
	Generation  uint64    // ordering key for results
	Reason      string    // e.g. "startup", "reload"
	RequestedAt time.Time // when the request was accepted
}
