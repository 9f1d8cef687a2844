package repository

import "errors"

// Sentinel kinds for snapshot store errors.
var (
	ErrStaleGeneration = errors.New("stale snapshot generation")
	ErrNoSnapshot      = errors.New("no snapshot loaded")
)
