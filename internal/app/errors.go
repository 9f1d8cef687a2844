package service

import "errors"

var (
	// ErrNotStarted is returned by operations that need a running service.
	ErrNotStarted = errors.New("service not started")
	// ErrNoSource is returned by Start when no source was configured.
	ErrNoSource = errors.New("no snapshot source configured")
	// ErrReloadPending is returned when a reload is already queued.
	ErrReloadPending = errors.New("reload already pending")
)
