package probe

import "time"

// HTTP status code constants.
const (
	StatusOK       = 200
	StatusAccepted = 202
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	ReloadPollInterval = 250 * time.Millisecond
	DefaultReloadWait  = 2 * time.Minute
	ToggleCycle        = 3 // toggles that return a column to unsorted
)

// File permission constants.
const (
	logFilePermission   = 0o600
	directoryPermission = 0o750
)
