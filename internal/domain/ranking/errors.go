package ranking

import "errors"

// Sentinel kinds for ranking errors.
var (
	ErrInvalidSpec = errors.New("invalid sort spec")
)
