package source

import "errors"

// Sentinel kinds for source errors. A fetch failing with any of them is
// served as an empty snapshot.
var (
	ErrUpstreamStatus = errors.New("upstream returned non-2xx status")
	ErrShape          = errors.New("unexpected payload shape")
	ErrTransport      = errors.New("upstream transport failure")
)
