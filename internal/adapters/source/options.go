package source

import (
	"net/http"
	"time"
)

// Option applies a configuration option to the HTTPSource.
type Option func(*HTTPSource)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *HTTPSource) {
		if c != nil {
			s.client = c
		}
	}
}

// WithTimeout bounds one fetch, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(s *HTTPSource) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithMaxBodyBytes caps the payload size read from the upstream.
func WithMaxBodyBytes(n int64) Option {
	return func(s *HTTPSource) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}
