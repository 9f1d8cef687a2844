// Package site serves the embedded leaderboard page.
package site

import (
	"context"
	"net/http"
)

// Register attaches the leaderboard page to mux at /. Unknown paths under /
// fall through to the embedded file server and answer 404.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/", http.FileServer(FS()))
}
