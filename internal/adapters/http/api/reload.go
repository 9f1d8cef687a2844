package api

import (
	"errors"
	"net/http"

	"github.com/okian/ladder/internal/adapters/mq/queue"
)

// ReloadHandler handles reload requests.
type ReloadHandler struct {
	deps ReloadDependencies
}

// NewReloadHandler creates a new reload handler.
func NewReloadHandler(deps ReloadDependencies) *ReloadHandler {
	return &ReloadHandler{deps: deps}
}

type reloadResponse struct {
	Status     string `json:"status"`
	ID         string `json:"id"`
	Generation uint64 `json:"generation"`
}

// HandlePostReload handles POST /reload requests. An optional reason
// query parameter is recorded with the load.
func (h *ReloadHandler) HandlePostReload(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_reload"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	req, err := h.deps.Reload(r.Context(), r.URL.Query().Get("reason"))
	switch {
	case errors.Is(err, queue.ErrFull):
		writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
		return
	case err != nil:
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
		return
	}
	writeJSON(w, http.StatusAccepted, reloadResponse{Status: "accepted", ID: req.ID, Generation: req.Generation})
}
