package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/ladder/internal/domain/pipeline"
	"github.com/okian/ladder/internal/domain/ranking"
)

// ViewHandler handles view requests.
type ViewHandler struct {
	deps ViewDependencies
}

// NewViewHandler creates a new view handler.
func NewViewHandler(deps ViewDependencies) *ViewHandler {
	return &ViewHandler{deps: deps}
}

// HandleGetView handles GET /view?q=&tab=&job=&sort= requests.
func (h *ViewHandler) HandleGetView(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_view"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	sel, err := parseSelection(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.View(r.Context(), sel))
}

// parseSelection reads a selection from query parameters. Absent
// parameters keep their zero value: no query, default tab, no job, unsorted.
func parseSelection(q url.Values) (pipeline.Selection, error) {
	tab, err := parseTab(q.Get("tab"))
	if err != nil {
		return pipeline.Selection{}, err
	}
	spec, err := ranking.ParseSpec(q.Get("sort"))
	if err != nil {
		return pipeline.Selection{}, err
	}
	return pipeline.Selection{
		Query:    q.Get("q"),
		Tab:      tab,
		SubGroup: strings.TrimSpace(q.Get("job")),
		Sort:     spec,
	}, nil
}

func parseTab(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	tab, err := strconv.Atoi(s)
	if err != nil || tab < 0 {
		return 0, fmt.Errorf("invalid tab %q", s)
	}
	return tab, nil
}
