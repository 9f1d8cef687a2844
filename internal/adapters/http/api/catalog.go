package api

import "net/http"

// CatalogHandler handles tab and job listings.
type CatalogHandler struct {
	deps CatalogDependencies
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps CatalogDependencies) *CatalogHandler {
	return &CatalogHandler{deps: deps}
}

// HandleGetTabs handles GET /tabs requests.
func (h *CatalogHandler) HandleGetTabs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Tabs(r.Context()))
}

// HandleGetSubGroups handles GET /subgroups?tab=N requests.
func (h *CatalogHandler) HandleGetSubGroups(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_subgroups"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	tab, err := parseTab(r.URL.Query().Get("tab"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.SubGroups(r.Context(), tab))
}
