// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/ladder/internal/domain/model"
	"github.com/okian/ladder/internal/domain/pipeline"
	"github.com/okian/ladder/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ViewDependencies
	CatalogDependencies
	ReloadDependencies
	HealthDependencies
}

// ViewDependencies renders leaderboard views.
type ViewDependencies interface {
	View(ctx context.Context, sel pipeline.Selection) types.View
}

// CatalogDependencies lists tabs and jobs of the served snapshot.
type CatalogDependencies interface {
	Tabs(ctx context.Context) []types.Tab
	SubGroups(ctx context.Context, tab int) []string
}

// ReloadDependencies requests fresh snapshots.
type ReloadDependencies interface {
	Reload(ctx context.Context, reason string) (model.LoadRequest, error)
}

// HealthDependencies reports on the served snapshot.
type HealthDependencies interface {
	Health(ctx context.Context) types.Health
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	viewHandler    *ViewHandler
	catalogHandler *CatalogHandler
	reloadHandler  *ReloadHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(deps),
		statsHandler:   NewStatsHandler(statsProvider),
		viewHandler:    NewViewHandler(deps),
		catalogHandler: NewCatalogHandler(deps),
		reloadHandler:  NewReloadHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/metrics", MetricsHandler())
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/view", MetricsMiddleware(s.viewHandler.HandleGetView, "view"))
	mux.HandleFunc("/tabs", MetricsMiddleware(s.catalogHandler.HandleGetTabs, "tabs"))
	mux.HandleFunc("/subgroups", MetricsMiddleware(s.catalogHandler.HandleGetSubGroups, "subgroups"))
	mux.HandleFunc("/reload", MetricsMiddleware(s.reloadHandler.HandlePostReload, "reload"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
