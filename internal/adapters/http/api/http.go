// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/grimaarkan/speedruntracker/internal/adapters/repository"
	service "github.com/grimaarkan/speedruntracker/internal/app"
	"github.com/grimaarkan/speedruntracker/internal/domain/catalog"
	"github.com/grimaarkan/speedruntracker/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	RecordDependencies
	ExportDependencies
	StatsProvider
}

// RecordDependencies expose live leaderboard reads.
type RecordDependencies interface {
	Games() []catalog.GameProfile
	Record(ctx context.Context, slug, key string) (model.Record, error)
	PrimaryRecord(ctx context.Context, slug string) (model.Record, error)
	Categories(ctx context.Context, slug string) (*model.CategorySet, error)
}

// ExportDependencies expose snapshot files and export triggers.
type ExportDependencies interface {
	ExportReadable(ctx context.Context, slug string) (string, error)
	LatestOrExport(ctx context.Context, slug string) (string, error)
	ExportAll(ctx context.Context) []service.GameResult
	ExportToRemote(ctx context.Context, slug string) (service.GameResult, error)
	RunCycle(ctx context.Context) service.CycleReport
	ListExports(ctx context.Context) ([]repository.ExportFile, error)
	ResolveExport(name string) (string, error)
	Repository() (owner, name string)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	recordsHandler *RecordsHandler
	exportsHandler *ExportsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(deps),
		recordsHandler: NewRecordsHandler(deps),
		exportsHandler: NewExportsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("GET /metrics", s.healthHandler.MetricsHandler())
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /api/games", MetricsMiddleware(s.recordsHandler.HandleGames, "games"))
	mux.HandleFunc("GET /api/{game}/wr", MetricsMiddleware(s.recordsHandler.HandlePrimary, "wr"))
	mux.HandleFunc("GET /api/{game}/category/{key}", MetricsMiddleware(s.recordsHandler.HandleCategory, "category"))
	mux.HandleFunc("GET /api/{game}/categories", MetricsMiddleware(s.recordsHandler.HandleCategories, "categories"))

	mux.HandleFunc("GET /exports", MetricsMiddleware(s.exportsHandler.HandleList, "exports"))
	mux.HandleFunc("GET /exports/download/{filename}", MetricsMiddleware(s.exportsHandler.HandleDownload, "download"))
	mux.HandleFunc("GET /export/{game}/records", MetricsMiddleware(s.exportsHandler.HandleReadable, "readable"))
	mux.HandleFunc("GET /latest/{game}/records", MetricsMiddleware(s.exportsHandler.HandleLatest, "latest"))

	// Triggers accept GET as well so plain cron pingers can call them.
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		mux.HandleFunc(method+" /export/now", MetricsMiddleware(s.exportsHandler.HandleExportNow, "export_now"))
		mux.HandleFunc(method+" /export/{game}/to-github", MetricsMiddleware(s.exportsHandler.HandleToRemote, "to_github"))
		mux.HandleFunc(method+" /api/cron/export-to-github", MetricsMiddleware(s.exportsHandler.HandleCron, "cron"))
	}
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

// writeFailure picks status and code from the error chain.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeError(w, status, code, err)
}
