package api

import (
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"time"

	service "github.com/grimaarkan/speedruntracker/internal/app"
)

// ExportsHandler serves snapshot files and export triggers.
type ExportsHandler struct {
	deps ExportDependencies
}

// NewExportsHandler creates a new exports handler.
func NewExportsHandler(deps ExportDependencies) *ExportsHandler {
	return &ExportsHandler{deps: deps}
}

type exportFileResponse struct {
	Name     string    `json:"name"`
	Download string    `json:"download"`
	Modified time.Time `json:"modified"`
	Size     int64     `json:"size"`
}

type repositoryResponse struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

type exportListResponse struct {
	Files      []exportFileResponse `json:"files"`
	Repository repositoryResponse   `json:"repository"`
}

type exportNowResponse struct {
	Success bool                 `json:"success"`
	Results []service.GameResult `json:"results"`
}

// HandleList handles GET /exports requests.
func (h *ExportsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_exports"
	files, err := h.deps.ListExports(r.Context())
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	owner, name := h.deps.Repository()
	out := exportListResponse{
		Files:      make([]exportFileResponse, 0, len(files)),
		Repository: repositoryResponse{Owner: owner, Name: name},
	}
	for _, f := range files {
		out.Files = append(out.Files, exportFileResponse{
			Name:     f.Name,
			Download: "/exports/download/" + url.PathEscape(f.Name),
			Modified: f.Modified,
			Size:     f.Size,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleDownload handles GET /exports/download/{filename} requests.
func (h *ExportsHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	const op = "api.download_export"
	path, err := h.deps.ResolveExport(r.PathValue("filename"))
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	serveAttachment(w, r, path)
}

// HandleReadable handles GET /export/{game}/records requests.
func (h *ExportsHandler) HandleReadable(w http.ResponseWriter, r *http.Request) {
	const op = "api.export_readable"
	path, err := h.deps.ExportReadable(r.Context(), r.PathValue("game"))
	if err != nil {
		writeFailure(w, WrapKind(op, ErrExport, err))
		return
	}
	serveAttachment(w, r, path)
}

// HandleLatest handles GET /latest/{game}/records requests.
func (h *ExportsHandler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	const op = "api.latest_export"
	path, err := h.deps.LatestOrExport(r.Context(), r.PathValue("game"))
	if err != nil {
		writeFailure(w, WrapKind(op, ErrExport, err))
		return
	}
	serveAttachment(w, r, path)
}

// HandleExportNow handles /export/now requests.
func (h *ExportsHandler) HandleExportNow(w http.ResponseWriter, r *http.Request) {
	results := h.deps.ExportAll(r.Context())
	out := exportNowResponse{Success: true, Results: results}
	for _, res := range results {
		if !res.Success {
			out.Success = false
		}
	}
	status := http.StatusOK
	if !out.Success {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, out)
}

// HandleToRemote handles /export/{game}/to-github requests.
func (h *ExportsHandler) HandleToRemote(w http.ResponseWriter, r *http.Request) {
	const op = "api.export_to_remote"
	res, err := h.deps.ExportToRemote(r.Context(), r.PathValue("game"))
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	status := http.StatusOK
	if !res.Success {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, res)
}

// HandleCron handles /api/cron/export-to-github requests: one full cycle.
func (h *ExportsHandler) HandleCron(w http.ResponseWriter, r *http.Request) {
	report := h.deps.RunCycle(r.Context())
	status := http.StatusOK
	if !report.Success {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, report)
}

func serveAttachment(w http.ResponseWriter, r *http.Request, path string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeFile(w, r, path)
}
