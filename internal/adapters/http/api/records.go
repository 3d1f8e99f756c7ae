package api

import (
	"net/http"

	"github.com/grimaarkan/speedruntracker/internal/domain/catalog"
)

// RecordsHandler serves live world-record lookups.
type RecordsHandler struct {
	deps RecordDependencies
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(deps RecordDependencies) *RecordsHandler {
	return &RecordsHandler{deps: deps}
}

type categoryResponse struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	CategoryID string `json:"category_id"`
}

type gameResponse struct {
	Slug       string             `json:"slug"`
	Name       string             `json:"name"`
	GameID     string             `json:"game_id"`
	SourceURL  string             `json:"source_url"`
	Categories []categoryResponse `json:"categories"`
}

func newGameResponse(g catalog.GameProfile) gameResponse {
	defs := g.Registry.Definitions()
	out := gameResponse{
		Slug:       g.Slug,
		Name:       g.Name,
		GameID:     g.GameID,
		SourceURL:  g.SourceURL,
		Categories: make([]categoryResponse, 0, len(defs)),
	}
	for _, d := range defs {
		out.Categories = append(out.Categories, categoryResponse{Key: d.Key, Name: d.DisplayName, CategoryID: d.RemoteCategoryID})
	}
	return out
}

// HandleGames handles GET /api/games requests.
func (h *RecordsHandler) HandleGames(w http.ResponseWriter, _ *http.Request) {
	games := h.deps.Games()
	out := make([]gameResponse, 0, len(games))
	for _, g := range games {
		out = append(out, newGameResponse(g))
	}
	writeJSON(w, http.StatusOK, out)
}

// HandlePrimary handles GET /api/{game}/wr requests.
func (h *RecordsHandler) HandlePrimary(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_primary_record"
	rec, err := h.deps.PrimaryRecord(r.Context(), r.PathValue("game"))
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleCategory handles GET /api/{game}/category/{key} requests.
func (h *RecordsHandler) HandleCategory(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_category_record"
	rec, err := h.deps.Record(r.Context(), r.PathValue("game"), r.PathValue("key"))
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleCategories handles GET /api/{game}/categories requests. Categories
// that could not be fetched are null.
func (h *RecordsHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_categories"
	set, err := h.deps.Categories(r.Context(), r.PathValue("game"))
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, set)
}
