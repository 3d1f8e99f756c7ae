package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/grimaarkan/speedruntracker/internal/adapters/http/api"
	"github.com/grimaarkan/speedruntracker/internal/adapters/repository"
	"github.com/grimaarkan/speedruntracker/internal/adapters/speedrun"
	service "github.com/grimaarkan/speedruntracker/internal/app"
	"github.com/grimaarkan/speedruntracker/internal/domain/catalog"
	"github.com/grimaarkan/speedruntracker/internal/domain/model"
	"github.com/grimaarkan/speedruntracker/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// mockDeps answers from fixed data and a temp export directory.
type mockDeps struct {
	dir       string
	latest    map[string]string
	recordErr error
	results   []service.GameResult
	cycles    int
}

func (m *mockDeps) Games() []catalog.GameProfile { return catalog.Games() }

func (m *mockDeps) game(slug string) (catalog.GameProfile, error) {
	return catalog.Lookup(catalog.Games(), slug)
}

func (m *mockDeps) Record(_ context.Context, slug, key string) (model.Record, error) {
	g, err := m.game(slug)
	if err != nil {
		return model.Record{}, err
	}
	def, err := g.Registry.Lookup(key)
	if err != nil {
		return model.Record{}, err
	}
	if m.recordErr != nil {
		return model.Record{}, m.recordErr
	}
	return model.Record{Category: def.DisplayName, CategoryKey: def.Key, RawTimeSeconds: 65.25,
		FormattedTime: "01:05", DetailedTime: "01:05.250", RunnerName: "alpha", SubmissionDate: "2020-01-01"}, nil
}

func (m *mockDeps) PrimaryRecord(ctx context.Context, slug string) (model.Record, error) {
	g, err := m.game(slug)
	if err != nil {
		return model.Record{}, err
	}
	def, _ := g.Registry.Primary()
	return m.Record(ctx, slug, def.Key)
}

func (m *mockDeps) Categories(ctx context.Context, slug string) (*model.CategorySet, error) {
	g, err := m.game(slug)
	if err != nil {
		return nil, err
	}
	set := model.NewCategorySet(g.Registry.Len())
	for i, def := range g.Registry.Definitions() {
		if i == 1 {
			set.Set(def.Key, nil)
			continue
		}
		rec, _ := m.Record(ctx, slug, def.Key)
		set.Set(def.Key, &rec)
	}
	return set, nil
}

func (m *mockDeps) write(name, content string) string {
	path := filepath.Join(m.dir, name)
	_ = os.WriteFile(path, []byte(content), 0o600)
	return path
}

func (m *mockDeps) ExportReadable(_ context.Context, slug string) (string, error) {
	g, err := m.game(slug)
	if err != nil {
		return "", err
	}
	return m.write(g.FilenamePrefix+"_readable.txt", g.Name+" Speedrun World Records\n"), nil
}

func (m *mockDeps) LatestOrExport(ctx context.Context, slug string) (string, error) {
	if path, ok := m.latest[slug]; ok {
		return path, nil
	}
	return m.ExportReadable(ctx, slug)
}

func (m *mockDeps) ExportAll(_ context.Context) []service.GameResult { return m.results }

func (m *mockDeps) ExportToRemote(_ context.Context, slug string) (service.GameResult, error) {
	g, err := m.game(slug)
	if err != nil {
		return service.GameResult{}, err
	}
	return service.GameResult{Game: g.Name, Success: true, Path: "x.txt", Published: true}, nil
}

func (m *mockDeps) RunCycle(_ context.Context) service.CycleReport {
	m.cycles++
	return service.CycleReport{ID: "cycle-1", Success: true, Results: m.results}
}

func (m *mockDeps) ListExports(ctx context.Context) ([]repository.ExportFile, error) {
	return repository.NewFileStore(m.dir).List(ctx)
}

func (m *mockDeps) ResolveExport(name string) (string, error) {
	return repository.NewFileStore(m.dir).Resolve(name)
}

func (m *mockDeps) Repository() (string, string) { return "owner", "records" }

func (m *mockDeps) GetStats() map[string]interface{} {
	return map[string]interface{}{"games": 3}
}

func serve(mux *http.ServeMux, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDeps{dir: t.TempDir(), latest: map[string]string{}}
		mux := http.NewServeMux()
		api.NewServer(deps).Register(context.Background(), mux)

		Convey("Then health, stats and metrics respond", func() {
			So(serve(mux, "GET", "/healthz").Code, ShouldEqual, http.StatusOK)
			So(serve(mux, "GET", "/stats").Body.String(), ShouldContainSubstring, `"games":3`)

			// Prime at least one series so the exposition is non-empty.
			serve(mux, "GET", "/healthz")
			metricsResp := serve(mux, "GET", "/metrics")
			So(metricsResp.Code, ShouldEqual, http.StatusOK)
			So(metricsResp.Body.String(), ShouldContainSubstring, "http_requests_total")
		})

		Convey("Then unknown paths are not found", func() {
			So(serve(mux, "GET", "/unknown").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then read routes reject other methods", func() {
			So(serve(mux, "DELETE", "/api/games").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestRecordsHandler(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDeps{dir: t.TempDir(), latest: map[string]string{}}
		mux := http.NewServeMux()
		api.NewServer(deps).Register(context.Background(), mux)

		Convey("When listing games", func() {
			w := serve(mux, "GET", "/api/games")
			var games []struct {
				Slug       string `json:"slug"`
				Categories []struct {
					Key string `json:"key"`
				} `json:"categories"`
			}
			So(json.Unmarshal(w.Body.Bytes(), &games), ShouldBeNil)

			Convey("Then every profile is listed with its categories", func() {
				So(len(games), ShouldEqual, 3)
				So(games[2].Slug, ShouldEqual, "outlast2")
				So(len(games[2].Categories), ShouldEqual, 7)
			})
		})

		Convey("When asking for the primary record", func() {
			w := serve(mux, "GET", "/api/outlast/wr")
			var rec model.Record
			So(json.Unmarshal(w.Body.Bytes(), &rec), ShouldBeNil)

			Convey("Then the first category is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(rec.CategoryKey, ShouldEqual, "any%")
				So(rec.DetailedTime, ShouldEqual, "01:05.250")
			})
		})

		Convey("When asking for a category by key", func() {
			So(serve(mux, "GET", "/api/outlast2/category/nck").Code, ShouldEqual, http.StatusOK)

			w := serve(mux, "GET", "/api/outlast2/category/speedy")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decodeError(w)["code"], ShouldEqual, "not_found")
		})

		Convey("When the game is unknown", func() {
			w := serve(mux, "GET", "/api/amnesia/wr")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decodeError(w)["message"], ShouldContainSubstring, "amnesia")
		})

		Convey("When the leaderboard is unavailable", func() {
			deps.recordErr = fmt.Errorf("category any%%: %w: status 503", speedrun.ErrUpstream)
			w := serve(mux, "GET", "/api/outlast/wr")
			So(w.Code, ShouldEqual, http.StatusBadGateway)
			So(decodeError(w)["code"], ShouldEqual, "upstream_error")
		})

		Convey("When asking for all categories", func() {
			w := serve(mux, "GET", "/api/whistleblower/categories")
			var set map[string]*model.Record
			So(json.Unmarshal(w.Body.Bytes(), &set), ShouldBeNil)

			Convey("Then failed categories are null", func() {
				So(len(set), ShouldEqual, 6)
				So(set["all_chapters"], ShouldBeNil)
				So(set["any"], ShouldNotBeNil)
			})
		})
	})
}

func TestExportsHandler(t *testing.T) {
	Convey("Given a registered API server with exports on disk", t, func() {
		deps := &mockDeps{dir: t.TempDir(), latest: map[string]string{}}
		mux := http.NewServeMux()
		api.NewServer(deps).Register(context.Background(), mux)

		older := deps.write("outlast_world_records_20240101_000000.txt", "As of: old | ")
		past := time.Now().Add(-time.Hour)
		So(os.Chtimes(older, past, past), ShouldBeNil)
		deps.write("outlast2_records_20240102_000000.txt", "As of: new | ")

		Convey("When listing exports", func() {
			w := serve(mux, "GET", "/exports")
			var body struct {
				Files []struct {
					Name     string `json:"name"`
					Download string `json:"download"`
				} `json:"files"`
				Repository struct {
					Owner string `json:"owner"`
				} `json:"repository"`
			}
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)

			Convey("Then files are newest first with download links", func() {
				So(len(body.Files), ShouldEqual, 2)
				So(body.Files[0].Name, ShouldEqual, "outlast2_records_20240102_000000.txt")
				So(body.Files[1].Download, ShouldEqual, "/exports/download/outlast_world_records_20240101_000000.txt")
				So(body.Repository.Owner, ShouldEqual, "owner")
			})
		})

		Convey("When downloading an export", func() {
			w := serve(mux, "GET", "/exports/download/outlast2_records_20240102_000000.txt")

			Convey("Then it is served as an attachment", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Disposition"), ShouldEqual, `attachment; filename="outlast2_records_20240102_000000.txt"`)
				So(w.Body.String(), ShouldEqual, "As of: new | ")
			})
		})

		Convey("When downloading a missing name", func() {
			w := serve(mux, "GET", "/exports/download/missing.txt")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decodeError(w)["code"], ShouldEqual, "not_found")
		})

		Convey("When asking for the latest without a snapshot", func() {
			w := serve(mux, "GET", "/latest/outlast2/records")

			Convey("Then a readable export is produced and served", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldStartWith, "Outlast 2 Speedrun World Records")
			})
		})

		Convey("When asking for the latest with a snapshot", func() {
			deps.latest["outlast"] = older
			w := serve(mux, "GET", "/latest/outlast/records")
			So(w.Body.String(), ShouldEqual, "As of: old | ")
		})

		Convey("When requesting a readable export for an unknown game", func() {
			So(serve(mux, "GET", "/export/amnesia/records").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When triggering exports for every game", func() {
			deps.results = []service.GameResult{{Game: "Outlast", Success: true}, {Game: "Outlast 2", Success: false, Error: "disk"}}

			w := serve(mux, "POST", "/export/now")

			Convey("Then per-game outcomes are reported", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(w.Body.String(), ShouldContainSubstring, `"success":false`)
				So(w.Body.String(), ShouldContainSubstring, `"error":"disk"`)
			})
		})

		Convey("When publishing one game", func() {
			w := serve(mux, "GET", "/export/outlast/to-github")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"published":true`)

			So(serve(mux, "POST", "/export/amnesia/to-github").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the cron endpoint is called", func() {
			deps.results = []service.GameResult{{Game: "Outlast", Success: true, Path: "a.txt"}}
			w := serve(mux, "POST", "/api/cron/export-to-github")

			Convey("Then exactly one cycle runs and its report is returned", func() {
				So(deps.cycles, ShouldEqual, 1)
				So(w.Code, ShouldEqual, http.StatusOK)
				var body map[string]interface{}
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body["success"], ShouldEqual, true)
				So(body["cycle_id"], ShouldEqual, "cycle-1")
				So(body["results"], ShouldHaveLength, 1)
			})
		})
	})
}
