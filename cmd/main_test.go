package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/grimaarkan/speedruntracker/internal/adapters/http/api"
	app "github.com/grimaarkan/speedruntracker/internal/app"
	"github.com/grimaarkan/speedruntracker/internal/config"
	"github.com/grimaarkan/speedruntracker/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given configuration from the environment", t, func() {
		dir := t.TempDir()
		t.Setenv("SPEEDRUN_DOTENV", filepath.Join(dir, "missing.env"))
		t.Setenv("SPEEDRUN_ADDR", ":8081")
		t.Setenv("SPEEDRUN_EXPORT_DIR", dir)
		t.Setenv("SPEEDRUN_AUTO_EXPORT", "false")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		cfg, err := config.Load(ctx)
		convey.So(err, convey.ShouldBeNil)
		convey.So(cfg.Addr, convey.ShouldEqual, ":8081")

		convey.Convey("When the service and routes are wired as in main", func() {
			svc := app.New(app.ConfigOptions(cfg)...)
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer func() { _ = svc.Stop(ctx) }()

			mux := http.NewServeMux()
			api.NewServer(svc).Register(ctx, mux)

			convey.Convey("Then the health and export listing routes respond", func() {
				for _, target := range []string{"/healthz", "/exports", "/api/games"} {
					w := httptest.NewRecorder()
					mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
					convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				}
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When the system metrics updater runs until cancelled", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
		})

		convey.Convey("When an invalid log level is applied", func() {
			convey.So(func() { applyLogLevel(context.Background(), logger.Get(), "loud") }, convey.ShouldNotPanic)
			applyLogLevel(context.Background(), logger.Get(), "info")
		})
	})
}
