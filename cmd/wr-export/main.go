package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	app "github.com/grimaarkan/speedruntracker/internal/app"
	"github.com/grimaarkan/speedruntracker/internal/config"
	"github.com/grimaarkan/speedruntracker/internal/exportcli"
	"github.com/grimaarkan/speedruntracker/pkg/logger"
)

const defaultRunTimeout = 10 * time.Minute

func main() {
	var (
		game    = flag.String("game", exportcli.AllGames, "Game slug to export (outlast, whistleblower, outlast2) or \"all\"")
		publish = flag.Bool("publish", true, "Publish snapshots when a GitHub token is configured")
		timeout = flag.Duration("timeout", defaultRunTimeout, "Upper bound for the whole run")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Error(ctx, "failed to load config", logger.Error(err))
		os.Exit(1)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("info")
	}

	// The one-shot command never starts the background loop.
	svc := app.New(append(app.ConfigOptions(cfg), app.WithAutoExport(false))...)

	if err := exportcli.Run(ctx, svc, exportcli.Options{Game: *game, Publish: *publish}, os.Stdout); err != nil {
		log.Error(ctx, "export run failed", logger.Error(err))
		os.Exit(1)
	}
}
