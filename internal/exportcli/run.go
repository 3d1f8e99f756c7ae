// Package exportcli implements the one-shot export command used by
// deployments that trigger exports from an external cron instead of running
// the server.
package exportcli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	service "github.com/grimaarkan/speedruntracker/internal/app"
	"github.com/grimaarkan/speedruntracker/internal/domain/catalog"
	"github.com/grimaarkan/speedruntracker/pkg/logger"
)

// AllGames selects every tracked game.
const AllGames = "all"

// ErrExportFailed is returned when any selected game failed.
var ErrExportFailed = errors.New("export failed")

// Exporter is the subset of the service the command drives.
type Exporter interface {
	RunCycle(ctx context.Context) service.CycleReport
	ExportAll(ctx context.Context) []service.GameResult
	PruneExports(ctx context.Context) ([]string, error)
	ExportToRemote(ctx context.Context, slug string) (service.GameResult, error)
	ExportSnapshot(ctx context.Context, slug string) (string, error)
	Game(slug string) (catalog.GameProfile, error)
	PublishEnabled() bool
}

// Options selects what one invocation exports.
type Options struct {
	Game    string
	Publish bool
}

// Run performs one export and writes a per-game summary to out.
// Publishing happens only when requested and a credential is configured.
func Run(ctx context.Context, svc Exporter, opts Options, out io.Writer) error {
	log := logger.Get().Named("wr-export")
	publishing := opts.Publish && svc.PublishEnabled()
	if opts.Publish && !publishing {
		log.Warn(ctx, "publishing requested but no credential configured; exporting locally")
	}

	var results []service.GameResult
	game := strings.TrimSpace(opts.Game)
	switch {
	case game == "" || game == AllGames:
		if publishing {
			report := svc.RunCycle(ctx)
			log.Info(ctx, "export cycle complete", logger.String("cycle_id", report.ID))
			results = report.Results
		} else {
			results = svc.ExportAll(ctx)
			// RunCycle prunes on its own; a local-only run has to as well.
			pruned, err := svc.PruneExports(ctx)
			if err != nil {
				log.Error(ctx, "pruning old exports failed", logger.Error(err))
			} else {
				log.Info(ctx, "old exports pruned", logger.Int("pruned", len(pruned)))
			}
		}
	case publishing:
		res, err := svc.ExportToRemote(ctx, game)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrExportFailed, err)
		}
		results = []service.GameResult{res}
	default:
		g, err := svc.Game(game)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrExportFailed, err)
		}
		res := service.GameResult{Game: g.Name}
		path, err := svc.ExportSnapshot(ctx, game)
		if err != nil {
			res.Error = err.Error()
		} else {
			res.Success, res.Path = true, path
		}
		results = []service.GameResult{res}
	}

	failed := writeSummary(out, results)
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d games", ErrExportFailed, failed, len(results))
	}
	return nil
}

func writeSummary(out io.Writer, results []service.GameResult) int {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GAME\tSTATUS\tPUBLISHED\tDETAIL")
	failed := 0
	for _, r := range results {
		status, detail := "ok", r.Path
		if !r.Success {
			status, detail = "failed", r.Error
			failed++
		}
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", r.Game, status, r.Published, detail)
	}
	_ = tw.Flush()
	return failed
}
