package service

import (
	"github.com/grimaarkan/speedruntracker/internal/adapters/publish"
	"github.com/grimaarkan/speedruntracker/internal/config"
)

// ConfigOptions translates loaded configuration into service options,
// including a GitHub publisher built from the credential settings.
func ConfigOptions(cfg *config.Config) []Option {
	return []Option{
		WithExportDir(cfg.ExportDir),
		WithKeepExports(cfg.KeepExports),
		WithExportInterval(cfg.ExportInterval),
		WithRecoveryInterval(cfg.RecoveryInterval),
		WithCategoryDelay(cfg.CategoryDelay),
		WithRequestTimeout(cfg.RequestTimeout),
		WithSpeedrunBaseURL(cfg.SpeedrunBaseURL),
		WithAutoExport(cfg.AutoExport),
		WithRepository(cfg.GitHubRepoOwner, cfg.GitHubRepoName),
		WithPublisher(publish.NewGitHub(
			publish.WithAPIURL(cfg.GitHubAPIURL),
			publish.WithToken(cfg.GitHubToken),
			publish.WithRepository(cfg.GitHubRepoOwner, cfg.GitHubRepoName),
			publish.WithTimeout(cfg.RequestTimeout),
		)),
	}
}
