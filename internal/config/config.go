// Package config defines tracker configuration and its loading hooks.
//
// Conventions:
//   - New builds a Config holding the defaults.
//   - Load layers .env, an optional YAML file and environment variables on top.
//   - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":5000".
	Addr string `koanf:"addr"`

	// ExportDir is where snapshot files are written.
	ExportDir string `koanf:"export_dir"`

	// KeepExports is how many snapshot files survive pruning.
	KeepExports int `koanf:"keep_exports"`

	// ExportInterval is the sleep between successful export cycles.
	ExportInterval time.Duration `koanf:"export_interval"`

	// RecoveryInterval is the sleep after a cycle failed as a whole.
	RecoveryInterval time.Duration `koanf:"recovery_interval"`

	// CategoryDelay spaces consecutive leaderboard requests for one game.
	CategoryDelay time.Duration `koanf:"category_delay"`

	// RequestTimeout bounds every outbound HTTP call.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// AutoExport starts the background export loop with the server.
	AutoExport bool `koanf:"auto_export"`

	// SpeedrunBaseURL is the leaderboard API root.
	SpeedrunBaseURL string `koanf:"speedrun_base_url"`

	// GitHubAPIURL is the remote content store API root.
	GitHubAPIURL string `koanf:"github_api_url"`

	// GitHubToken authorizes publishing; empty disables it.
	GitHubToken string `koanf:"github_token"`

	// GitHubRepoOwner and GitHubRepoName identify the archive repository.
	GitHubRepoOwner string `koanf:"github_repo_owner"`
	GitHubRepoName  string `koanf:"github_repo_name"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":5000",
		ExportDir:        "exports",
		KeepExports:      10,
		ExportInterval:   6 * time.Hour,
		RecoveryInterval: 2 * time.Hour,
		CategoryDelay:    500 * time.Millisecond,
		RequestTimeout:   10 * time.Second,
		AutoExport:       true,
		SpeedrunBaseURL:  "https://www.speedrun.com/api/v1",
		GitHubAPIURL:     "https://api.github.com",
		GitHubRepoOwner:  "GrimAarkan",
		GitHubRepoName:   "speedruntracker",
	}
}

// PublishEnabled reports whether a publishing credential is configured.
func (c *Config) PublishEnabled() bool {
	return strings.TrimSpace(c.GitHubToken) != ""
}

// Validate checks invariants that defaults alone cannot guarantee.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.ExportDir) == "":
		return fmt.Errorf("%w: export_dir must not be empty", ErrInvalidConfig)
	case c.KeepExports < 1:
		return fmt.Errorf("%w: keep_exports must be positive", ErrInvalidConfig)
	case c.ExportInterval <= 0 || c.RecoveryInterval <= 0:
		return fmt.Errorf("%w: export intervals must be positive", ErrInvalidConfig)
	case c.CategoryDelay < 0:
		return fmt.Errorf("%w: category_delay must not be negative", ErrInvalidConfig)
	case c.RequestTimeout <= 0:
		return fmt.Errorf("%w: request_timeout must be positive", ErrInvalidConfig)
	case strings.TrimSpace(c.SpeedrunBaseURL) == "":
		return fmt.Errorf("%w: speedrun_base_url must not be empty", ErrInvalidConfig)
	}
	if c.PublishEnabled() && (c.GitHubRepoOwner == "" || c.GitHubRepoName == "") {
		return fmt.Errorf("%w: github_repo_owner and github_repo_name are required with a token", ErrInvalidConfig)
	}
	return nil
}
