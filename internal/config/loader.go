package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment knobs read before koanf takes over.
const (
	envPrefix     = "SPEEDRUN_"
	configFileEnv = "SPEEDRUN_CONFIG"
	dotenvFileEnv = "SPEEDRUN_DOTENV"
	defaultDotenv = ".env"
	githubPrefix  = "GITHUB_"
)

// Load builds a Config by layering sources.
// Order of precedence (low -> high):
//  1. defaults (New)
//  2. .env file (SPEEDRUN_DOTENV, default ".env"); never overrides set variables
//  3. YAML file if SPEEDRUN_CONFIG is set
//  4. bare GITHUB_TOKEN / GITHUB_REPO_OWNER / GITHUB_REPO_NAME
//  5. env (prefix SPEEDRUN_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	if err := loadDotenv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if path := os.Getenv(configFileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// GITHUB_TOKEN -> github_token, kept for deployments that predate the prefix.
	githubProvider := env.Provider(githubPrefix, ".", func(s string) string {
		return strings.ToLower(s)
	})
	if err := k.Load(githubProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// SPEEDRUN_EXPORT_DIR -> export_dir. Underscores are preserved to match
	// the flat koanf tags.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotenv() error {
	path := os.Getenv(dotenvFileEnv)
	if path == "" {
		path = defaultDotenv
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: dotenv %s: %w", ErrLoadConfig, path, err)
	}
	return nil
}

// Watch reloads the configuration whenever the YAML file named by
// SPEEDRUN_CONFIG changes and passes the result to onChange. Without a
// configured file it does nothing. The watcher lives for the process.
func Watch(ctx context.Context, onChange func(*Config, error)) error {
	path := os.Getenv(configFileEnv)
	if path == "" {
		return nil
	}
	return file.Provider(path).Watch(func(_ interface{}, err error) {
		if err != nil {
			onChange(nil, fmt.Errorf("%w: watch %s: %w", ErrLoadConfig, path, err))
			return
		}
		onChange(Load(ctx))
	})
}
