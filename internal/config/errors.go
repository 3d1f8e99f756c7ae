package config

import "errors"

// Sentinel errors returned by Load, Validate and Watch.
var (
	// ErrInvalidConfig wraps a value that loaded but cannot be used.
	ErrInvalidConfig = errors.New("invalid tracker config")
	// ErrLoadConfig wraps a source (.env, YAML file, environment) that failed to load.
	ErrLoadConfig = errors.New("load tracker config")
)
