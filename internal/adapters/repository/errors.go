package repository

import "errors"

// Sentinel kinds for snapshot storage errors.
var (
	// ErrFilesystem wraps any failure to read or write the export directory.
	ErrFilesystem = errors.New("snapshot filesystem error")
	// ErrNotFound is returned for export files that do not exist.
	ErrNotFound = errors.New("export file not found")
	// ErrInvalidName rejects file names that escape the export directory.
	ErrInvalidName = errors.New("invalid export file name")
)
