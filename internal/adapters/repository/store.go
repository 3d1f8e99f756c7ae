// Package repository persists snapshots to the export directory and tracks
// the latest one per game.
package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/grimaarkan/speedruntracker/internal/domain/catalog"
	"github.com/grimaarkan/speedruntracker/internal/domain/model"
	"github.com/grimaarkan/speedruntracker/pkg/logger"
	"github.com/grimaarkan/speedruntracker/pkg/metrics"
)

const (
	snapshotExt    = ".txt"
	dirPerm        = 0o755
	filePerm       = 0o644
	maxNameRetries = 100
)

// ExportFile describes one snapshot on disk.
type ExportFile struct {
	Name     string    `json:"filename"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Store persists snapshots. Prior files are never modified.
type Store interface {
	// WriteSnapshot writes the compact archive layout and returns its path.
	WriteSnapshot(ctx context.Context, set *model.CategorySet, game catalog.GameProfile) (string, error)
	// WriteReadable writes the human-readable layout and returns its path.
	WriteReadable(ctx context.Context, set *model.CategorySet, game catalog.GameProfile) (string, error)
	// Latest returns the newest snapshot path for game if it still exists.
	Latest(game string) (string, bool)
	// Prune keeps the newest keep files and returns the removed names.
	Prune(ctx context.Context, keep int) ([]string, error)
	// List returns snapshots newest first.
	List(ctx context.Context) ([]ExportFile, error)
	// Resolve maps a bare file name to its path inside the directory.
	Resolve(name string) (string, error)
}

// FileStore implements Store on a local directory.
type FileStore struct {
	dir    string
	now    func() time.Time
	latest *LatestIndex
	logger logger.Logger

	// compact remembers the last compact path per game for change detection.
	mu      sync.Mutex
	compact map[string]string
}

// NewFileStore creates a store rooted at dir with configuration options.
func NewFileStore(dir string, opts ...Option) *FileStore {
	s := &FileStore{
		dir:     dir,
		now:     time.Now,
		latest:  NewLatestIndex(),
		logger:  logger.Get().Named("repository"),
		compact: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the export directory.
func (s *FileStore) Dir() string { return s.dir }

// LatestIndex returns the shared latest-snapshot index.
func (s *FileStore) LatestIndex() *LatestIndex { return s.latest }

// WriteSnapshot implements Store.
func (s *FileStore) WriteSnapshot(ctx context.Context, set *model.CategorySet, game catalog.GameProfile) (string, error) {
	at := s.now()
	path, err := s.write(game, at, RenderCompact(set, game, at.Format(stampLayout)))
	if err != nil {
		metrics.RecordSnapshotError(game.Slug)
		return "", err
	}

	s.mu.Lock()
	prev, hadPrev := s.compact[game.Slug]
	s.compact[game.Slug] = path
	s.mu.Unlock()
	if hadPrev {
		s.detectChange(ctx, game.Slug, prev, path)
	}

	s.latest.set(game.Slug, path)
	metrics.RecordSnapshotWritten(game.Slug, string(LayoutCompact))
	metrics.UpdateValidRecords(game.Slug, len(set.Valid()))
	s.logger.Info(ctx, "snapshot written",
		logger.String("game", game.Slug),
		logger.String("path", path),
		logger.Int("valid_records", len(set.Valid())))
	return path, nil
}

// WriteReadable implements Store.
func (s *FileStore) WriteReadable(ctx context.Context, set *model.CategorySet, game catalog.GameProfile) (string, error) {
	at := s.now()
	path, err := s.write(game, at, RenderReadable(set, game, at.Format(stampLayout)))
	if err != nil {
		metrics.RecordSnapshotError(game.Slug)
		return "", err
	}
	s.latest.set(game.Slug, path)
	metrics.RecordSnapshotWritten(game.Slug, string(LayoutReadable))
	s.logger.Info(ctx, "readable export written", logger.String("game", game.Slug), logger.String("path", path))
	return path, nil
}

// write creates a fresh file named after the stamp, never overwriting one.
func (s *FileStore) write(game catalog.GameProfile, at time.Time, content string) (string, error) {
	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		return "", fmt.Errorf("%w: create %s: %w", ErrFilesystem, s.dir, err)
	}

	base := fmt.Sprintf("%s_%s", game.FilenamePrefix, at.Format(filenameLayout))
	for i := 0; i < maxNameRetries; i++ {
		name := base + snapshotExt
		if i > 0 {
			name = fmt.Sprintf("%s_%d%s", base, i, snapshotExt)
		}
		path := filepath.Join(s.dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("%w: create %s: %w", ErrFilesystem, path, err)
		}
		if _, err := f.WriteString(content); err != nil {
			_ = f.Close()
			return "", fmt.Errorf("%w: write %s: %w", ErrFilesystem, path, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("%w: close %s: %w", ErrFilesystem, path, err)
		}
		return path, nil
	}
	return "", fmt.Errorf("%w: no free file name for %s", ErrFilesystem, base)
}

func (s *FileStore) detectChange(ctx context.Context, game, prev, next string) {
	diff, err := RecordDiff(prev, next)
	if err != nil {
		s.logger.Debug(ctx, "snapshot diff skipped", logger.String("game", game), logger.Error(err))
		return
	}
	if diff == "" {
		return
	}
	metrics.RecordSnapshotChanged(game)
	s.logger.Info(ctx, "world records changed",
		logger.String("game", game),
		logger.String("diff", diff))
}

// Latest implements Store. A path whose file vanished counts as absent.
func (s *FileStore) Latest(game string) (string, bool) {
	path, ok := s.latest.Get(game)
	if !ok {
		return "", false
	}
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// Prune implements Store. Files are ordered by modification time, newest
// first; ties fall back to name so the result is deterministic.
func (s *FileStore) Prune(ctx context.Context, keep int) ([]string, error) {
	files, err := s.scan()
	if err != nil {
		return nil, err
	}
	if keep < 0 {
		keep = 0
	}

	var removed []string
	var errs []error
	if len(files) > keep {
		for _, f := range files[keep:] {
			if err := os.Remove(filepath.Join(s.dir, f.Name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
				errs = append(errs, err)
				continue
			}
			removed = append(removed, f.Name)
			s.logger.Info(ctx, "pruned old export", logger.String("file", f.Name))
		}
	}

	metrics.RecordSnapshotsPruned(len(removed))
	metrics.UpdateSnapshotFileCount(len(files) - len(removed))
	if len(errs) > 0 {
		return removed, fmt.Errorf("%w: prune: %w", ErrFilesystem, errors.Join(errs...))
	}
	return removed, nil
}

// List implements Store. A missing directory yields an empty list.
func (s *FileStore) List(_ context.Context) ([]ExportFile, error) {
	files, err := s.scan()
	if err != nil {
		return nil, err
	}
	metrics.UpdateSnapshotFileCount(len(files))
	return files, nil
}

func (s *FileStore) scan() ([]ExportFile, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []ExportFile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrFilesystem, s.dir, err)
	}

	files := make([]ExportFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), snapshotExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		files = append(files, ExportFile{Name: e.Name(), Size: info.Size(), Modified: info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool {
		if !files[i].Modified.Equal(files[j].Modified) {
			return files[i].Modified.After(files[j].Modified)
		}
		return files[i].Name > files[j].Name
	})
	return files, nil
}

// Resolve implements Store.
func (s *FileStore) Resolve(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	path := filepath.Join(s.dir, name)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("%w: stat %s: %w", ErrFilesystem, name, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return path, nil
}
