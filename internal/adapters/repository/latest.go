package repository

import "sync"

// LatestIndex remembers the most recent snapshot path per game. The store is
// its only writer; handlers and the scheduler read it.
type LatestIndex struct {
	mu    sync.RWMutex
	paths map[string]string
}

// NewLatestIndex returns an empty index.
func NewLatestIndex() *LatestIndex {
	return &LatestIndex{paths: make(map[string]string)}
}

// Get returns the latest path for game, if any.
func (l *LatestIndex) Get(game string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.paths[game]
	return p, ok
}

func (l *LatestIndex) set(game, path string) {
	l.mu.Lock()
	l.paths[game] = path
	l.mu.Unlock()
}
