package publish

import (
	"net/http"
	"strings"
	"time"

	"github.com/grimaarkan/speedruntracker/pkg/logger"
)

// Option applies a configuration option to the GitHub publisher.
type Option func(*GitHub)

// WithAPIURL points the publisher at another API root, e.g. a test server.
func WithAPIURL(u string) Option {
	return func(g *GitHub) {
		if u = strings.TrimRight(strings.TrimSpace(u), "/"); u != "" {
			g.apiURL = u
		}
	}
}

// WithToken sets the access token. An empty token disables publishing.
func WithToken(token string) Option {
	return func(g *GitHub) { g.token = strings.TrimSpace(token) }
}

// WithRepository sets the target repository.
func WithRepository(owner, name string) Option {
	return func(g *GitHub) {
		g.owner = owner
		g.repo = name
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *GitHub) {
		if hc != nil {
			g.http = hc
		}
	}
}

// WithTimeout bounds every request made by the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(g *GitHub) {
		if d > 0 {
			g.http.Timeout = d
		}
	}
}

// WithClock overrides the time source used in commit messages.
func WithClock(now func() time.Time) Option {
	return func(g *GitHub) {
		if now != nil {
			g.now = now
		}
	}
}

// WithLogger sets a custom logger for the publisher.
func WithLogger(l logger.Logger) Option {
	return func(g *GitHub) {
		if l != nil {
			g.logger = l
		}
	}
}
