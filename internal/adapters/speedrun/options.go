package speedrun

import (
	"net/http"
	"strings"
	"time"

	"github.com/grimaarkan/speedruntracker/internal/domain/catalog"
	"github.com/grimaarkan/speedruntracker/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL points the client at another API root, e.g. a test server.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base = strings.TrimRight(strings.TrimSpace(base), "/"); base != "" {
			c.baseURL = base
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds every request made by the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithDateLayout sets how submission dates are rendered.
func WithDateLayout(layout string) Option {
	return func(c *Client) {
		if layout != "" {
			c.dateLayout = layout
		}
	}
}

// WithDateSource picks the run field the submission date is read from.
func WithDateSource(src catalog.DateSource) Option {
	return func(c *Client) { c.dateSource = src }
}

// WithGameLabel tags logs and metrics with the game slug.
func WithGameLabel(label string) Option {
	return func(c *Client) {
		if label != "" {
			c.label = label
		}
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}
