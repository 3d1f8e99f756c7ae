// Package publish pushes snapshot files to a GitHub repository through the
// contents API.
package publish

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/grimaarkan/speedruntracker/pkg/logger"
	"github.com/grimaarkan/speedruntracker/pkg/metrics"
)

const (
	// DefaultAPIURL is the public GitHub API root.
	DefaultAPIURL = "https://api.github.com"

	defaultTimeout = 10 * time.Second
	acceptHeader   = "application/vnd.github.v3+json"
	messageLayout  = "2006-01-02 15:04:05"
	maxBodyLog     = 1024
)

// Publisher pushes a local file to a fixed remote path.
type Publisher interface {
	// Publish reports success; failures are logged, never returned.
	Publish(ctx context.Context, localPath, remotePath string) bool
	// Enabled reports whether a credential is configured.
	Enabled() bool
}

// GitHub implements Publisher with read-before-write revision discovery.
type GitHub struct {
	apiURL string
	token  string
	owner  string
	repo   string
	http   *http.Client
	now    func() time.Time
	logger logger.Logger
}

// NewGitHub creates a publisher with configuration options.
func NewGitHub(opts ...Option) *GitHub {
	g := &GitHub{
		apiURL: DefaultAPIURL,
		http:   &http.Client{Timeout: defaultTimeout},
		now:    time.Now,
		logger: logger.Get().Named("publish"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type contentsResponse struct {
	SHA string `json:"sha"`
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
}

// Enabled implements Publisher.
func (g *GitHub) Enabled() bool { return g.token != "" }

// Publish implements Publisher.
func (g *GitHub) Publish(ctx context.Context, localPath, remotePath string) bool {
	start := time.Now()
	err := g.publish(ctx, localPath, remotePath)
	metrics.RecordPublishDuration(float64(time.Since(start).Milliseconds()))

	if errors.Is(err, ErrMissingCredential) {
		metrics.RecordPublish(remotePath, metrics.OutcomeSkipped)
		metrics.RecordErrorByComponent("publish", "missing_credential")
		g.logger.Error(ctx, "publish credential not configured, cannot publish",
			logger.String("remote_path", remotePath))
		return false
	}
	if err != nil {
		metrics.RecordPublish(remotePath, metrics.OutcomeFailure)
		metrics.RecordErrorByComponent("publish", "publish_error")
		g.logger.Error(ctx, "publish failed",
			logger.String("local_path", localPath),
			logger.String("remote_path", remotePath),
			logger.Error(err))
		return false
	}
	metrics.RecordPublish(remotePath, metrics.OutcomeSuccess)
	g.logger.Info(ctx, "published snapshot",
		logger.String("local_path", localPath),
		logger.String("remote", fmt.Sprintf("%s/%s/%s", g.owner, g.repo, remotePath)))
	return true
}

func (g *GitHub) publish(ctx context.Context, localPath, remotePath string) error {
	if !g.Enabled() {
		return ErrMissingCredential
	}
	if g.owner == "" || g.repo == "" {
		return fmt.Errorf("%w: repository not configured", ErrPublish)
	}

	content, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", ErrPublish, localPath, err)
	}

	endpoint := g.contentsURL(remotePath)
	sha, err := g.currentRevision(ctx, endpoint)
	if err != nil {
		return err
	}

	verb := "Add"
	if sha != "" {
		verb = "Update"
	}
	body, err := json.Marshal(putRequest{
		Message: fmt.Sprintf("%s speedrun records %s", verb, g.now().Format(messageLayout)),
		Content: base64.StdEncoding.EncodeToString(content),
		SHA:     sha,
	})
	if err != nil {
		return fmt.Errorf("%w: encode body: %w", ErrPublish, err)
	}

	resp, err := g.do(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer g.closeBody(ctx, resp)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyLog))
		return fmt.Errorf("%w: status %d: %s", ErrPublish, resp.StatusCode, strings.TrimSpace(string(text)))
	}
	return nil
}

// currentRevision returns the sha of the remote object, or "" when absent.
func (g *GitHub) currentRevision(ctx context.Context, endpoint string) (string, error) {
	resp, err := g.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	defer g.closeBody(ctx, resp)

	if resp.StatusCode != http.StatusOK {
		g.logger.Debug(ctx, "remote object absent", logger.String("url", endpoint), logger.Int("status", resp.StatusCode))
		return "", nil
	}
	var existing contentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&existing); err != nil {
		return "", fmt.Errorf("%w: decode revision: %w", ErrPublish, err)
	}
	return existing.SHA, nil
}

func (g *GitHub) contentsURL(remotePath string) string {
	segments := strings.Split(strings.Trim(remotePath, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s",
		g.apiURL, url.PathEscape(g.owner), url.PathEscape(g.repo), strings.Join(segments, "/"))
}

func (g *GitHub) do(ctx context.Context, method, endpoint string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPublish, err)
	}
	req.Header.Set("Authorization", "token "+g.token)
	req.Header.Set("Accept", acceptHeader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrPublish, method, endpoint, err)
	}
	return resp, nil
}

func (g *GitHub) closeBody(ctx context.Context, resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		g.logger.Debug(ctx, "failed to close response body", logger.Error(err))
	}
}
