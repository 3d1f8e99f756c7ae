// Package speedrun fetches world records from the speedrun.com REST API.
package speedrun

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/grimaarkan/speedruntracker/internal/domain/catalog"
	"github.com/grimaarkan/speedruntracker/internal/domain/model"
	"github.com/grimaarkan/speedruntracker/pkg/logger"
	"github.com/grimaarkan/speedruntracker/pkg/metrics"
)

const (
	// DefaultBaseURL is the public API root.
	DefaultBaseURL = "https://www.speedrun.com/api/v1"

	defaultTimeout  = 10 * time.Second
	maxErrorBody    = 512
	submittedLayout = time.RFC3339
)

// Client resolves the top run of a leaderboard category.
type Client struct {
	baseURL    string
	http       *http.Client
	dateLayout string
	dateSource catalog.DateSource
	label      string
	logger     logger.Logger
}

// NewClient creates a client with configuration options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		http:       &http.Client{Timeout: defaultTimeout},
		dateLayout: catalog.DateISO,
		label:      "unknown",
		logger:     logger.Get().Named("speedrun"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type leaderboardResponse struct {
	Data *struct {
		Runs []struct {
			Run struct {
				Times struct {
					PrimaryT *float64 `json:"primary_t"`
				} `json:"times"`
				Players   []player `json:"players"`
				Date      string   `json:"date"`
				Submitted string   `json:"submitted"`
			} `json:"run"`
		} `json:"runs"`
	} `json:"data"`
}

type player struct {
	Rel string `json:"rel"`
	ID  string `json:"id"`
}

type userResponse struct {
	Data struct {
		Names struct {
			International string `json:"international"`
		} `json:"names"`
	} `json:"data"`
}

// FetchCategoryRecord returns the world record of def on gameID's board.
// A category without runs yields the placeholder record and no error.
func (c *Client) FetchCategoryRecord(ctx context.Context, gameID string, def catalog.CategoryDefinition) (model.Record, error) {
	start := time.Now()
	rec, err := c.fetch(ctx, gameID, def)
	metrics.RecordCategoryFetchLatency(c.label, float64(time.Since(start).Milliseconds()))
	switch {
	case err != nil:
		metrics.RecordCategoryFetch(c.label, metrics.OutcomeFailure)
	case !rec.Valid():
		metrics.RecordCategoryFetch(c.label, metrics.OutcomeEmpty)
	default:
		metrics.RecordCategoryFetch(c.label, metrics.OutcomeSuccess)
	}
	return rec, err
}

func (c *Client) fetch(ctx context.Context, gameID string, def catalog.CategoryDefinition) (model.Record, error) {
	u := c.LeaderboardURL(gameID, def)
	c.logger.Debug(ctx, "fetching leaderboard", logger.String("game", c.label), logger.String("url", u))

	var lb leaderboardResponse
	if err := c.getJSON(ctx, u, &lb); err != nil {
		return model.Record{}, fmt.Errorf("category %s: %w", def.Key, err)
	}
	if lb.Data == nil {
		return model.Record{}, fmt.Errorf("category %s: %w: missing data", def.Key, ErrParse)
	}
	if len(lb.Data.Runs) == 0 {
		return model.NoRuns(def.Key, def.DisplayName), nil
	}

	run := lb.Data.Runs[0].Run
	if run.Times.PrimaryT == nil {
		return model.Record{}, fmt.Errorf("category %s: %w: missing primary time", def.Key, ErrParse)
	}
	if len(run.Players) == 0 {
		return model.Record{}, fmt.Errorf("category %s: %w: missing players", def.Key, ErrParse)
	}

	seconds := *run.Times.PrimaryT
	formatted, detailed := model.FormatTime(seconds)
	return model.Record{
		Category:       def.DisplayName,
		FormattedTime:  formatted,
		DetailedTime:   detailed,
		RawTimeSeconds: seconds,
		RunnerName:     c.runnerName(ctx, run.Players[0]),
		SubmissionDate: c.submissionDate(run.Date, run.Submitted),
		CategoryKey:    def.Key,
	}, nil
}

// LeaderboardURL builds the top-1 query with the definition's filters in order.
func (c *Client) LeaderboardURL(gameID string, def catalog.CategoryDefinition) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s/leaderboards/%s/category/%s?top=1",
		c.baseURL, url.PathEscape(gameID), url.PathEscape(def.RemoteCategoryID))
	for _, v := range def.QueryVariables {
		fmt.Fprintf(&b, "&var-%s=%s", url.QueryEscape(v.VariableID), url.QueryEscape(v.ValueID))
	}
	return b.String()
}

// runnerName resolves a player to a display name. Guests have no user id
// and, like failed lookups, degrade to Unknown.
func (c *Client) runnerName(ctx context.Context, p player) string {
	if p.ID == "" {
		metrics.RecordNameResolutionFallback()
		return model.UnknownRunner
	}

	var user userResponse
	if err := c.getJSON(ctx, c.baseURL+"/users/"+url.PathEscape(p.ID), &user); err != nil {
		c.logger.Warn(ctx, "runner lookup failed", logger.String("game", c.label),
			logger.String("player_id", p.ID), logger.Error(err))
		metrics.RecordNameResolutionFallback()
		return model.UnknownRunner
	}
	if user.Data.Names.International == "" {
		metrics.RecordNameResolutionFallback()
		return model.UnknownRunner
	}
	return user.Data.Names.International
}

// submissionDate renders the field chosen by the date source. DateFromRun
// falls back to the submission stamp when the run has no date.
func (c *Client) submissionDate(date, submitted string) string {
	if c.dateSource == catalog.DateFromRun && date != "" {
		if t, err := time.Parse(catalog.DateISO, date); err == nil {
			return t.Format(c.dateLayout)
		}
	}
	if submitted != "" {
		if t, err := time.Parse(submittedLayout, submitted); err == nil {
			return t.UTC().Format(c.dateLayout)
		}
	}
	return model.UnknownDate
}

func (c *Client) getJSON(ctx context.Context, u string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Debug(ctx, "failed to close response body", logger.Error(cerr))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", ErrParse, err)
	}
	return nil
}
