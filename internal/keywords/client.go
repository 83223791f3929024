package keywords

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/phrazzld/grover/internal/platform/logger"
	"golang.org/x/time/rate"
)

var (
	// ErrResearchFailed is returned when SEMrush rejects a request.
	ErrResearchFailed = errors.New("keyword research failed")
	// ErrNotConfigured is returned when no API key is set.
	ErrNotConfigured = errors.New("keyword research is not configured")
	// ErrNoData is returned when SEMrush has no row for a phrase.
	ErrNoData = errors.New("no keyword data")
)

const (
	exportColumns = "Ph,Nq,Kd,In"
	relatedSort   = "kd_desc"
	// Volume between 100 and 1500, difficulty between 10 and 40.
	relatedFilter = "+|Nq|Gt|99|+|Nq|Lt|1501|+|Kd|Lt|41|+|Kd|Gt|9"
	// SEMrush reports an empty result set as an error body with this code.
	nothingFound = "ERROR 50"
)

// Config configures a Client.
type Config struct {
	APIKey       string
	BaseURL      string
	Database     string
	DisplayLimit int
	// RequestsPerSecond bounds outgoing calls. Zero disables the limit.
	RequestsPerSecond float64
	Timeout           time.Duration
}

// Client calls the SEMrush analytics API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient returns a SEMrush client.
func NewClient(cfg Config, l *slog.Logger) *Client {
	if l == nil {
		l = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.semrush.com/"
	}
	if cfg.Database == "" {
		cfg.Database = "us"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    limiter,
		logger:     l.With(slog.String("component", "semrush_client")),
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.cfg.APIKey != ""
}

// Research is the result of researching a seed phrase.
type Research struct {
	Phrase  string   `json:"phrase"`
	Related []Result `json:"related"`
	Seed    []Result `json:"seed"`
}

// Research fetches keywords related to phrase and the metrics of phrase itself.
func (c *Client) Research(ctx context.Context, phrase string) (*Research, error) {
	related, err := c.Related(ctx, phrase)
	if err != nil {
		return nil, err
	}
	seed, err := c.Seed(ctx, phrase)
	if err != nil {
		return nil, err
	}
	return &Research{Phrase: phrase, Related: related, Seed: seed}, nil
}

// Related lists keywords related to phrase, filtered to moderate volume and
// difficulty and sorted by difficulty descending.
func (c *Client) Related(ctx context.Context, phrase string) ([]Result, error) {
	params := url.Values{}
	params.Set("display_sort", relatedSort)
	params.Set("display_filter", relatedFilter)
	if c.cfg.DisplayLimit > 0 {
		params.Set("display_limit", fmt.Sprint(c.cfg.DisplayLimit))
	}
	return c.query(ctx, "phrase_related", phrase, params)
}

// Seed returns the metrics of phrase across SEMrush databases.
func (c *Client) Seed(ctx context.Context, phrase string) ([]Result, error) {
	return c.query(ctx, "phrase_all", phrase, url.Values{})
}

// Metrics returns the metrics of phrase, or ErrNoData.
func (c *Client) Metrics(ctx context.Context, phrase string) (*Result, error) {
	rows, err := c.Seed(ctx, phrase)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if strings.EqualFold(rows[i].Phrase, phrase) {
			return &rows[i], nil
		}
	}
	if len(rows) > 0 {
		return &rows[0], nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNoData, phrase)
}

func (c *Client) query(ctx context.Context, kind, phrase string, params url.Values) ([]Result, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	if !c.Enabled() {
		return nil, ErrNotConfigured
	}
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return nil, fmt.Errorf("%w: phrase is empty", ErrResearchFailed)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrResearchFailed, err)
		}
	}

	params.Set("type", kind)
	params.Set("key", c.cfg.APIKey)
	params.Set("phrase", phrase)
	params.Set("export_columns", exportColumns)
	params.Set("database", c.cfg.Database)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build semrush request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s request: %v", ErrResearchFailed, kind, redactKey(err, c.cfg.APIKey))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s response: %v", ErrResearchFailed, kind, err)
	}
	text := strings.TrimSpace(string(body))

	if resp.StatusCode != http.StatusOK {
		log.Warn("semrush request failed",
			slog.String("type", kind),
			slog.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrResearchFailed, resp.StatusCode, text)
	}
	if strings.HasPrefix(text, nothingFound) {
		return []Result{}, nil
	}
	if strings.HasPrefix(text, "ERROR") {
		return nil, fmt.Errorf("%w: %s", ErrResearchFailed, text)
	}

	results := Parse(text)
	log.Debug("semrush query completed",
		slog.String("type", kind),
		slog.String("phrase", phrase),
		slog.Int("rows", len(results)))
	return results, nil
}

// redactKey keeps the API key out of transport errors, which embed the URL.
func redactKey(err error, key string) string {
	if key == "" {
		return err.Error()
	}
	return strings.ReplaceAll(err.Error(), key, "[REDACTED]")
}
