package community

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/grover/internal/platform/logger"
)

// Errors returned by the Client.
var (
	// ErrNotFound is returned when the API responds 404.
	ErrNotFound = errors.New("community resource not found")

	// ErrUnavailable is returned for transport failures and unexpected statuses.
	ErrUnavailable = errors.New("community database unavailable")
)

const apiPrefix = "/api/v1"

// Client reads from the community database API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client for baseURL. A nil logger uses slog.Default().
func NewClient(baseURL string, timeout time.Duration, l *slog.Logger) *Client {
	if l == nil {
		l = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     l.With(slog.String("component", "community_client")),
	}
}

// Communities lists every community.
func (c *Client) Communities(ctx context.Context) ([]Community, error) {
	var resp struct {
		Communities []Community `json:"communities"`
	}
	if err := c.get(ctx, "/communities", &resp); err != nil {
		return nil, err
	}
	return resp.Communities, nil
}

// Community fetches one community.
func (c *Client) Community(ctx context.Context, id int64) (*Community, error) {
	var community Community
	if err := c.get(ctx, fmt.Sprintf("/communities/%d", id), &community); err != nil {
		return nil, err
	}
	if community.ID == 0 {
		community.ID = id
	}
	return &community, nil
}

// CareAreas lists the care areas of a community.
func (c *Client) CareAreas(ctx context.Context, communityID int64) ([]CareArea, error) {
	var resp struct {
		CareAreas []CareArea `json:"care_areas"`
	}
	if err := c.get(ctx, fmt.Sprintf("/communities/%d/care_areas", communityID), &resp); err != nil {
		return nil, err
	}
	return resp.CareAreas, nil
}

// Aliases lists alternate names of a community.
func (c *Client) Aliases(ctx context.Context, communityID int64) ([]Alias, error) {
	var resp struct {
		Aliases []Alias `json:"aliases"`
	}
	if err := c.get(ctx, fmt.Sprintf("/communities/%d/aliases", communityID), &resp); err != nil {
		return nil, err
	}
	return resp.Aliases, nil
}

// FloorPlans lists the floor plans of a care area.
func (c *Client) FloorPlans(ctx context.Context, careAreaID int64) ([]FloorPlan, error) {
	var resp struct {
		FloorPlans []FloorPlan `json:"floor_plans"`
	}
	if err := c.get(ctx, fmt.Sprintf("/care_areas/%d/floor_plans", careAreaID), &resp); err != nil {
		return nil, err
	}
	return resp.FloorPlans, nil
}

// Services lists the services, activities, and amenities of a care area.
func (c *Client) Services(ctx context.Context, careAreaID int64) ([]Service, error) {
	var resp struct {
		Services []Service `json:"services_activities_amenities"`
	}
	if err := c.get(ctx, fmt.Sprintf("/care_areas/%d/services", careAreaID), &resp); err != nil {
		return nil, err
	}
	return resp.Services, nil
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	log := logger.FromContextOrDefault(ctx, c.logger)
	url := c.baseURL + apiPrefix + endpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("community API request failed",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, endpoint)
	case resp.StatusCode != http.StatusOK:
		msg := fmt.Sprintf("API request failed with status %d", resp.StatusCode)
		var detail struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(body, &detail) == nil && detail.Detail != "" {
			msg += ": " + detail.Detail
		}
		log.Warn("community API returned error status",
			slog.String("endpoint", endpoint),
			slog.Int("status", resp.StatusCode))
		return fmt.Errorf("%w: %s", ErrUnavailable, msg)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrUnavailable, endpoint, err)
	}
	return nil
}
