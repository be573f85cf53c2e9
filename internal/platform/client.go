// Package platform implements the cost data source: an HTTP client for
// the deployment platform's admin API, the fetch error taxonomy, and
// credential profile handling.
package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"costscope/internal/config"
	"costscope/internal/costs"
	"costscope/internal/logging"
)

const defaultTimeout = 15 * time.Second

// Source supplies cost data and the team/project listings the
// hierarchy is built from. Implementations must treat every fetch as
// independent; a failure for one scope and period must not affect any
// other call.
type Source interface {
	// FetchDashboard returns the system-wide summary, daily trend
	// series and top apps for a period.
	FetchDashboard(ctx context.Context, period costs.Period) (*costs.DashboardCostResponse, error)
	// FetchCosts returns the summary and per-app breakdown for a team
	// or project scope.
	FetchCosts(ctx context.Context, scope costs.Scope, period costs.Period) (*costs.CostResponse, error)
	ListTeams(ctx context.Context) ([]costs.Team, error)
	ListProjects(ctx context.Context) ([]costs.Project, error)
}

// Options configures a Client.
type Options struct {
	// Endpoint is the admin API base URL, e.g. https://platform.example.com
	Endpoint string
	// Token is the bearer token sent on every request
	Token string
	// Timeout bounds a single HTTP attempt; defaults to 15s
	Timeout time.Duration
	// Retry tunes the backoff policy; defaults to config.DefaultRetryConfig
	Retry *config.RetryConfig
}

// Client is the admin API implementation of Source.
type Client struct {
	endpoint string
	token    string
	retry    config.RetryConfig
	http     *http.Client
}

// NewSource creates a Client for the given endpoint and token.
func NewSource(opts Options) (*Client, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("platform endpoint is required (set api.endpoint or configure a credentials profile)")
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	retry := config.DefaultRetryConfig
	if opts.Retry != nil {
		retry = *opts.Retry
	}
	return &Client{
		endpoint: strings.TrimRight(opts.Endpoint, "/"),
		token:    opts.Token,
		retry:    retry,
		http:     &http.Client{Timeout: timeout},
	}, nil
}

// FetchDashboard implements Source.
func (c *Client) FetchDashboard(ctx context.Context, period costs.Period) (*costs.DashboardCostResponse, error) {
	var out costs.DashboardCostResponse
	scope := costs.SystemScope()
	if err := c.getJSON(ctx, c.costPath(scope, period), &out); err != nil {
		return nil, c.fetchError(scope, period, err)
	}
	return &out, nil
}

// FetchCosts implements Source.
func (c *Client) FetchCosts(ctx context.Context, scope costs.Scope, period costs.Period) (*costs.CostResponse, error) {
	if scope.Kind == costs.ScopeSystem {
		return nil, fmt.Errorf("system scope has no per-node costs, use FetchDashboard")
	}
	var out costs.CostResponse
	if err := c.getJSON(ctx, c.costPath(scope, period), &out); err != nil {
		return nil, c.fetchError(scope, period, err)
	}
	return &out, nil
}

// ListTeams implements Source.
func (c *Client) ListTeams(ctx context.Context) ([]costs.Team, error) {
	var out []costs.Team
	if err := c.getJSON(ctx, "/api/v1/teams", &out); err != nil {
		return nil, &ListFetchError{Resource: "teams", Err: err}
	}
	return out, nil
}

// ListProjects implements Source.
func (c *Client) ListProjects(ctx context.Context) ([]costs.Project, error) {
	var out []costs.Project
	if err := c.getJSON(ctx, "/api/v1/projects", &out); err != nil {
		return nil, &ListFetchError{Resource: "projects", Err: err}
	}
	return out, nil
}

func (c *Client) costPath(scope costs.Scope, period costs.Period) string {
	base := "/api/v1/costs/system"
	switch scope.Kind {
	case costs.ScopeTeam:
		base = "/api/v1/costs/team/" + url.PathEscape(scope.ID)
	case costs.ScopeProject:
		base = "/api/v1/costs/project/" + url.PathEscape(scope.ID)
	}
	return base + "?period=" + url.QueryEscape(period.String())
}

func (c *Client) fetchError(scope costs.Scope, period costs.Period, err error) error {
	var se *statusError
	if errors.As(err, &se) {
		return &FetchError{Scope: scope, Period: period, Status: se.status, Err: err}
	}
	return &FetchError{Scope: scope, Period: period, Err: err}
}

// statusError carries the HTTP status of a failed response through the
// retry loop so FetchError can report it.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	if e.body != "" {
		return fmt.Sprintf("unexpected status %d: %s", e.status, e.body)
	}
	return fmt.Sprintf("unexpected status %d", e.status)
}

// getJSON performs a GET with auth headers, retrying transient
// failures, and decodes the response body into out.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	fullURL := c.endpoint + path
	start := time.Now()

	err := withRetry(ctx, c.retry, path, func() (bool, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return false, err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return transientError(err), fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			// A short body excerpt is enough for logs; responses may be
			// HTML error pages.
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
			se := &statusError{status: resp.StatusCode, body: strings.TrimSpace(string(body))}
			return transientStatus(resp.StatusCode), se
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return false, fmt.Errorf("decoding response: %w", err)
		}
		return false, nil
	})

	if err != nil {
		return err
	}

	logging.Debug("API request complete", map[string]interface{}{
		"path":       path,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return nil
}
