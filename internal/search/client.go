// Package search talks to the username-search service, which checks a
// username against its site catalog and reports per-site status.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xaenox/osint-chat/internal/models"
)

// ErrUnavailable wraps every transport or protocol failure of the service.
var ErrUnavailable = errors.New("search service unavailable")

// StatusClaimed marks a site where the username exists.
const StatusClaimed = "Claimed"

// Searcher finds the sites on which a username is claimed.
type Searcher interface {
	Search(ctx context.Context, username string) ([]models.FoundSite, error)
}

type Request struct {
	Username string   `json:"username"`
	Sites    []string `json:"sites,omitempty"`
	Timeout  int      `json:"timeout"`
	NSFW     bool     `json:"nsfw"`
}

type SiteResult struct {
	SiteName  string   `json:"site_name"`
	URLMain   string   `json:"url_main"`
	URLUser   string   `json:"url_user"`
	Status    string   `json:"status"`
	QueryTime *float64 `json:"query_time"`
	Context   *string  `json:"context"`
}

type Response struct {
	Username   string       `json:"username"`
	TotalSites int          `json:"total_sites"`
	FoundCount int          `json:"found_count"`
	Results    []SiteResult `json:"results"`
}

// Client calls POST {baseURL}/search.
type Client struct {
	baseURL string
	timeout time.Duration
	nsfw    bool
	sites   []string
	http    *http.Client
	logger  *zap.Logger
}

type Option func(*Client)

// WithSites restricts the search to the named sites.
func WithSites(sites ...string) Option {
	return func(c *Client) { c.sites = sites }
}

func WithNSFW(nsfw bool) Option {
	return func(c *Client) { c.nsfw = nsfw }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient builds a client whose searches are bounded by timeout. The same
// timeout is forwarded to the service as its per-site timeout.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http:    &http.Client{},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search returns the claimed sites in the order the service reported them.
func (c *Client) Search(ctx context.Context, username string) ([]models.FoundSite, error) {
	resp, err := c.Query(ctx, username)
	if err != nil {
		return nil, err
	}
	return FilterClaimed(resp.Results), nil
}

// Query returns the raw per-site results.
func (c *Client) Query(ctx context.Context, username string) (*Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		// The service spends up to timeout per site request; leave it room to answer.
		ctx, cancel = context.WithTimeout(ctx, c.timeout+10*time.Second)
		defer cancel()
	}

	body, err := json.Marshal(Request{
		Username: username,
		Sites:    c.sites,
		Timeout:  int(c.timeout / time.Second),
		NSFW:     c.nsfw,
	})
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, httpResp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out Response
	if err := json.NewDecoder(httpResp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	c.logger.Debug("Search completed",
		zap.String("username", username),
		zap.Int("total_sites", out.TotalSites),
		zap.Int("found_count", out.FoundCount),
		zap.Duration("duration", time.Since(start)))
	return &out, nil
}

// FilterClaimed keeps CLAIMED results only.
func FilterClaimed(results []SiteResult) []models.FoundSite {
	found := make([]models.FoundSite, 0, len(results))
	for _, r := range results {
		if !strings.EqualFold(r.Status, StatusClaimed) {
			continue
		}
		site := models.FoundSite{Site: r.SiteName, URL: r.URLUser}
		if r.QueryTime != nil {
			site.QueryTime = *r.QueryTime
		}
		found = append(found, site)
	}
	return found
}
