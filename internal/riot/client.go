package riot

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	regionURLFormat = "https://%s.api.riotgames.com"

	// App-level rate limit headers: "<count>:<window>[,...]"; only the
	// count ahead of the first colon is consumed.
	rateLimitHeader      = "X-App-Rate-Limit"
	rateLimitCountHeader = "X-App-Rate-Limit-Count"

	// Match-id listing pages are capped by the API.
	maxIDsPerPage = 100

	defaultTimeout = 30 * time.Second
)

// Usage is the rate-limit usage a single API response reported.
type Usage struct {
	Used  int `json:"used"`
	Limit int `json:"limit"`
}

// Client is a thin Riot match-v5 client. It does no rate limiting of its
// own; every call reports the server's usage headers back to the caller,
// which feeds them to the tracker and decides when to sleep.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string // overrides the per-region URL when set (tests)
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL pins all requests to a fixed base URL instead of the
// per-region Riot host. Used by tests to point at a local server.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for the given API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("riot api key not set")
	}

	c := &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) baseFor(region string) string {
	if c.baseURL != "" {
		return c.baseURL
	}
	return fmt.Sprintf(regionURLFormat, region)
}

// get performs one authenticated request and decodes the JSON body into
// out. The returned usage is only meaningful when err is nil.
func (c *Client) get(ctx context.Context, rawURL string, out any) (Usage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Usage{}, err
	}
	req.Header.Set("X-Riot-Token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Usage{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Usage{}, fmt.Errorf("riot api returned status %d", resp.StatusCode)
	}

	usage := parseUsage(resp.Header)
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return Usage{}, fmt.Errorf("decode response: %w", err)
	}
	return usage, nil
}

// parseUsage extracts the app rate-limit usage from response headers.
// Missing or malformed headers fall back to 0 used against the default
// window limit; header trouble is never an error.
func parseUsage(h http.Header) Usage {
	u := Usage{Used: 0, Limit: 20}
	if n, ok := leadingCount(h.Get(rateLimitCountHeader)); ok {
		u.Used = n
	}
	if n, ok := leadingCount(h.Get(rateLimitHeader)); ok {
		u.Limit = n
	}
	return u
}

func leadingCount(v string) (int, bool) {
	head, _, _ := strings.Cut(v, ":")
	n, err := strconv.Atoi(head)
	if err != nil {
		return 0, false
	}
	return n, true
}

// AccountByRiotID resolves a Riot ID (gameName#tagLine) to an account.
func (c *Client) AccountByRiotID(ctx context.Context, region, gameName, tagLine string) (*Account, Usage, error) {
	u := fmt.Sprintf("%s/riot/account/v1/accounts/by-riot-id/%s/%s",
		c.baseFor(region), url.PathEscape(gameName), url.PathEscape(tagLine))

	var account Account
	usage, err := c.get(ctx, u, &account)
	if err != nil {
		return nil, Usage{}, err
	}
	return &account, usage, nil
}

// MatchIDs fetches up to maxCount ranked-solo match IDs for a player,
// newest first. It paginates internally in pages of up to 100 until the
// count is reached or the API returns an empty page. A page error after
// the first page degrades to a partial list rather than losing the IDs
// already fetched.
func (c *Client) MatchIDs(ctx context.Context, region, puuid string, maxCount int) ([]string, Usage, error) {
	base := fmt.Sprintf("%s/lol/match/v5/matches/by-puuid/%s/ids", c.baseFor(region), puuid)

	var (
		all   []string
		usage Usage
	)
	for len(all) < maxCount {
		count := maxIDsPerPage
		if remaining := maxCount - len(all); remaining < count {
			count = remaining
		}
		u := fmt.Sprintf("%s?queue=%d&type=ranked&start=%d&count=%d",
			base, QueueRankedSolo, len(all), count)

		var page []string
		pageUsage, err := c.get(ctx, u, &page)
		if err != nil {
			if len(all) == 0 {
				return nil, Usage{}, err
			}
			log.Printf("[Riot] match id page at start=%d failed, keeping %d ids: %v", len(all), len(all), err)
			return all, usage, nil
		}
		usage = pageUsage

		if len(page) == 0 {
			break
		}
		all = append(all, page...)
	}
	return all, usage, nil
}

// Match fetches match details.
func (c *Client) Match(ctx context.Context, region, matchID string) (*MatchResponse, Usage, error) {
	u := fmt.Sprintf("%s/lol/match/v5/matches/%s", c.baseFor(region), matchID)

	var match MatchResponse
	usage, err := c.get(ctx, u, &match)
	if err != nil {
		return nil, Usage{}, err
	}
	return &match, usage, nil
}

// Timeline fetches a match timeline.
func (c *Client) Timeline(ctx context.Context, region, matchID string) (*TimelineResponse, Usage, error) {
	u := fmt.Sprintf("%s/lol/match/v5/matches/%s/timeline", c.baseFor(region), matchID)

	var timeline TimelineResponse
	usage, err := c.get(ctx, u, &timeline)
	if err != nil {
		return nil, Usage{}, err
	}
	return &timeline, usage, nil
}
