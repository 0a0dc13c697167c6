package zipcode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mountly/coverage-backend/internal/logging"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/time/rate"
)

// Record is a ZIP code resolved to its place name.
type Record struct {
	Zipcode   string   `json:"zipcode"`
	City      string   `json:"city"`
	State     string   `json:"state"`
	StateAbbr string   `json:"state_abbr"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Client wraps a Zippopotam-style ZIP lookup API (GET {base}/{zip}).
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRateLimit caps outbound requests per second.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// NewClient creates a lookup client against baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Inf, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type placesResponse struct {
	PostCode string  `json:"post code"`
	Places   []place `json:"places"`
}

type place struct {
	PlaceName         string `json:"place name"`
	State             string `json:"state"`
	StateAbbreviation string `json:"state abbreviation"`
	Latitude          string `json:"latitude"`
	Longitude         string `json:"longitude"`
}

// Fetch resolves a 5-digit ZIP. An unknown ZIP returns nil, nil.
func (c *Client) Fetch(ctx context.Context, zip string) (*Record, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u := fmt.Sprintf("%s/%s", c.baseURL, zip)
	start := time.Now()
	logging.LogRequest("zipcode", http.MethodGet, u, nil)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("zip lookup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		logging.LogResponse("zipcode", resp.StatusCode, time.Since(start), 0)
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("zip lookup returned HTTP %d", resp.StatusCode)
	}

	var body placesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding zip lookup response: %w", err)
	}
	logging.LogResponse("zipcode", resp.StatusCode, time.Since(start), len(body.Places))

	if len(body.Places) == 0 {
		return nil, nil
	}

	p := body.Places[0]
	rec := &Record{
		Zipcode:   zip,
		City:      titleCase(p.PlaceName),
		State:     strings.TrimSpace(p.State),
		StateAbbr: strings.ToUpper(strings.TrimSpace(p.StateAbbreviation)),
	}
	if lat, err := strconv.ParseFloat(p.Latitude, 64); err == nil {
		rec.Latitude = &lat
	}
	if lng, err := strconv.ParseFloat(p.Longitude, 64); err == nil {
		rec.Longitude = &lng
	}
	return rec, nil
}

// titleCase normalizes "DALLAS" and "dallas" to "Dallas". A Caser keeps
// state, so each call gets its own.
func titleCase(s string) string {
	return cases.Title(language.English).String(strings.TrimSpace(s))
}
