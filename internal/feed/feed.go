// Package feed reads stored channel data back from the telemetry backend.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"codeberg.org/mutker/envstation/internal/errors"
)

const (
	// timeLayout is the timestamp format the backend accepts for range queries.
	timeLayout = "2006-01-02T15:04:05Z"

	// historyMaxResults is the backend's per-request ceiling on returned entries.
	historyMaxResults = 8000
)

type Client struct {
	cfg     Config
	client  *http.Client
	backoff backoffConfig
	circuit *gobreaker.CircuitBreaker
	now     func() time.Time
}

type Option func(*Client)

// WithBackoff overrides the retry budget and delays.
func WithBackoff(maxRetries int, initial, max time.Duration) Option {
	return func(c *Client) {
		c.backoff = backoffConfig{
			maxRetries:      maxRetries,
			initialInterval: initial,
			maxInterval:     max,
		}
	}
}

// WithClock overrides the time source used to anchor history windows.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "feed",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	c := &Client{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.timeout()},
		circuit: cb,
		backoff: backoffConfig{
			maxRetries:      3,
			initialInterval: 500 * time.Millisecond,
			maxInterval:     5 * time.Second,
		},
		now: time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Latest returns the most recent stored entry for the channel.
func (c *Client) Latest(ctx context.Context) (Entry, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("api_key", c.cfg.ReadAPIKey)
		values.Set("status", "true")

		u := fmt.Sprintf("%s/channels/%s/feeds/last.json?%s", c.cfg.BaseURL, c.cfg.ChannelID, values.Encode())

		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, c.client, c.backoff, c.circuit, buildRequest)
	if err != nil {
		return Entry{}, err
	}
	defer resp.Body.Close()

	var entry Entry
	if err := json.NewDecoder(resp.Body).Decode(&entry); err != nil {
		return Entry{}, errors.Wrap(ErrDecodeFailed, err)
	}

	return entry, nil
}

// History returns the entries stored during the given window ending now.
func (c *Client) History(ctx context.Context, window time.Duration) (Feed, error) {
	if window <= 0 {
		return Feed{}, errors.WithData(errors.ErrInvalidArgument, "history window must be positive")
	}

	end := c.now().UTC()
	start := end.Add(-window)

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("api_key", c.cfg.ReadAPIKey)
		values.Set("start", start.Format(timeLayout))
		values.Set("end", end.Format(timeLayout))
		values.Set("results", strconv.Itoa(historyMaxResults))

		u := fmt.Sprintf("%s/channels/%s/feeds.json?%s", c.cfg.BaseURL, c.cfg.ChannelID, values.Encode())

		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, c.client, c.backoff, c.circuit, buildRequest)
	if err != nil {
		return Feed{}, err
	}
	defer resp.Body.Close()

	var feed Feed
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return Feed{}, errors.Wrap(ErrDecodeFailed, err)
	}

	return feed, nil
}
