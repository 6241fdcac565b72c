// Package eodhd fetches daily close-price histories from the EODHD API
// (https://eodhd.com). It is the quote-history collaborator of the
// performance series builder.
package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/foliotrack/folio"
	"github.com/foliotrack/folio/date"
)

// APIKeyEnv is the environment variable read when no key is given
// explicitly. Keys are available at https://eodhd.com/.
const APIKeyEnv = "EODHD_API_KEY"

const defaultBaseURL = "https://eodhd.com"

// Client calls the EODHD end-of-day endpoint. It implements
// folio.HistoryProvider.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

var _ folio.HistoryProvider = (*Client)(nil)

// NewClient creates an EODHD client. An empty apiKey falls back to the
// EODHD_API_KEY environment variable.
func NewClient(apiKey string, log zerolog.Logger) *Client {
	if apiKey == "" {
		apiKey = os.Getenv(APIKeyEnv)
	}
	client := folio.CachedClient()
	client.Timeout = 15 * time.Second
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  client,
		log:     log.With().Str("component", "eodhd").Logger(),
	}
}

// WithBaseURL points the client at a different host. For tests.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

// DailyHistories fetches the adjusted daily closes of every symbol for the
// last days calendar days, ending today.
//
// The returned map always carries an entry per requested symbol; a symbol
// the feed knows nothing about maps to an empty history. A rejected API
// key wraps folio.ErrInvalidCredentials and aborts the whole call; any
// other per-symbol HTTP failure degrades that symbol to an empty history.
func (c *Client) DailyHistories(ctx context.Context, symbols []string, days int) (map[string]date.History[float64], error) {
	to := date.Today()
	from := to.Add(-days)

	histories := make(map[string]date.History[float64], len(symbols))
	for _, symbol := range symbols {
		h, err := c.daily(ctx, symbol, from, to)
		if err != nil {
			return nil, fmt.Errorf("eodhd history for %q: %w", symbol, err)
		}
		histories[symbol] = h
		c.log.Debug().Str("symbol", symbol).Int("points", h.Len()).Msg("history fetched")
	}
	return histories, nil
}

// daily fetches one symbol's series from /api/eod.
func (c *Client) daily(ctx context.Context, symbol string, from, to date.Date) (prices date.History[float64], err error) {
	addr := fmt.Sprintf("%s/api/eod/%s?fmt=json&api_token=%s&from=%s&to=%s",
		c.baseURL, url.PathEscape(symbol), url.QueryEscape(c.apiKey), from, to)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return prices, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return prices, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return prices, fmt.Errorf("%s: %w", resp.Status, folio.ErrInvalidCredentials)
	case resp.StatusCode == http.StatusNotFound:
		// Unknown ticker: the feed has nothing, which is not an error.
		c.log.Warn().Str("symbol", symbol).Msg("symbol unknown to feed")
		return prices, nil
	case resp.StatusCode != http.StatusOK:
		c.log.Warn().Str("symbol", symbol).Str("status", resp.Status).Msg("feed error, symbol degraded to empty history")
		return prices, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return prices, err
	}
	// EODHD payload entry, e.g.
	//	{"date":"2024-02-13","open":675.06,"close":668.44,"adjusted_close":667.70,"volume":0}
	type point struct {
		Date  date.Date `json:"date"`
		Close float64   `json:"adjusted_close"`
	}
	content := make([]point, 0)
	if err := json.Unmarshal(body, &content); err != nil {
		return prices, fmt.Errorf("unexpected eodhd payload: %w", err)
	}
	for _, p := range content {
		prices.Append(p.Date, p.Close)
	}
	return prices, nil
}
