package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultEndpoint is the live exchange-rate service queried by Fetch.
const DefaultEndpoint = "https://api.exchangerate.host/latest"

// fetchTimeout bounds the live rate lookup; on expiry Fetch degrades to the
// cache or the static fallback.
const fetchTimeout = 10 * time.Second

// Table maps currency code to its rate relative to an implicit base, whose
// own rate is exactly 1.0.
type Table map[string]float64

// Source identifies where a fetched rate table came from, so callers can
// tell a live result from a degraded one.
type Source int

const (
	SourceLive Source = iota
	SourceCache
	SourceFallback
)

func (s Source) String() string {
	switch s {
	case SourceLive:
		return "live"
	case SourceCache:
		return "cache"
	default:
		return "fallback"
	}
}

// Result is a rate table together with its provenance.
type Result struct {
	Base   string `json:"base"`
	Table  Table  `json:"rates"`
	Source Source `json:"-"`
}

// Convert converts an amount between two currency codes using a rate table.
// Unknown codes and equal source/target codes (case-insensitive) yield the
// amount unchanged.
func Convert(amount float64, from, to string, table Table) float64 {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)
	fromRate, okFrom := table[from]
	toRate, okTo := table[to]
	if !okFrom || !okTo {
		return amount
	}
	if from == to {
		return amount
	}
	return amount / fromRate * toRate
}

// Client fetches rate tables from the live service, caching the last good
// table per base currency.
type Client struct {
	endpoint   string
	httpClient *http.Client
	cache      *Cache
}

// NewClient creates a rate Client. A nil cache disables caching.
func NewClient(endpoint string, cache *Cache) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: fetchTimeout},
		cache:      cache,
	}
}

// Fetch returns the rate table for a base currency. Degradation order on
// failure: last cached table for the base, then the static fallback. Fetch
// never fails; Result.Source reports which path was taken.
func (c *Client) Fetch(ctx context.Context, base string) Result {
	base = strings.ToUpper(strings.TrimSpace(base))
	if base == "" {
		base = "USD"
	}

	table, err := c.fetchLive(ctx, base)
	if err == nil {
		if c.cache != nil {
			if cacheErr := c.cache.Put(base, table); cacheErr != nil {
				slog.Warn("Failed to cache rate table", "base", base, "error", cacheErr)
			}
		}
		return Result{Base: base, Table: table, Source: SourceLive}
	}
	slog.Warn("Live rate fetch failed", "base", base, "error", err)

	if c.cache != nil {
		if cached, ok := c.cache.Get(base); ok {
			return Result{Base: base, Table: cached, Source: SourceCache}
		}
	}

	return Result{Base: base, Table: FallbackTable(base), Source: SourceFallback}
}

func (c *Client) fetchLive(ctx context.Context, base string) (Table, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	reqURL := fmt.Sprintf("%s?base=%s", c.endpoint, url.QueryEscape(base))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling rate API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate API error (status %d)", resp.StatusCode)
	}

	var payload struct {
		Rates Table `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(payload.Rates) == 0 {
		return nil, fmt.Errorf("rate API returned no rates")
	}

	// The base always rates exactly 1.0 against itself.
	payload.Rates[base] = 1.0
	return payload.Rates, nil
}

// FallbackTable is the static table used when neither the live service nor
// the cache can supply rates: a USD/MXN pair when the base is one of those,
// else a single-entry identity table.
func FallbackTable(base string) Table {
	switch strings.ToUpper(base) {
	case "USD":
		return Table{"USD": 1.0, "MXN": 18.0}
	case "MXN":
		return Table{"USD": 1.0 / 18.0, "MXN": 1.0}
	default:
		return Table{strings.ToUpper(base): 1.0}
	}
}
