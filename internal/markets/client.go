// Package markets implements the typed query layer over the Onit ledger
// API: single-market fetch, participants fetch, and strictly-sequential
// offset pagination of the market list.
package markets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/onit-labs/onit-markets-go/pkg/cache"
	"github.com/onit-labs/onit-markets-go/pkg/codec"
	"github.com/onit-labs/onit-markets-go/pkg/types"
	"go.uber.org/zap"
)

// Client is an HTTP client for the Onit markets API. The cache is injected:
// a server-rendering caller passes a fresh instance per process, a
// long-lived client passes a persistent one. Cache may be nil to disable
// caching entirely.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      cache.Cache
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// Config holds client configuration.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client // optional; defaults to a 30s-timeout client
	Cache      cache.Cache  // optional
	CacheTTL   time.Duration
	Logger     *zap.Logger
}

// NewClient creates a new markets API client.
func NewClient(cfg *Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = 30 * time.Second
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
		cache:      cfg.Cache,
		cacheTTL:   ttl,
		logger:     cfg.Logger,
	}
}

// GetMarket fetches a single market by address. The address predicate is
// checked before any network call; a malformed address never leaves the
// process.
func (c *Client) GetMarket(ctx context.Context, address string) (*types.Market, error) {
	if !types.IsAddress(address) {
		return nil, &types.LocalValidationError{Field: "marketAddress", Reason: fmt.Sprintf("%q is not a canonical address", address)}
	}

	cacheKey := "market:" + types.CanonicalAddressString(address)
	if c.cache != nil {
		if cached, ok := c.cache.Get(cacheKey); ok {
			if market, ok := cached.(*types.Market); ok {
				return market, nil
			}
		}
	}

	payload, err := c.getJSON(ctx, "/markets/"+address, nil)
	if err != nil {
		return nil, err
	}

	market, err := types.MarketFromPayload(payload)
	if err != nil {
		return nil, err
	}

	// An abandoned fetch must not populate the cache behind the caller's
	// back.
	if c.cache != nil && ctx.Err() == nil {
		c.cache.Set(cacheKey, market, c.cacheTTL)
	}

	return market, nil
}

// GetParticipants fetches the participants object for a market. The payload
// shape is upstream-defined and preserved verbatim.
func (c *Client) GetParticipants(ctx context.Context, address string) (map[string]any, error) {
	if !types.IsAddress(address) {
		return nil, &types.LocalValidationError{Field: "marketAddress", Reason: fmt.Sprintf("%q is not a canonical address", address)}
	}

	payload, err := c.getJSON(ctx, "/markets/"+address+"/participants", nil)
	if err != nil {
		return nil, err
	}

	return types.ParticipantsFromPayload(payload)
}

// getJSON performs a GET, decodes the body through the extended-value codec
// (plain or tagged envelope form), and unwraps the {success, data} envelope.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values) (any, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	c.logger.Debug("fetching", zap.String("url", requestURL))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	RequestDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		RequestErrorsTotal.Inc()
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		RequestErrorsTotal.Inc()
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		RequestErrorsTotal.Inc()
		return nil, &types.UpstreamRejectionError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	decoded, err := codec.Decode(body)
	if err != nil {
		return nil, err
	}

	data, err := types.UnwrapEnvelope(decoded, resp.StatusCode)
	if err != nil {
		return nil, err
	}

	RequestsTotal.Inc()

	return data, nil
}
