package cmd

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/onit-labs/onit-markets-go/internal/markets"
	"github.com/onit-labs/onit-markets-go/pkg/cache"
	"github.com/onit-labs/onit-markets-go/pkg/config"
)

// setup loads configuration and builds the logger shared by every command.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}

	return cfg, logger, nil
}

// newMarketsClient builds the market query client the reading commands
// share: a ristretto cache sized from config and an HTTP client honoring
// the configured timeout. The caller owns the returned cache and must
// close it.
func newMarketsClient(cfg *config.Config, logger *zap.Logger) (*markets.Client, cache.Cache, error) {
	marketCache, err := cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: cfg.CacheNumCounters,
		MaxCost:     cfg.CacheMaxItems,
		BufferItems: cfg.CacheBufferItems,
		Logger:      logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create market cache: %w", err)
	}

	client := markets.NewClient(&markets.Config{
		BaseURL:    cfg.OnitAPIURL,
		HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout},
		Cache:      marketCache,
		CacheTTL:   cfg.CacheTTL,
		Logger:     logger,
	})

	return client, marketCache, nil
}
