package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/onit-labs/onit-markets-go/pkg/cache"
	"github.com/onit-labs/onit-markets-go/pkg/config"
)

func TestNewMarketsClient_WiresCacheFromConfig(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": {
				"address": "0x1111111111111111111111111111111111111111",
				"questionTitle": "Who wins the final?",
				"marketType": "score",
				"isActive": true
			}
		}`))
	}))
	defer server.Close()

	cfg := &config.Config{
		OnitAPIURL:       server.URL,
		HTTPTimeout:      5 * time.Second,
		CacheNumCounters: 1000,
		CacheMaxItems:    100,
		CacheBufferItems: 64,
		CacheTTL:         time.Minute,
		ListPageSize:     10,
	}

	client, marketCache, err := newMarketsClient(cfg, zap.NewNop())
	require.NoError(t, err)
	defer marketCache.Close()

	ctx := context.Background()
	address := "0x1111111111111111111111111111111111111111"

	_, err = client.GetMarket(ctx, address)
	require.NoError(t, err)

	marketCache.(*cache.RistrettoCache).Wait()

	_, err = client.GetMarket(ctx, address)
	require.NoError(t, err)

	// The configured cache served the second fetch.
	assert.Equal(t, 1, hits)
}

func TestEffectivePageSize(t *testing.T) {
	cfg := &config.Config{ListPageSize: 25}

	newCmd := func(args ...string) *cobra.Command {
		cmd := &cobra.Command{Use: "test"}
		cmd.Flags().IntP("page-size", "p", 0, "")
		require.NoError(t, cmd.Flags().Parse(args))
		return cmd
	}

	t.Run("defaults-to-config", func(t *testing.T) {
		assert.Equal(t, 25, effectivePageSize(newCmd(), cfg))
	})

	t.Run("explicit-flag-wins", func(t *testing.T) {
		assert.Equal(t, 5, effectivePageSize(newCmd("--page-size", "5"), cfg))
	})
}
