package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string

	// Onit ledger API
	OnitAPIURL  string
	OnitAPIKey  string
	HTTPTimeout time.Duration

	// Credential-forwarding proxy
	ProxyPort       string
	ProxyPathPrefix string

	// Chain RPC used for transaction submission
	RPCURL string

	// Market cache
	CacheNumCounters int64
	CacheMaxItems    int64
	CacheBufferItems int64
	CacheTTL         time.Duration

	// Market listing
	ListPageSize int
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),

		OnitAPIURL:  getEnvOrDefault("ONIT_API_URL", "https://markets.onit-labs.workers.dev/api"),
		OnitAPIKey:  os.Getenv("ONIT_API_KEY"),
		HTTPTimeout: getDurationOrDefault("HTTP_TIMEOUT", 30*time.Second),

		ProxyPort:       getEnvOrDefault("PROXY_PORT", "3001"),
		ProxyPathPrefix: getEnvOrDefault("PROXY_PATH_PREFIX", "/proxy"),

		RPCURL: getEnvOrDefault("RPC_URL", "https://mainnet.base.org"),

		CacheNumCounters: getInt64OrDefault("CACHE_NUM_COUNTERS", 10000),
		CacheMaxItems:    getInt64OrDefault("CACHE_MAX_ITEMS", 1000),
		CacheBufferItems: getInt64OrDefault("CACHE_BUFFER_ITEMS", 64),
		CacheTTL:         getDurationOrDefault("CACHE_TTL", 30*time.Second),

		ListPageSize: getIntOrDefault("LIST_PAGE_SIZE", 10),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.OnitAPIURL == "" {
		return fmt.Errorf("ONIT_API_URL cannot be empty")
	}

	if _, err := url.Parse(c.OnitAPIURL); err != nil {
		return fmt.Errorf("ONIT_API_URL is not a valid URL: %w", err)
	}

	if c.ProxyPort == "" {
		return fmt.Errorf("PROXY_PORT cannot be empty")
	}

	if c.ListPageSize <= 0 {
		return fmt.Errorf("LIST_PAGE_SIZE must be positive, got %d", c.ListPageSize)
	}

	if c.HTTPTimeout < 0 {
		return fmt.Errorf("HTTP_TIMEOUT cannot be negative, got %v", c.HTTPTimeout)
	}

	if c.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL cannot be negative, got %v", c.CacheTTL)
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return parsed
}

func getInt64OrDefault(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}

	return parsed
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return parsed
}
