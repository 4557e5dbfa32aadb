// Package config reads server configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// HTTPConfig holds the API server address.
type HTTPConfig struct {
	Addr string
}

// SessionConfig selects the checkout session store. DatabaseURL and
// RedisURL are optional; when both are empty sessions are kept in memory.
type SessionConfig struct {
	DatabaseURL string
	RedisURL    string
	TTL         time.Duration
}

// ReliabilityConfig configures the limiter and breaker around the ledger
// and payment clients, and the retry policy for read-only refreshes.
type ReliabilityConfig struct {
	RateLimitInterval   time.Duration
	RateLimitBurst      int
	BreakerMaxFailures  int
	BreakerResetTimeout time.Duration
	FetchRetryAttempts  int
	FetchRetryBaseDelay time.Duration
	FetchRetryMaxDelay  time.Duration
}

// LoadHTTP reads the API server address from env.
func LoadHTTP() (HTTPConfig, error) {
	addr, err := requiredString("HTTP_ADDR")
	if err != nil {
		return HTTPConfig{}, err
	}
	return HTTPConfig{Addr: addr}, nil
}

// LoadSession reads session store settings from env.
func LoadSession() (SessionConfig, error) {
	cfg := SessionConfig{
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisURL:    strings.TrimSpace(os.Getenv("REDIS_URL")),
	}
	ttl, err := requiredDuration("SESSION_TTL")
	if err != nil {
		return cfg, err
	}
	cfg.TTL = ttl
	return cfg, nil
}

// LoadReliability reads client reliability settings from env.
func LoadReliability() (ReliabilityConfig, error) {
	cfg := ReliabilityConfig{}
	var err error

	if cfg.RateLimitInterval, err = requiredDuration("CHECKOUT_RATE_LIMIT_INTERVAL"); err != nil {
		return cfg, err
	}
	if cfg.RateLimitBurst, err = requiredInt("CHECKOUT_RATE_LIMIT_BURST"); err != nil {
		return cfg, err
	}
	if cfg.BreakerMaxFailures, err = requiredInt("CHECKOUT_BREAKER_MAX_FAILURES"); err != nil {
		return cfg, err
	}
	if cfg.BreakerResetTimeout, err = requiredDuration("CHECKOUT_BREAKER_RESET_TIMEOUT"); err != nil {
		return cfg, err
	}
	if cfg.FetchRetryAttempts, err = requiredInt("CHECKOUT_FETCH_RETRY_ATTEMPTS"); err != nil {
		return cfg, err
	}
	if cfg.FetchRetryBaseDelay, err = requiredDuration("CHECKOUT_FETCH_RETRY_BASE_DELAY"); err != nil {
		return cfg, err
	}
	if cfg.FetchRetryMaxDelay, err = requiredDuration("CHECKOUT_FETCH_RETRY_MAX_DELAY"); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func requiredString(name string) (string, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return raw, nil
}

func requiredDuration(name string) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if val < 0 {
		return 0, fmt.Errorf("%s must be >= 0", name)
	}
	return val, nil
}

func requiredInt(name string) (int, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if val < 0 {
		return 0, fmt.Errorf("%s must be >= 0", name)
	}
	return val, nil
}
