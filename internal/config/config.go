package config

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultGeneratorURL is used when neither FASTAPI_URL nor Parameter Store
	// provide a base URL.
	DefaultGeneratorURL = "https://7b22-34-126-163-104.ngrok-free.app"
	DefaultTimeout      = 60 * time.Second
	DefaultLogLevel     = "info"

	baseURLParam = "/fastapi_url"
)

// Config is resolved once per process and passed to the components that need
// it. Nothing below cmd/ reads the environment.
type Config struct {
	GeneratorBaseURL string
	GenerateTimeout  time.Duration
	ParamPrefix      string
	ExchangeTable    string
	LogLevel         string
}

// ParamLookup reads an optional parameter. *paramstore.Client satisfies it.
type ParamLookup interface {
	Lookup(ctx context.Context, name string) (value string, found bool, err error)
}

// Load builds a Config from getenv. The base URL is taken from FASTAPI_URL,
// then from Parameter Store under PARAM_PREFIX, then DefaultGeneratorURL.
// Trailing slashes are stripped from whichever source wins.
func Load(ctx context.Context, getenv func(string) string, params ParamLookup) (Config, error) {
	if getenv == nil {
		return Config{}, errors.New("config: getenv must not be nil")
	}
	cfg := Config{
		ParamPrefix:     strings.TrimRight(strings.TrimSpace(getenv("PARAM_PREFIX")), "/"),
		ExchangeTable:   strings.TrimSpace(getenv("EXCHANGE_TABLE")),
		LogLevel:        strings.TrimSpace(getenv("LOG_LEVEL")),
		GenerateTimeout: envSeconds(getenv, "GENERATE_TIMEOUT_SECONDS", DefaultTimeout),
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	baseURL, err := resolveBaseURL(ctx, getenv, params, cfg.ParamPrefix)
	if err != nil {
		return Config{}, err
	}
	cfg.GeneratorBaseURL = normalizeBaseURL(baseURL)
	return cfg, nil
}

func resolveBaseURL(ctx context.Context, getenv func(string) string, params ParamLookup, prefix string) (string, error) {
	if v := strings.TrimSpace(getenv("FASTAPI_URL")); v != "" {
		return v, nil
	}
	if prefix == "" {
		return DefaultGeneratorURL, nil
	}
	if params == nil {
		return "", errors.New("config: PARAM_PREFIX is set but no parameter store is available")
	}
	v, found, err := params.Lookup(ctx, prefix+baseURLParam)
	if err != nil {
		return "", fmt.Errorf("config: load base URL: %w", err)
	}
	if !found || v == "" {
		return DefaultGeneratorURL, nil
	}
	return v, nil
}

func normalizeBaseURL(u string) string {
	return strings.TrimRight(strings.TrimSpace(u), "/")
}

func envSeconds(getenv func(string) string, key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return time.Duration(n) * time.Second
}
