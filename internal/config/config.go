package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	RedisURL           string
	CORSAllowedOrigins []string

	Currency        string
	SpinnerDelay    time.Duration
	PopupDuration   time.Duration
	MessageDuration time.Duration
	SessionTTL      time.Duration
	SweepInterval   time.Duration
	SnapshotTTL     time.Duration
	Discounts       map[string]int

	BasketBaseURL   string
	BasketCSRFToken string
	BasketTimeout   time.Duration
	Breaker         BreakerConfig

	CSRFEnabled bool
	RateLimit   RateLimitConfig
	Obs         ObsConfig
}

// BreakerConfig tunes the circuit breaker around the basket service.
type BreakerConfig struct {
	MinRequests  int
	FailureRatio float64
	OpenFor      time.Duration
}

// RateLimitConfig throttles the event endpoint per client.
type RateLimitConfig struct {
	Enabled bool
	// Backend is "redis" for the sliding window limiter or "memory" for the
	// in-process token store.
	Backend string
	Limit   int
	Window  time.Duration
}

// ObsConfig groups logging, metrics and tracing switches.
type ObsConfig struct {
	LogFormat        string
	LogLevel         string
	LogFile          string
	MetricsEnabled   bool
	MetricsNamespace string
	MetricsBuckets   string
	TracingEnabled   bool
	TracingExporter  string
	OTLPEndpoint     string
	SamplingRatio    float64
	ServiceName      string
}

// Load reads configuration from environment variables and optional .env files.
// When CART_CONFIG_FILE names a YAML file its "discounts" map replaces the
// built-in discount codes.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		RedisURL:           strings.TrimSpace(k.String("REDIS_URL")),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),

		Currency:        valueOrDefault(k.String("CART_DEFAULT_CURRENCY"), "£"),
		SpinnerDelay:    parseDuration(k.String("CART_SPINNER_DELAY"), "500ms"),
		PopupDuration:   parseDuration(k.String("CART_POPUP_DURATION"), "300ms"),
		MessageDuration: parseDuration(k.String("CART_MESSAGE_DURATION"), "15s"),
		SessionTTL:      parseDuration(k.String("CART_SESSION_TTL"), "30m"),
		SweepInterval:   parseDuration(k.String("CART_SWEEP_INTERVAL"), "1m"),
		SnapshotTTL:     parseDuration(k.String("SNAPSHOT_TTL"), "720h"),

		BasketBaseURL:   strings.TrimSpace(k.String("BASKET_BASE_URL")),
		BasketCSRFToken: strings.TrimSpace(k.String("BASKET_CSRF_TOKEN")),
		BasketTimeout:   parseDuration(k.String("BASKET_TIMEOUT"), "5s"),
		Breaker: BreakerConfig{
			MinRequests:  parseInt(k.String("BASKET_BREAKER_MIN_REQUESTS"), 5),
			FailureRatio: parseFloat(k.String("BASKET_BREAKER_FAILURE_RATIO"), 0.5),
			OpenFor:      parseDuration(k.String("BASKET_BREAKER_OPEN_FOR"), "30s"),
		},

		CSRFEnabled: parseBoolDefault(k.String("CSRF_ENABLED"), true),
		RateLimit: RateLimitConfig{
			Enabled: parseBoolDefault(k.String("RATE_LIMIT_ENABLED"), true),
			Backend: strings.ToLower(valueOrDefault(k.String("RATE_LIMIT_BACKEND"), "redis")),
			Limit:   parseInt(k.String("RATE_LIMIT_EVENTS"), 120),
			Window:  parseDuration(k.String("RATE_LIMIT_WINDOW"), "1m"),
		},
		Obs: ObsConfig{
			LogFormat:        valueOrDefault(k.String("OBS_LOG_FORMAT"), "json"),
			LogLevel:         valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
			LogFile:          strings.TrimSpace(k.String("OBS_LOG_FILE")),
			MetricsEnabled:   parseBoolDefault(k.String("OBS_ENABLE_PROMETHEUS"), true),
			MetricsNamespace: valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "storefront"),
			MetricsBuckets:   k.String("OBS_METRICS_BUCKETS_MS"),
			TracingEnabled:   parseBool(k.String("OBS_ENABLE_TRACING")),
			TracingExporter:  valueOrDefault(k.String("OBS_TRACING_EXPORTER"), "otlp"),
			OTLPEndpoint:     strings.TrimSpace(k.String("OBS_OTLP_ENDPOINT")),
			SamplingRatio:    parseFloat(k.String("OBS_TRACING_SAMPLING_RATIO"), 1.0),
			ServiceName:      valueOrDefault(k.String("OBS_SERVICE_NAME"), "storefront-cart"),
		},
	}

	if path := strings.TrimSpace(k.String("CART_CONFIG_FILE")); path != "" {
		discounts, err := loadDiscounts(path)
		if err != nil {
			return nil, err
		}
		cfg.Discounts = discounts
	}

	if cfg.BasketBaseURL != "" {
		u, err := url.Parse(cfg.BasketBaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, errors.New("BASKET_BASE_URL must be an absolute URL")
		}
	}
	if cfg.RateLimit.Backend != "redis" && cfg.RateLimit.Backend != "memory" {
		return nil, fmt.Errorf("RATE_LIMIT_BACKEND must be redis or memory, got %q", cfg.RateLimit.Backend)
	}
	if cfg.RateLimit.Limit <= 0 {
		return nil, errors.New("RATE_LIMIT_EVENTS must be positive")
	}

	return cfg, nil
}

func loadDiscounts(path string) (map[string]int, error) {
	fk := koanf.New(".")
	if err := fk.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	raw := fk.Get("discounts")
	entries, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: discounts must be a map of code to percent", path)
	}
	out := make(map[string]int, len(entries))
	for code, v := range entries {
		percent, err := strconv.Atoi(strings.TrimSpace(fmt.Sprint(v)))
		if err != nil {
			return nil, fmt.Errorf("%s: discount %s: %w", path, code, err)
		}
		out[code] = percent
	}
	return out, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func parseFloat(value string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func parseBoolDefault(value string, fallback bool) bool {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return parseBool(value)
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
