package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"

	pkgconfig "github.com/qbazz/storefront/pkg/config"
)

// DefaultAPIBase is used when neither API_BASE nor VITE_API_BASE is set.
const DefaultAPIBase = "https://api.qbazz.com"

const minSessionKeyLen = 32

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8080"`

	// Catalog API. API_BASE wins over VITE_API_BASE, matching the browser shell's runtime config.
	APIBase        string        `env:"API_BASE"`
	ViteAPIBase    string        `env:"VITE_API_BASE"`
	CatalogTimeout time.Duration `env:"CATALOG_TIMEOUT" envDefault:"15s"`
	ProductLimit   int           `env:"CATALOG_PRODUCT_LIMIT" envDefault:"24"`
	StoreLimit     int           `env:"CATALOG_STORE_LIMIT" envDefault:"20"`
	SearchLimit    int           `env:"CATALOG_SEARCH_LIMIT" envDefault:"24"`
	UserAgent      string        `env:"CATALOG_USER_AGENT" envDefault:"QbazzWeb/1.0"`
	AcceptLanguage string        `env:"CATALOG_ACCEPT_LANGUAGE" envDefault:"fa-IR,fa;q=0.9"`

	// Shopping assistant
	GeminiAPIKey       string        `env:"GEMINI_API_KEY"`
	GeminiModel        string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	ChatIdleTTL        time.Duration `env:"CHAT_IDLE_TTL" envDefault:"30m"`
	ChatRateLimitRPS   float64       `env:"CHAT_RATE_LIMIT_RPS" envDefault:"0.5"`
	ChatRateLimitBurst int           `env:"CHAT_RATE_LIMIT_BURST" envDefault:"5"`

	// Redis keeps per-visitor search history and registration drafts.
	RedisAddr        string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass        string        `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB          int           `env:"REDIS_DB" envDefault:"0"`
	SearchHistoryTTL time.Duration `env:"SEARCH_HISTORY_TTL" envDefault:"720h"`
	RegistrationTTL  time.Duration `env:"REGISTRATION_TTL" envDefault:"24h"`

	// Kafka. No brokers means registrations are only logged.
	KafkaBrokers      []string `env:"KAFKA_BROKERS" envSeparator:","`
	RegistrationTopic string   `env:"REGISTRATION_TOPIC" envDefault:"storefront.store-registrations"`

	// Visitor cookie and browser access
	SessionKeyBase64   string   `env:"SESSION_KEY"`
	CookieSecure       bool     `env:"COOKIE_SECURE" envDefault:"false"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Tracing
	OTelEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint   string  `env:"OTEL_ENDPOINT" envDefault:"localhost:4318"`
	OTelSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Resolved by Load.
	CatalogBaseURL string
	SessionKey     []byte
	// SessionKeyGenerated is set when SESSION_KEY was missing or unusable.
	SessionKeyGenerated bool
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	return finish(cfg)
}

// LoadFrom reads configuration from vars instead of the process environment.
func LoadFrom(vars map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.LoadFrom(cfg, vars); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.CatalogBaseURL = resolveAPIBase(cfg.APIBase, cfg.ViteAPIBase)
	cfg.SessionKey, cfg.SessionKeyGenerated = resolveSessionKey(cfg.SessionKeyBase64)
	cfg.KafkaBrokers = compact(cfg.KafkaBrokers)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// KafkaEnabled reports whether registrations are published to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// AssistantEnabled reports whether a language model key is configured.
func (c *Config) AssistantEnabled() bool {
	return c.GeminiAPIKey != ""
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}

	u, err := url.Parse(c.CatalogBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid catalog API base %q: must be an absolute http(s) URL", c.CatalogBaseURL)
	}

	if c.CatalogTimeout <= 0 {
		return fmt.Errorf("CATALOG_TIMEOUT must be positive, got %s", c.CatalogTimeout)
	}
	for name, v := range map[string]int{
		"CATALOG_PRODUCT_LIMIT": c.ProductLimit,
		"CATALOG_STORE_LIMIT":   c.StoreLimit,
		"CATALOG_SEARCH_LIMIT":  c.SearchLimit,
	} {
		if v < 1 {
			return fmt.Errorf("%s must be at least 1, got %d", name, v)
		}
	}

	if c.ChatRateLimitRPS <= 0 || c.ChatRateLimitBurst < 1 {
		return fmt.Errorf("chat rate limit must be positive (rps=%v burst=%d)", c.ChatRateLimitRPS, c.ChatRateLimitBurst)
	}
	if c.ChatIdleTTL <= 0 || c.SearchHistoryTTL <= 0 || c.RegistrationTTL <= 0 {
		return fmt.Errorf("CHAT_IDLE_TTL, SEARCH_HISTORY_TTL and REGISTRATION_TTL must be positive")
	}
	if c.KafkaEnabled() && c.RegistrationTopic == "" {
		return fmt.Errorf("REGISTRATION_TOPIC is required when KAFKA_BROKERS is set")
	}
	if c.OTelSampleRate < 0 || c.OTelSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be within [0, 1], got %v", c.OTelSampleRate)
	}
	return nil
}

func resolveAPIBase(apiBase, viteAPIBase string) string {
	base := strings.TrimSpace(apiBase)
	if base == "" {
		base = strings.TrimSpace(viteAPIBase)
	}
	if base == "" {
		base = DefaultAPIBase
	}
	return strings.TrimRight(base, "/")
}

// resolveSessionKey decodes a base64 key; a missing or short key is replaced
// by a random one, which invalidates visitor cookies on restart.
func resolveSessionKey(encoded string) ([]byte, bool) {
	if encoded != "" {
		key, err := base64.StdEncoding.DecodeString(encoded)
		if err == nil && len(key) >= minSessionKeyLen {
			return key, false
		}
	}

	key := make([]byte, minSessionKeyLen)
	if _, err := rand.Read(key); err != nil {
		panic(fmt.Sprintf("read random session key: %v", err))
	}
	return key, true
}

func compact(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
