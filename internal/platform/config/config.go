package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"companygraph/pkg/platform/strings"
)

// DefaultRegistryBaseURL is the GCIS open data API root.
const DefaultRegistryBaseURL = "https://data.gcis.nat.gov.tw/od/data/api"

// Config is the full process configuration.
type Config struct {
	Server   Server
	Registry Registry
	Resolver Resolver
	Redis    RedisConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string
	AllowedOrigins []string
}

// Registry configures the upstream company registry client.
type Registry struct {
	BaseURL     string
	CallTimeout time.Duration
	MaxRetries  uint64
	PageSize    int
	// LookupCacheTTL bounds how long raw upstream responses are reused.
	// Zero disables the lookup cache.
	LookupCacheTTL time.Duration
	// BreakerFailures consecutive outages open the circuit breaker.
	BreakerFailures int
	BreakerCooldown time.Duration
}

// Resolver configures graph traversal.
type Resolver struct {
	Timeout              time.Duration
	JuristicFanOut       int
	CacheNegativeLookups bool
}

// RedisConfig holds Redis connection settings. An empty URL means Redis is
// not configured.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var (
		cfg Config
		err error
	)
	p := envParser{}

	cfg.Server = Server{
		Addr:           envString("COMPANYGRAPH_ADDR", ":5000"),
		AllowedOrigins: strings.SplitList(envString("CORS_ALLOWED_ORIGINS", "*")),
	}

	cfg.Registry = Registry{
		BaseURL:         envString("REGISTRY_BASE_URL", DefaultRegistryBaseURL),
		CallTimeout:     p.duration("REGISTRY_CALL_TIMEOUT", 10*time.Second),
		MaxRetries:      uint64(p.int("REGISTRY_MAX_RETRIES", 2)),
		PageSize:        p.int("REGISTRY_PAGE_SIZE", 50),
		LookupCacheTTL:  p.duration("LOOKUP_CACHE_TTL", 5*time.Minute),
		BreakerFailures: p.int("REGISTRY_BREAKER_FAILURES", 5),
		BreakerCooldown: p.duration("REGISTRY_BREAKER_COOLDOWN", 30*time.Second),
	}

	cfg.Resolver = Resolver{
		Timeout:              p.duration("RESOLVE_TIMEOUT", 2*time.Minute),
		JuristicFanOut:       p.int("JURISTIC_FANOUT", 4),
		CacheNegativeLookups: p.bool("CACHE_NEGATIVE_LOOKUPS", true),
	}

	cfg.Redis = RedisConfig{
		URL:          os.Getenv("REDIS_URL"),
		PoolSize:     p.int("REDIS_POOL_SIZE", 10),
		MinIdleConns: p.int("REDIS_MIN_IDLE_CONNS", 2),
		DialTimeout:  p.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		ReadTimeout:  p.duration("REDIS_READ_TIMEOUT", 3*time.Second),
		WriteTimeout: p.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
	}

	if p.err != nil {
		return Config{}, p.err
	}
	if err = cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Registry.BaseURL == "" {
		return fmt.Errorf("REGISTRY_BASE_URL must not be empty")
	}
	if c.Registry.PageSize <= 0 {
		return fmt.Errorf("REGISTRY_PAGE_SIZE must be positive, got %d", c.Registry.PageSize)
	}
	if c.Resolver.JuristicFanOut <= 0 {
		return fmt.Errorf("JURISTIC_FANOUT must be positive, got %d", c.Resolver.JuristicFanOut)
	}
	if c.Registry.MaxRetries > 10 {
		return fmt.Errorf("REGISTRY_MAX_RETRIES must be at most 10, got %d", c.Registry.MaxRetries)
	}
	return nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envParser records the first malformed variable instead of failing at each
// call site.
type envParser struct {
	err error
}

func (p *envParser) fail(key, value string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s=%q: %w", key, value, err)
	}
}

func (p *envParser) duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return d
}

func (p *envParser) int(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	if n < 0 {
		p.fail(key, v, fmt.Errorf("must not be negative"))
		return def
	}
	return n
}

func (p *envParser) bool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}
	return b
}
