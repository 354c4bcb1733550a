// Package config builds runtime configuration from environment variables
// so main stays lean.
package config

import (
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	pstrings "veripass/pkg/platform/strings"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string
	Environment    string
	AdminToken     string
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	TrustedProxies []netip.Prefix

	// RateLimit is the per-IP request budget per window. Zero disables it.
	RateLimit       int
	RateLimitWindow time.Duration

	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

// DatabaseConfig holds Postgres connection settings. An empty URL means the
// service runs on the in-memory ledger.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis connection settings. An empty URL disables the
// ledger cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CacheTTL     time.Duration
}

// KafkaConfig holds audit stream settings. Empty Brokers means audit events
// stay in the in-memory store.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("VERIPASS_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	environment := os.Getenv("VERIPASS_ENV")
	if environment == "" {
		environment = "development"
	}

	return Server{
		Addr:            addr,
		Environment:     environment,
		AdminToken:      os.Getenv("ADMIN_TOKEN"),
		RequestTimeout:  envDuration("REQUEST_TIMEOUT", 30*time.Second),
		MaxBodyBytes:    envInt64("MAX_BODY_BYTES", 1<<20),
		TrustedProxies:  envPrefixes("TRUSTED_PROXIES"),
		RateLimit:       envInt("RATE_LIMIT", 0),
		RateLimitWindow: envDuration("RATE_LIMIT_WINDOW", time.Minute),
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			CacheTTL:     envDuration("LEDGER_CACHE_TTL", 15*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers:    envList("KAFKA_BROKERS"),
			AuditTopic: envString("AUDIT_TOPIC", "veripass.audit"),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	return pstrings.DedupeAndTrim(strings.Split(v, ","))
}

// envPrefixes parses a comma separated list of CIDR prefixes. Invalid
// entries are skipped so a typo cannot widen the trust boundary.
func envPrefixes(key string) []netip.Prefix {
	var out []netip.Prefix
	for _, p := range envList(key) {
		if prefix, err := netip.ParsePrefix(p); err == nil {
			out = append(out, prefix)
		}
	}
	return out
}
