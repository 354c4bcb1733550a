package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "veripass.audit", cfg.Kafka.AuditTopic)
	assert.Equal(t, 15*time.Minute, cfg.Redis.CacheTTL)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("VERIPASS_ADDR", ":9090")
	t.Setenv("VERIPASS_ENV", "production")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("MAX_BODY_BYTES", "2048")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092, broker1:9092")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, not-a-cidr")
	t.Setenv("LEDGER_CACHE_TTL", "1h")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, int64(2048), cfg.MaxBodyBytes)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.Kafka.Brokers, "broker list is deduplicated")
	assert.Len(t, cfg.TrustedProxies, 1, "invalid CIDR entries are skipped")
	assert.Equal(t, time.Hour, cfg.Redis.CacheTTL)
}

func TestFromEnvMalformedValuesFallBack(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "soon")
	t.Setenv("MAX_BODY_BYTES", "lots")
	t.Setenv("DB_MAX_OPEN_CONNS", "many")

	cfg := FromEnv()

	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
}
