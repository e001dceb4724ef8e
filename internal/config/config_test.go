package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// baseEnv sets the variables every configuration needs and clears the
// optional ones so the host environment cannot leak in.
func baseEnv(t *testing.T) {
	t.Helper()
	for k, v := range map[string]string{
		"APP_ENV":    "test",
		"APP_PORT":   "8080",
		"JWT_SECRET": "s3cret",
		"STORAGE":    "memory",
	} {
		t.Setenv(k, v)
	}
	for _, k := range []string{
		"LOG_LEVEL", "TX_MAX_RETRIES", "ACCESS_TOKEN_TTL_MIN", "REFRESH_TOKEN_TTL_DAYS", "BCRYPT_COST",
		"SERVICE_BREAKFAST_MIN", "SERVICE_LUNCH_MIN", "SERVICE_DINNER_MIN",
		"EVENT_SINK", "RABBITMQ_URL", "AMQP_URL", "KAFKA_BROKERS", "KAFKA_TOPIC",
		"PUBLIC_BASE_URL", "CORS_ORIGINS",
		"BOOTSTRAP_OWNER_EMAIL", "BOOTSTRAP_OWNER_PASSWORD", "BOOTSTRAP_TENANT_ID",
		"DB_USER", "DB_PASS", "DB_HOST", "DB_PORT", "DB_NAME",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	baseEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 3, cfg.TxMaxRetries)
	assert.Equal(t, 15, cfg.AccessTTLMin)
	assert.Equal(t, 7, cfg.RefreshTTLDays)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Nil(t, cfg.ServicePeriods)
	assert.Equal(t, SinkNone, cfg.EventSink)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "reservation.status_changed", cfg.KafkaTopic)
	assert.Equal(t, "http://localhost:8080", cfg.PublicBaseURL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, uint64(1), cfg.Bootstrap.TenantID)
	assert.Empty(t, cfg.DB.User)
}

func TestLoadReportsAllProblems(t *testing.T) {
	baseEnv(t)
	t.Setenv("APP_PORT", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORAGE", "mysql")
	t.Setenv("TX_MAX_RETRIES", "many")
	t.Setenv("EVENT_SINK", "smoke-signals")
	t.Setenv("BOOTSTRAP_OWNER_EMAIL", "owner@example.com")

	_, err := Load()
	require.Error(t, err)
	for _, want := range []string{
		"missing APP_PORT", "missing JWT_SECRET", "missing DB_USER", "missing DB_NAME",
		`invalid int for TX_MAX_RETRIES: "many"`, "EVENT_SINK must be", "missing BOOTSTRAP_OWNER_PASSWORD",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestLoadMySQLAndOverrides(t *testing.T) {
	baseEnv(t)
	t.Setenv("STORAGE", "MySQL")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASS", "pw")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "reservations")
	t.Setenv("SERVICE_LUNCH_MIN", "75")
	t.Setenv("EVENT_SINK", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092, ,k2:9092")
	t.Setenv("PUBLIC_BASE_URL", "https://book.example.com/")
	t.Setenv("CORS_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageMySQL, cfg.Storage)
	assert.Equal(t, "app", cfg.DB.User)
	assert.Equal(t, "pw", cfg.DB.Pass)
	assert.Equal(t, "reservations", cfg.DB.Name)
	require.NotNil(t, cfg.ServicePeriods)
	assert.Equal(t, 75, cfg.ServicePeriods.LunchMin)
	assert.Zero(t, cfg.ServicePeriods.DinnerMin)
	assert.Equal(t, SinkKafka, cfg.EventSink)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "https://book.example.com", cfg.PublicBaseURL)
	assert.Len(t, cfg.CORSOrigins, 2)
}

func TestLoadRateLimitConfig(t *testing.T) {
	for _, k := range []string{"RATE_LIMIT_ENABLED", "RATE_LIMIT_REFILL_TOKENS", "RATE_LIMIT_KEY_STRATEGY", "RATE_LIMIT_PREFIX", "RATE_LIMIT_DEBUG"} {
		t.Setenv(k, "")
	}
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	c := LoadRateLimitConfig()
	assert.True(t, c.Enabled)
	assert.Equal(t, 1, c.Capacity)
	assert.Equal(t, 1, c.RefillTokens)
	assert.Equal(t, "tenant_ip", c.KeyStrategy)
	assert.Equal(t, "rsv:rl", c.Prefix)
	assert.Equal(t, 4*time.Second, c.TTL, "ttl is raised to the full refill time")
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_ENABLED", "off")
	t.Setenv("CACHE_METHODS", "get,head")
	t.Setenv("CACHE_TTL", "")
	t.Setenv("CACHE_PREFIX", "")
	t.Setenv("CACHE_MAX_BODY_BYTES", "")

	c := LoadCacheConfig()
	assert.False(t, c.Enabled)
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, c.Methods)
	assert.Equal(t, 15*time.Second, c.TTL)
	assert.Equal(t, "rsv:cache", c.Prefix)
	assert.Equal(t, 1<<20, c.MaxBodyBytes)
}

func TestLoadRedisConfig(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("REDIS_HOST", "")
	t.Setenv("REDIS_PORT", "")
	t.Setenv("REDIS_PASSWORD", "")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("REDIS_TLS", "true")
	c := LoadRedisConfig()
	assert.Equal(t, RedisConfig{Addr: "cache:6380", DB: 2, TLS: true}, c)

	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6379")
	assert.Equal(t, "redis:6379", LoadRedisConfig().Addr)
}
