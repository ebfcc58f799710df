package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"ROSTER_ADDR", "DATABASE_URL", "REDIS_URL", "KAFKA_BROKERS", "SEQUENCE_BACKEND", "WORKER_COUNT", "BRANCH_CACHE_TTL"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, SequenceMemory, cfg.Pipeline.SequenceBackend)
	assert.Equal(t, 4, cfg.Pipeline.Workers)
	assert.Equal(t, 5*time.Minute, cfg.Branch.CacheTTL)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("ROSTER_ADDR", ":9090")
	t.Setenv("DATABASE_URL", "postgres://roster@localhost/roster")
	t.Setenv("SEQUENCE_BACKEND", "")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092,")
	t.Setenv("WORKER_COUNT", "8")
	t.Setenv("BRANCH_CACHE_TTL", "30s")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, SequencePostgres, cfg.Pipeline.SequenceBackend)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 8, cfg.Pipeline.Workers)
	assert.Equal(t, 30*time.Second, cfg.Branch.CacheTTL)
}

func TestFromEnv_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("WORKER_COUNT", "-3")
	t.Setenv("BRANCH_LATENCY", "soon")
	t.Setenv("SEQUENCE_BACKEND", "Redis")

	cfg := FromEnv()

	assert.Equal(t, 4, cfg.Pipeline.Workers)
	assert.Equal(t, 100*time.Millisecond, cfg.Branch.Latency)
	assert.Equal(t, SequenceRedis, cfg.Pipeline.SequenceBackend)
}
