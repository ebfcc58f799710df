package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	platformstrings "roster/pkg/platform/strings"
)

// Server captures process level configuration.
type Server struct {
	Addr      string
	LogLevel  string
	LogFormat string

	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Branch   BranchConfig
	Pipeline PipelineConfig
}

// DatabaseConfig configures the Postgres connection. An empty URL selects
// in-memory stores.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the optional Redis client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the vendor event publisher. No brokers selects the
// log publisher.
type KafkaConfig struct {
	Brokers    []string
	Topic      string
	Partitions int32
}

// BranchConfig tunes the mocked branch directory and its cache.
type BranchConfig struct {
	CacheTTL time.Duration
	Latency  time.Duration
}

// PipelineConfig tunes vendor-creation processing.
type PipelineConfig struct {
	SequenceBackend string
	Workers         int
	QueueSize       int
	TxTimeout       time.Duration
}

// Sequence backends.
const (
	SequenceMemory   = "memory"
	SequencePostgres = "postgres"
	SequenceRedis    = "redis"
)

// BranchCacheTTL bounds how stale a cached branch status may be.
var BranchCacheTTL = 5 * time.Minute

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:      envString("ROSTER_ADDR", ":8080"),
		LogLevel:  envString("LOG_LEVEL", "info"),
		LogFormat: envString("LOG_FORMAT", "json"),
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    envList("KAFKA_BROKERS"),
			Topic:      envString("KAFKA_TOPIC", "roster.vendor-events"),
			Partitions: int32(envInt("KAFKA_TOPIC_PARTITIONS", 3)),
		},
		Branch: BranchConfig{
			CacheTTL: envDuration("BRANCH_CACHE_TTL", BranchCacheTTL),
			Latency:  envDuration("BRANCH_LATENCY", 100*time.Millisecond),
		},
		Pipeline: PipelineConfig{
			SequenceBackend: strings.ToLower(os.Getenv("SEQUENCE_BACKEND")),
			Workers:         envInt("WORKER_COUNT", 4),
			QueueSize:       envInt("WORKER_QUEUE_SIZE", 256),
			TxTimeout:       envDuration("PIPELINE_TX_TIMEOUT", 5*time.Second),
		},
	}
	if cfg.Pipeline.SequenceBackend == "" {
		cfg.Pipeline.SequenceBackend = SequenceMemory
		if cfg.Database.URL != "" {
			cfg.Pipeline.SequenceBackend = SequencePostgres
		}
	}
	return cfg
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

func envList(key string) []string {
	return platformstrings.SplitList(os.Getenv(key))
}
