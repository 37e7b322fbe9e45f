package config

import (
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Config holds all scaler configuration values.
type Config struct {
	// Store connection
	RedisAddr     string // QUEUESCALE_REDIS_ADDR, default: "localhost:6379"
	RedisPassword string // QUEUESCALE_REDIS_PASSWORD, default: ""
	RedisDB       int    // QUEUESCALE_REDIS_DB, default: 0

	// Scaling groups: records joined by RecordDelim, fields by FieldDelim.
	// Field order per record: minPods|maxPods|keysPerPod|namespace|kind|groupKey|resourceName
	ScalingGroups string // QUEUESCALE_SCALING_GROUPS
	RecordDelim   string // QUEUESCALE_RECORD_DELIM, default: ";"
	FieldDelim    string // QUEUESCALE_FIELD_DELIM, default: "|"

	// Queue semantics
	ActionableStatus string // QUEUESCALE_ACTIONABLE_STATUS, default: "new"
	QueueMatch       string // QUEUESCALE_QUEUE_MATCH, optional SCAN filter, default: "" (all keys)

	// Loop and retry tunables
	PollInterval time.Duration // QUEUESCALE_POLL_INTERVAL, default: 5s
	RetryBackoff time.Duration // QUEUESCALE_RETRY_BACKOFF, default: 1s
	MaxRetries   int           // QUEUESCALE_MAX_RETRIES, default: 3

	// Observability
	HealthPort     int  // QUEUESCALE_HEALTH_PORT, default: 8080
	DebugEndpoints bool // QUEUESCALE_DEBUG_ENDPOINTS, default: false

	InstanceID string // QUEUESCALE_INSTANCE_ID, default: random uuid
}

// Load reads configuration from environment variables and returns a Config
// with defaults applied for any unset values.
func Load() Config {
	cfg := Config{
		RedisAddr:        envOrDefault("QUEUESCALE_REDIS_ADDR", "localhost:6379"),
		RedisPassword:    os.Getenv("QUEUESCALE_REDIS_PASSWORD"),
		RedisDB:          parseInt("QUEUESCALE_REDIS_DB", 0),
		ScalingGroups:    os.Getenv("QUEUESCALE_SCALING_GROUPS"),
		RecordDelim:      envOrDefault("QUEUESCALE_RECORD_DELIM", ";"),
		FieldDelim:       envOrDefault("QUEUESCALE_FIELD_DELIM", "|"),
		ActionableStatus: envOrDefault("QUEUESCALE_ACTIONABLE_STATUS", "new"),
		QueueMatch:       os.Getenv("QUEUESCALE_QUEUE_MATCH"),
		PollInterval:     parseDuration("QUEUESCALE_POLL_INTERVAL", 5*time.Second),
		RetryBackoff:     parseDuration("QUEUESCALE_RETRY_BACKOFF", time.Second),
		MaxRetries:       parseInt("QUEUESCALE_MAX_RETRIES", 3),
		HealthPort:       parseInt("QUEUESCALE_HEALTH_PORT", 8080),
		DebugEndpoints:   parseBool("QUEUESCALE_DEBUG_ENDPOINTS", false),
		InstanceID:       os.Getenv("QUEUESCALE_INSTANCE_ID"),
	}

	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.New().String()
	}

	return cfg
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// parseDuration tries time.ParseDuration first, then falls back to treating
// the value as integer seconds.
func parseDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(v)
	if err == nil {
		return d
	}

	// Fallback: treat as integer seconds
	secs, err := strconv.Atoi(v)
	if err == nil {
		return time.Duration(secs) * time.Second
	}

	return defaultVal
}

func parseBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func parseInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}
