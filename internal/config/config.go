// Package config reads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Translation engine toggles.
	WarnOnUnsupported     bool
	SupportHindcastValues bool

	// Parameter registry configuration.
	RegistryURL      string
	RegistryEnabled  bool
	RegistryTimeout  time.Duration
	RegistryCacheTTL time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parsePositiveDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	batchSize, err := parseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := parsePositiveDuration("BATCH_FLUSH_INTERVAL", "500ms")
	if err != nil {
		return nil, err
	}

	registryTimeout, err := parsePositiveDuration("REGISTRY_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	registryCacheTTL, err := parsePositiveDuration("REGISTRY_CACHE_TTL", "1h")
	if err != nil {
		return nil, err
	}

	registryURL := os.Getenv("REGISTRY_URL")
	registryEnabled := registryURL != ""
	if v := os.Getenv("REGISTRY_ENABLED"); v != "" {
		registryEnabled = v == "true"
	}

	cfg := &Config{
		KafkaBrokers:       parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   envOrDefault("KAFKA_SOURCE_TOPIC", "grib-sections"),
		KafkaSinkTopic:     envOrDefault("KAFKA_SINK_TOPIC", "grib-metadata"),
		KafkaGroupID:       envOrDefault("KAFKA_GROUP_ID", "gribmeta"),
		HTTPAddr:           envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		LogFormat:          envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		WarnOnUnsupported:     os.Getenv("WARN_ON_UNSUPPORTED") == "true",
		SupportHindcastValues: envOrDefault("SUPPORT_HINDCAST_VALUES", "true") == "true",

		RegistryURL:      registryURL,
		RegistryEnabled:  registryEnabled,
		RegistryTimeout:  registryTimeout,
		RegistryCacheTTL: registryCacheTTL,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.RegistryEnabled && cfg.RegistryURL == "" {
		return nil, errors.New("REGISTRY_ENABLED is true but REGISTRY_URL is not set")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parseBrokers splits a comma-separated broker list, dropping empty entries.
func parseBrokers(s string) []string {
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if b := strings.TrimSpace(p); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}

func parseBatchSize() (int, error) {
	n, err := strconv.Atoi(envOrDefault("BATCH_SIZE", "50"))
	if err != nil || n < 1 || n > 1000 {
		return 0, errors.New("invalid BATCH_SIZE: must be an integer between 1 and 1000")
	}
	return n, nil
}
