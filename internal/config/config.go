// Package config loads service settings from environment variables and the
// provisioned sensor seed file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/floodwatch/water-level-service/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaAlertTopic  string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	// RecentLimit caps the measurement list served to the dashboard.
	RecentLimit int

	// SensorsFile is the JSON file holding the provisioned sensor set.
	SensorsFile string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	recentLimit, err := parsePositiveInt("RECENT_LIMIT", 100)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:     parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic: envOrDefault("KAFKA_SOURCE_TOPIC", "raw-sample-cycles"),
		KafkaAlertTopic:  envOrDefault("KAFKA_ALERT_TOPIC", "water-level-alerts"),
		KafkaGroupID:     envOrDefault("KAFKA_GROUP_ID", "water-level-monitor"),
		HTTPAddr:         envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
		LogFormat:        envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:  shutdownTimeout,
		RecentLimit:      recentLimit,
		SensorsFile:      envOrDefault("SENSORS_FILE", "sensors.json"),
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaAlertTopic == "" {
		return nil, errors.New("KAFKA_ALERT_TOPIC is required")
	}

	return cfg, nil
}

// LoadSensors reads and validates the provisioned sensor set from the seed file.
func LoadSensors(path string) ([]domain.Sensor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sensors file: %w", err)
	}

	var sensors []domain.Sensor
	if err := json.Unmarshal(data, &sensors); err != nil {
		return nil, fmt.Errorf("parse sensors file %s: %w", path, err)
	}

	for _, s := range sensors {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("sensor %d in %s: %w", s.ID, path, err)
		}
	}
	return sensors, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
