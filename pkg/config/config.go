// Package config loads the runtime configuration surface from the environment
// with an optional .env file for local development.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/LimeMojito/trading-data-stream/pkg/dukascopy/cache"
)

// Config represents the application configuration.
type Config struct {
	App        AppConfig          `envPrefix:"APP_"`
	Fetcher    cache.DirectConfig `envPrefix:"FETCHER_"`
	LocalCache cache.LocalConfig
	S3         cache.S3Config    `envPrefix:"S3_"`
	Redis      cache.RedisConfig `envPrefix:"REDIS_"`
	Kafka      KafkaConfig       `envPrefix:"KAFKA_"`
}

// AppConfig represents the application configuration.
type AppConfig struct {
	Name     string `env:"NAME" envDefault:"trading-data-stream"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// KafkaConfig locates the broker for publishing completed bars.
type KafkaConfig struct {
	Brokers []string `env:"BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	Topic   string   `env:"TOPIC" envDefault:"bars"`
	Enabled bool     `env:"ENABLED" envDefault:"false"`
}

// Load loads the configuration from the environment.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}
