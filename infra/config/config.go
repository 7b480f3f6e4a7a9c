// Package config loads the engine configuration from the environment, with
// an optional .env file for development.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full server configuration.
type Config struct {
	App       AppConfig       `envPrefix:"APP_"`
	WAL       WALConfig       `envPrefix:"WAL_"`
	Outbox    OutboxConfig    `envPrefix:"OUTBOX_"`
	Intake    IntakeConfig    `envPrefix:"INTAKE_"`
	Broadcast BroadcastConfig `envPrefix:"BROADCAST_"`
	Feed      FeedConfig      `envPrefix:"FEED_"`
}

// AppConfig holds process-wide settings.
type AppConfig struct {
	Name        string `env:"NAME" envDefault:"vela"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9091"`
}

// WALConfig controls the entry journal.
type WALConfig struct {
	Dir         string `env:"DIR" envDefault:"./data/wal"`
	SegmentSize int64  `env:"SEGMENT_SIZE" envDefault:"2097152"`
}

// OutboxConfig controls the trade outbox store.
type OutboxConfig struct {
	Dir string `env:"DIR" envDefault:"./data/outbox"`
}

// IntakeConfig is the Kafka order-command consumer.
type IntakeConfig struct {
	Brokers []string `env:"BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	Topic   string   `env:"TOPIC" envDefault:"orders"`
	GroupID string   `env:"GROUP_ID" envDefault:"vela-engine"`
}

// BroadcastConfig is the Kafka trade publisher.
type BroadcastConfig struct {
	Brokers  []string `env:"BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	Topic    string   `env:"TOPIC" envDefault:"trades"`
	Interval int      `env:"INTERVAL_MS" envDefault:"250"`
}

// FeedConfig is the websocket depth feed.
type FeedConfig struct {
	Addr     string `env:"ADDR" envDefault:":8080"`
	Interval int    `env:"INTERVAL_MS" envDefault:"500"`
	Depth    int    `env:"DEPTH" envDefault:"20"`
}

// Load reads the environment (and .env, when present) into a Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
