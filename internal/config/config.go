package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mvb0005/SweepTogether-sub000/internal/model"
)

// Server holds all configuration for the sweep server process.
type Server struct {
	// Network
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Database. Persistence is optional: with Enabled false the server
	// runs memory-only and loses state on restart.
	Database DatabaseConfig `yaml:"database"`

	// Periodic snapshot interval for dirty sessions, seconds.
	SnapshotIntervalSec int `yaml:"snapshot_interval_sec"`

	// Game defaults, overridable per game at creation.
	Board   model.BoardConfig   `yaml:"board"`
	Scoring model.ScoringConfig `yaml:"scoring"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultServer returns Server config with sensible defaults.
func DefaultServer() Server {
	return Server{
		BindAddress:         "0.0.0.0",
		Port:                8080,
		LogLevel:            "info",
		SnapshotIntervalSec: 30,
		Database: DatabaseConfig{
			Enabled:  false,
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "sweep",
			Password: "sweep",
			DBName:   "sweep",
			SSLMode:  "disable",
		},
		Board:   model.DefaultBoardConfig(),
		Scoring: model.DefaultScoringConfig(),
	}
}

// Load loads server config from a YAML file.
// If the file doesn't exist, returns defaults.
func Load(path string) (Server, error) {
	cfg := DefaultServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
