package config

import (
	redisclient "github.com/vietddude/watchonly/internal/infra/redis"
	"github.com/vietddude/watchonly/internal/infra/storage/file"
	"github.com/vietddude/watchonly/internal/infra/storage/postgres"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Logging  LoggingConfig      `yaml:"logging"`
	Storage  StorageConfig      `yaml:"storage"`
	Redis    redisclient.Config `yaml:"redis"`
	Database postgres.Config    `yaml:"database"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// StorageConfig selects where the keyring snapshot is persisted.
type StorageConfig struct {
	Driver string      `yaml:"driver"` // memory, file, redis, postgres
	File   file.Config `yaml:"file"`
}
