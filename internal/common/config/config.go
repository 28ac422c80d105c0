package config

import (
	"fmt"
	"time"
)

// Config is the main application configuration struct.
type Config struct {
	App              AppConfig               `mapstructure:"app"`
	ParameterService ParameterServiceConfig  `mapstructure:"parameter_service"`
	Presets          PresetsConfig           `mapstructure:"presets"`
	Validation       ValidationConfig        `mapstructure:"validation"`
	Database         DatabaseConfig          `mapstructure:"database"`
	Camunda          CamundaConfig           `mapstructure:"camunda"`
	Workers          map[string]WorkerConfig `mapstructure:"workers"`
	Logging          LoggingConfig           `mapstructure:"logging"`
	Metrics          MetricsConfig           `mapstructure:"metrics"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ParameterServiceConfig points at the remote parameter service.
type ParameterServiceConfig struct {
	BaseURL         string `mapstructure:"base_url"`
	Timeout         int    `mapstructure:"timeout"` // milliseconds
	SchemaCacheSize int    `mapstructure:"schema_cache_size"`
	SchemaCacheTTL  int    `mapstructure:"schema_cache_ttl"` // milliseconds
}

func (p ParameterServiceConfig) TimeoutDuration() time.Duration {
	return GetDuration(p.Timeout)
}

func (p ParameterServiceConfig) SchemaCacheTTLDuration() time.Duration {
	return GetDuration(p.SchemaCacheTTL)
}

// Preset storage backends.
const (
	PresetBackendFile     = "file"
	PresetBackendRedis    = "redis"
	PresetBackendPostgres = "postgres"
	PresetBackendMemory   = "memory"
)

type PresetsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Backend    string `mapstructure:"backend"`
	StorageKey string `mapstructure:"storage_key"`
	Directory  string `mapstructure:"directory"` // file backend only
	Table      string `mapstructure:"table"`     // postgres backend only
}

type ValidationConfig struct {
	Debounce int `mapstructure:"debounce"` // milliseconds, 0 disables
}

func (v ValidationConfig) DebounceDuration() time.Duration {
	return GetDuration(v.Debounce)
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Address string `mapstructure:"address"`
}
