package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultBaseURL          = "http://localhost:5000/api"
	DefaultPresetStorageKey = "nc_program_parameter_presets"
	DefaultPresetDirectory  = ".ncparams"
	DefaultPresetTable      = "parameter_presets"
	DefaultMetricsAddress   = ":8080"
	defaultServiceTimeoutMs = 10000
	defaultSchemaCacheSize  = 64
	defaultSchemaCacheTTLMs = 300000
	defaultWorkerTimeoutMs  = 30000
	defaultWorkerMaxJobs    = 5
	defaultWorkerMaxRetries = 3
	defaultCamundaTimeoutMs = 30000
	defaultCamundaMaxJobs   = 10
)

// WorkingSetKey names the file the CLI keeps its working set in, next to the
// file preset backend under presets.directory.
const WorkingSetKey = "ncparams_working_set"

// Load reads config.yaml from the usual locations, merges
// config.<APP_ENVIRONMENT>.yaml over it and applies environment overrides
// (parameter_service.base_url -> PARAMETER_SERVICE_BASE_URL).
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return decode(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	v.SetDefault("presets.enabled", true)

	// AutomaticEnv only resolves keys viper already knows about.
	for _, key := range []string{
		"parameter_service.base_url",
		"parameter_service.timeout",
		"presets.enabled",
		"presets.backend",
		"presets.storage_key",
		"presets.directory",
		"database.redis.address",
		"database.redis.password",
		"database.postgres.host",
		"database.postgres.user",
		"database.postgres.password",
		"database.postgres.database",
		"camunda.broker_address",
		"logging.level",
		"logging.format",
	} {
		_ = v.BindEnv(key)
	}
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// loadEnvFile loads the first .env found walking up from the working directory.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok || !strings.Contains(strVal, "$") {
			continue
		}
		if expanded := os.ExpandEnv(strVal); expanded != strVal && expanded != "" {
			v.Set(key, expanded)
		}
	}
}

// overrideEmptyConfig fills secrets from their conventional variable names.
func overrideEmptyConfig(cfg *Config) {
	if cfg.ParameterService.BaseURL == DefaultBaseURL {
		if val := os.Getenv("NC_PARAM_API_URL"); val != "" {
			cfg.ParameterService.BaseURL = val
		}
	}
	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
	if cfg.Database.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Database.Redis.Password = val
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "nc-param-manager"
	}

	if cfg.ParameterService.BaseURL == "" {
		cfg.ParameterService.BaseURL = DefaultBaseURL
	}
	cfg.ParameterService.BaseURL = strings.TrimRight(cfg.ParameterService.BaseURL, "/")
	if cfg.ParameterService.Timeout == 0 {
		cfg.ParameterService.Timeout = defaultServiceTimeoutMs
	}
	if cfg.ParameterService.SchemaCacheSize == 0 {
		cfg.ParameterService.SchemaCacheSize = defaultSchemaCacheSize
	}
	if cfg.ParameterService.SchemaCacheTTL == 0 {
		cfg.ParameterService.SchemaCacheTTL = defaultSchemaCacheTTLMs
	}

	if cfg.Presets.Backend == "" {
		cfg.Presets.Backend = PresetBackendFile
	}
	if cfg.Presets.StorageKey == "" {
		cfg.Presets.StorageKey = DefaultPresetStorageKey
	}
	if cfg.Presets.Directory == "" {
		cfg.Presets.Directory = DefaultPresetDirectory
	}
	if cfg.Presets.Table == "" {
		cfg.Presets.Table = DefaultPresetTable
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 2
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = defaultCamundaMaxJobs
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = defaultCamundaTimeoutMs
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = defaultCamundaTimeoutMs
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = DefaultMetricsAddress
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = defaultWorkerMaxJobs
		}
		if worker.Timeout == 0 {
			worker.Timeout = defaultWorkerTimeoutMs
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = defaultWorkerMaxRetries
		}
		cfg.Workers[key] = worker
	}
}

func validateConfig(cfg *Config) error {
	if !strings.HasPrefix(cfg.ParameterService.BaseURL, "http://") &&
		!strings.HasPrefix(cfg.ParameterService.BaseURL, "https://") {
		return fmt.Errorf("parameter_service.base_url must be an http(s) URL, got %q", cfg.ParameterService.BaseURL)
	}
	if cfg.ParameterService.Timeout < 0 {
		return fmt.Errorf("parameter_service.timeout must be positive")
	}
	if cfg.Validation.Debounce < 0 {
		return fmt.Errorf("validation.debounce must not be negative")
	}

	switch cfg.Presets.Backend {
	case PresetBackendFile:
		if cfg.Presets.StorageKey == WorkingSetKey {
			return fmt.Errorf("presets.storage_key %q is reserved for the CLI working set", WorkingSetKey)
		}
	case PresetBackendMemory:
	case PresetBackendRedis:
		if cfg.Presets.Enabled && cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required for the redis preset backend")
		}
	case PresetBackendPostgres:
		if cfg.Presets.Enabled {
			if cfg.Database.Postgres.Host == "" {
				return fmt.Errorf("database.postgres.host is required for the postgres preset backend")
			}
			if cfg.Database.Postgres.Database == "" {
				return fmt.Errorf("database.postgres.database is required for the postgres preset backend")
			}
		}
	default:
		return fmt.Errorf("presets.backend %q is not one of file, redis, postgres, memory", cfg.Presets.Backend)
	}
	return nil
}

// ValidateForWorker checks the settings only the job worker needs.
func ValidateForWorker(cfg *Config) error {
	if cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: defaultWorkerMaxJobs,
		Timeout:       defaultWorkerTimeoutMs,
		MaxRetries:    defaultWorkerMaxRetries,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
