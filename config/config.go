package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// StorageBackend identifies which store implementation backs the forum data.
type StorageBackend string

const (
	StorageBackendFile   StorageBackend = "file"
	StorageBackendMemory StorageBackend = "memory"
	StorageBackendRedis  StorageBackend = "redis"
	StorageBackendSQLite StorageBackend = "sqlite"
)

// Config holds the configuration for the Agora server and its dependencies.
type Config struct {
	// Listen is the address the Agora server will listen on.
	Listen string `yaml:"listen" mapstructure:"listen"`
	// LogLevel is the log level for the server (debug, info, warn, error).
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
	// SessionKey is the key used to encrypt cookie session data.
	SessionKey string `yaml:"session_key" mapstructure:"session_key"`
	// SessionMaxAge is the maximum age of a cookie session in seconds.
	SessionMaxAge int `yaml:"session_max_age" mapstructure:"session_max_age"`
	// LatencyMS is the artificial delay in milliseconds applied to every
	// forum operation to emulate a network round-trip.
	LatencyMS int `yaml:"latency_ms" mapstructure:"latency_ms"`
	// Storage holds the storage backend configuration.
	Storage *StorageConfig `yaml:"storage" mapstructure:"storage"`
	// Export holds the scheduled log export configuration.
	Export *ExportConfig `yaml:"export" mapstructure:"export"`
	// SeedUsers are merged into the users collection at startup if their
	// username is not already present.
	SeedUsers []SeedUser `yaml:"seed_users" mapstructure:"seed_users"`
}

// StorageConfig holds the storage backend configuration.
type StorageConfig struct {
	// Backend selects the store implementation: file, memory, redis or sqlite.
	Backend StorageBackend `yaml:"backend" mapstructure:"backend"`
	// Path is the data directory for the file and sqlite backends.
	Path string `yaml:"path" mapstructure:"path"`
	// RedisURL is the address of the redis server for the redis backend.
	RedisURL string `yaml:"redis_url" mapstructure:"redis_url"`
}

// ExportConfig holds the scheduled activity-log export configuration.
type ExportConfig struct {
	// Enabled indicates whether the periodic XML export job runs.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Interval is the time between export runs.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
	// Path is the file the XML export is written to.
	Path string `yaml:"path" mapstructure:"path"`
}

// SeedUser is an initial user record merged in by the forum service at startup.
type SeedUser struct {
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
	IsAdmin  bool   `yaml:"is_admin" mapstructure:"is_admin"`
}

// Latency returns the configured artificial delay as a duration.
func (c *Config) Latency() time.Duration {
	return time.Duration(c.LatencyMS) * time.Millisecond
}

// Load reads the configuration from the given file, falling back to the
// default search paths and environment variables with the AGORA_ prefix.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("AGORA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var configFileFound bool
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.agora")
		v.AddConfigPath("/etc/agora")
	}

	if err := v.ReadInConfig(); err != nil {
		// If no config file is found, use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		configFileFound = true
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if configFileFound {
		log.Debug("Using config file", "file", v.ConfigFileUsed())
		log.Debug("Environment variables with AGORA_ prefix will override config file values")
	}

	if err := validateConfig(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", "0.0.0.0:3030")
	v.SetDefault("log_level", "info")
	v.SetDefault("session_key", "")
	v.SetDefault("session_max_age", 3600)
	v.SetDefault("latency_ms", 250)
	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.path", "./data")
	v.SetDefault("storage.redis_url", "localhost:6379")
	v.SetDefault("export.enabled", false)
	v.SetDefault("export.interval", time.Hour)
	v.SetDefault("export.path", "./data/logs.xml")
}

func validateConfig(c *Config) error {
	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.Storage == nil {
		return fmt.Errorf("storage configuration is required")
	}
	switch c.Storage.Backend {
	case StorageBackendFile, StorageBackendSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage path is required for the %s backend", c.Storage.Backend)
		}
	case StorageBackendMemory:
	case StorageBackendRedis:
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("storage redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown storage backend: %s", c.Storage.Backend)
	}
	if c.LatencyMS < 0 {
		return fmt.Errorf("latency_ms must not be negative")
	}
	if c.Export != nil && c.Export.Enabled {
		if c.Export.Interval <= 0 {
			return fmt.Errorf("export interval must be positive")
		}
		if c.Export.Path == "" {
			return fmt.Errorf("export path is required when export is enabled")
		}
	}
	for _, u := range c.SeedUsers {
		if u.Username == "" {
			return fmt.Errorf("seed users must have a username")
		}
	}
	return nil
}
