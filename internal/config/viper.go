// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"

	"fjacquet/eod-recon/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Store backends understood by the container.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	CSV struct {
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"csv" yaml:"csv"`

	Store struct {
		Backend  string `mapstructure:"backend" yaml:"backend"`
		DataDir  string `mapstructure:"data_dir" yaml:"data_dir"`
		DSN      string `mapstructure:"dsn" yaml:"-"`
		MaxConns int32  `mapstructure:"max_conns" yaml:"max_conns"`
	} `mapstructure:"store" yaml:"store"`

	Import struct {
		ChunkSize int `mapstructure:"chunk_size" yaml:"chunk_size"`
	} `mapstructure:"import" yaml:"import"`

	Fees struct {
		TaxProducts   []string `mapstructure:"tax_products" yaml:"tax_products"`
		LegacyMarkers bool     `mapstructure:"legacy_markers" yaml:"legacy_markers"`
	} `mapstructure:"fees" yaml:"fees"`

	Cache struct {
		ProfileTTLSeconds int `mapstructure:"profile_ttl_seconds" yaml:"profile_ttl_seconds"`
	} `mapstructure:"cache" yaml:"cache"`

	Server struct {
		Addr               string `mapstructure:"addr" yaml:"addr"`
		RequestTimeoutSecs int    `mapstructure:"request_timeout_seconds" yaml:"request_timeout_seconds"`
		MaxUploadSizeMB    int    `mapstructure:"max_upload_size_mb" yaml:"max_upload_size_mb"`
	} `mapstructure:"server" yaml:"server"`

	Receipts struct {
		Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
		Bucket    string `mapstructure:"bucket" yaml:"bucket"`
		Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
		Region    string `mapstructure:"region" yaml:"region"`
		PublicURL string `mapstructure:"public_url" yaml:"public_url"`
		AccessKey string `mapstructure:"access_key" yaml:"-"`
		SecretKey string `mapstructure:"secret_key" yaml:"-"`
	} `mapstructure:"receipts" yaml:"receipts"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.eod-recon")
	v.AddConfigPath(".eod-recon")
	v.AddConfigPath(".")

	v.SetEnvPrefix("EOD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	// Secrets are bound to their conventional, unprefixed names as well.
	for key, env := range map[string]string{
		"store.dsn":           "DATABASE_URL",
		"receipts.access_key": "AWS_ACCESS_KEY_ID",
		"receipts.secret_key": "AWS_SECRET_ACCESS_KEY",
	} {
		if err := v.BindEnv(key, "EOD_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			fmt.Printf("Warning: failed to bind %s environment variable: %v\n", env, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("csv.delimiter", ",")

	v.SetDefault("store.backend", BackendFile)
	v.SetDefault("store.data_dir", "database")
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.max_conns", 4)

	v.SetDefault("import.chunk_size", 500)

	v.SetDefault("fees.tax_products", []string{})
	v.SetDefault("fees.legacy_markers", false)

	v.SetDefault("cache.profile_ttl_seconds", 300)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.request_timeout_seconds", 60)
	v.SetDefault("server.max_upload_size_mb", 20)

	v.SetDefault("receipts.enabled", false)
	v.SetDefault("receipts.bucket", "")
	v.SetDefault("receipts.endpoint", "")
	v.SetDefault("receipts.region", "auto")
	v.SetDefault("receipts.public_url", "")
	v.SetDefault("receipts.access_key", "")
	v.SetDefault("receipts.secret_key", "")
}

func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if len([]rune(config.CSV.Delimiter)) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}

	switch config.Store.Backend {
	case BackendMemory, BackendFile:
	case BackendPostgres:
		if config.Store.DSN == "" {
			return fmt.Errorf("store.dsn (or DATABASE_URL) required when store.backend is postgres")
		}
	default:
		return fmt.Errorf("invalid store backend: %s (must be memory, file or postgres)", config.Store.Backend)
	}

	if config.Import.ChunkSize < 1 || config.Import.ChunkSize > 10000 {
		return fmt.Errorf("import.chunk_size must be between 1 and 10000, got: %d", config.Import.ChunkSize)
	}

	if config.Cache.ProfileTTLSeconds < 0 {
		return fmt.Errorf("cache.profile_ttl_seconds cannot be negative, got: %d", config.Cache.ProfileTTLSeconds)
	}

	if config.Receipts.Enabled && config.Receipts.Bucket == "" {
		return fmt.Errorf("receipts.bucket required when receipts are enabled")
	}

	return nil
}

// ConfigureLoggingFromConfig builds the application logger from the Config struct
func ConfigureLoggingFromConfig(config *Config) logging.Logger {
	return logging.NewLogrusAdapter(config.Log.Level, config.Log.Format)
}
