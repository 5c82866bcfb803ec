// Package config loads service settings from an optional YAML file and
// LOADPLAN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"load-planner-service/internal/services"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "LOADPLAN"

// Reference data backends.
const (
	SourceYAML     = "yaml"
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"
)

type Config struct {
	Port       string                  `mapstructure:"port"`
	Log        LogConfig               `mapstructure:"log"`
	Reference  ReferenceConfig         `mapstructure:"reference"`
	Redis      RedisConfig             `mapstructure:"redis"`
	Weights    services.ScoringWeights `mapstructure:"weights"`
	MaxWorkers int                     `mapstructure:"max_workers"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

type ReferenceConfig struct {
	Source      string `mapstructure:"source"`
	Path        string `mapstructure:"path"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	DatabaseURL string `mapstructure:"database_url"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

func setDefaults(v *viper.Viper) {
	weights := services.DefaultScoringWeights()

	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("reference.source", SourceYAML)
	v.SetDefault("reference.path", "data/reference.yaml")
	v.SetDefault("reference.sqlite_path", "data/reference.db")
	v.SetDefault("reference.database_url", "")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "10m")
	v.SetDefault("weights.utilization", weights.Utilization)
	v.SetDefault("weights.cost", weights.Cost)
	v.SetDefault("weights.permit", weights.Permit)
	v.SetDefault("max_workers", 0)
}

// Load reads configPath when it is non-empty, then applies environment
// overrides such as LOADPLAN_REDIS_ADDR for redis.addr.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("load config: read %q: %w", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("load config: decode: %w", err)
	}
	cfg.Reference.Source = strings.ToLower(strings.TrimSpace(cfg.Reference.Source))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Port) == "" {
		errs = append(errs, errors.New("port must not be empty"))
	}

	switch c.Reference.Source {
	case SourceYAML:
		if c.Reference.Path == "" {
			errs = append(errs, errors.New("reference.path is required for the yaml source"))
		}
	case SourceSQLite:
		if c.Reference.SQLitePath == "" {
			errs = append(errs, errors.New("reference.sqlite_path is required for the sqlite source"))
		}
	case SourcePostgres:
		if c.Reference.DatabaseURL == "" {
			errs = append(errs, errors.New("reference.database_url is required for the postgres source"))
		}
	default:
		errs = append(errs, fmt.Errorf("reference.source must be one of yaml, sqlite, postgres (got %q)", c.Reference.Source))
	}

	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required when redis is enabled"))
	}
	if c.Redis.TTL < 0 {
		errs = append(errs, errors.New("redis.ttl must not be negative"))
	}
	if c.MaxWorkers < 0 {
		errs = append(errs, errors.New("max_workers must not be negative"))
	}
	if err := c.Weights.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Get returns the environment variable key, or fallback when it is unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
