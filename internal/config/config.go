// Package config loads client settings from iqclient.yaml, IQ_ environment
// variables and defaults.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers for the persistent session.
const (
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

var (
	ErrInvalidDriver  = errors.New("config: unknown storage driver")
	ErrInvalidBaseURL = errors.New("config: api.base_url must be an absolute http(s) URL")
	ErrMissingDSN     = errors.New("config: storage.postgres.dsn is required for the postgres driver")
)

type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Session SessionConfig `mapstructure:"session"`
	Storage StorageConfig `mapstructure:"storage"`
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
}

type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type SessionConfig struct {
	// Grace is the expiry tolerance applied by the route guard.
	Grace     time.Duration `mapstructure:"grace"`
	KeyPrefix string        `mapstructure:"key_prefix"`
}

type StorageConfig struct {
	Driver   string         `mapstructure:"driver"`
	Path     string         `mapstructure:"path"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type LogConfig struct {
	Mode string `mapstructure:"mode"` // warn, debug, release or quiet
}

type loadOptions struct {
	v    *viper.Viper
	file string
}

type LoadOption func(*loadOptions)

// WithViper loads from v, typically one with cobra flags already bound.
func WithViper(v *viper.Viper) LoadOption {
	return func(o *loadOptions) {
		if v != nil {
			o.v = v
		}
	}
}

// WithFile reads an explicit config file instead of searching for iqclient.yaml.
func WithFile(path string) LoadOption {
	return func(o *loadOptions) {
		o.file = path
	}
}

// SetDefaults registers every key with its default so environment overrides
// apply to all of them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8080")
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("session.grace", 5*time.Second)
	v.SetDefault("session.key_prefix", "")
	v.SetDefault("storage.driver", DriverSQLite)
	v.SetDefault("storage.path", defaultStoragePath())
	v.SetDefault("storage.redis.addr", "127.0.0.1:6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.postgres.dsn", "")
	v.SetDefault("server.address", "127.0.0.1:5173")
	v.SetDefault("log.mode", "warn")
}

func Load(opts ...LoadOption) (*Config, error) {
	o := loadOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	v := o.v
	if v == nil {
		v = viper.New()
	}

	SetDefaults(v)
	v.SetEnvPrefix("IQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if o.file != "" {
		v.SetConfigFile(o.file)
	} else {
		v.SetConfigName("iqclient")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "iqclient"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if o.file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	if !slices.Contains([]string{DriverSQLite, DriverMemory, DriverRedis, DriverPostgres}, c.Storage.Driver) {
		return fmt.Errorf("%w: %q", ErrInvalidDriver, c.Storage.Driver)
	}
	if c.Storage.Driver == DriverPostgres && c.Storage.Postgres.DSN == "" {
		return ErrMissingDSN
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.API.BaseURL)
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.Session.Grace < 0 {
		c.Session.Grace = 0
	}
	return nil
}

func defaultStoragePath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "iqclient", "session.db")
	}
	return filepath.Join(".iqclient", "session.db")
}
