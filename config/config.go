package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Connect     ConnectConfig     `mapstructure:"connect"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
	Store       StoreConfig       `mapstructure:"store"`
	Options     OptionsConfig     `mapstructure:"options"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Sandbox     SandboxConfig     `mapstructure:"sandbox"`
	Log         LogConfig         `mapstructure:"log"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
}

type ConnectConfig struct {
	ServerURL  string        `mapstructure:"server_url"`
	APIVersion int           `mapstructure:"api_version"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Locale     string        `mapstructure:"locale"` // e.g. en_US
	Accept     string        `mapstructure:"accept"`
}

// CredentialsConfig holds the store's access token. Either Secret or
// SecretEnc (sealed with AESKey) must be set.
type CredentialsConfig struct {
	Key            string `mapstructure:"key"`
	Secret         string `mapstructure:"secret"`
	SecretEnc      string `mapstructure:"secret_enc"`
	AESKey         string `mapstructure:"aes_key"` // 32-byte hex-encoded key for AES-256
	ExternalUserID int64  `mapstructure:"external_user_id"`
}

// StoreConfig is the host store profile reported in every request envelope.
type StoreConfig struct {
	Locale         string   `mapstructure:"locale"`
	BaseCity       string   `mapstructure:"base_city"`
	BaseCountry    string   `mapstructure:"base_country"`
	BaseState      string   `mapstructure:"base_state"`
	Currency       string   `mapstructure:"currency"`
	DimensionUnit  string   `mapstructure:"dimension_unit"`
	WeightUnit     string   `mapstructure:"weight_unit"`
	JetpackVersion string   `mapstructure:"jetpack_version"`
	WCVersion      string   `mapstructure:"wc_version"`
	WPVersion      string   `mapstructure:"wp_version"`
	ActiveServices []string `mapstructure:"active_services"`
	Staging        bool     `mapstructure:"staging"`
}

const (
	OptionsBackendMemory   = "memory"
	OptionsBackendRedis    = "redis"
	OptionsBackendPostgres = "postgres"
)

type OptionsConfig struct {
	Backend string `mapstructure:"backend"` // memory, redis, postgres
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// SandboxConfig configures the local verifying server.
type SandboxConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Mode        string `mapstructure:"mode"` // debug, release, test
	TokenKey    string `mapstructure:"token_key"`
	TokenSecret string `mapstructure:"token_secret"`
	NonceStore  string `mapstructure:"nonce_store"` // memory, redis
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: WCC_.
// Nested keys use underscore: WCC_CONNECT_SERVER_URL, WCC_CREDENTIALS_SECRET, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("connect.server_url", "https://api.woocommerce.com/")
	v.SetDefault("connect.api_version", 1)
	v.SetDefault("connect.timeout", "20s")
	v.SetDefault("connect.locale", "en_US")
	v.SetDefault("connect.accept", "application/vnd.woocommerce-connect.v1")
	v.SetDefault("credentials.key", "")
	v.SetDefault("credentials.secret", "")
	v.SetDefault("credentials.secret_enc", "")
	v.SetDefault("credentials.aes_key", "")
	v.SetDefault("credentials.external_user_id", 0)
	v.SetDefault("store.locale", "en_US")
	v.SetDefault("store.base_country", "US")
	v.SetDefault("store.currency", "USD")
	v.SetDefault("store.dimension_unit", "in")
	v.SetDefault("store.weight_unit", "lbs")
	v.SetDefault("store.active_services", []string{})
	v.SetDefault("store.staging", false)
	v.SetDefault("options.backend", OptionsBackendMemory)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "connect_client")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("sandbox.host", "127.0.0.1")
	v.SetDefault("sandbox.port", 8089)
	v.SetDefault("sandbox.mode", "debug")
	v.SetDefault("sandbox.token_key", "")
	v.SetDefault("sandbox.token_secret", "")
	v.SetDefault("sandbox.nonce_store", OptionsBackendMemory)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// WCC_CONNECT_SERVER_URL -> connect.server_url
	v.SetEnvPrefix("WCC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The file is optional when env vars carry everything.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values that cannot produce a working client.
func (c *Config) Validate() error {
	switch c.Options.Backend {
	case OptionsBackendMemory, OptionsBackendRedis, OptionsBackendPostgres:
	default:
		return fmt.Errorf("options.backend must be memory, redis or postgres, got %q", c.Options.Backend)
	}
	switch c.Sandbox.NonceStore {
	case OptionsBackendMemory, OptionsBackendRedis:
	default:
		return fmt.Errorf("sandbox.nonce_store must be memory or redis, got %q", c.Sandbox.NonceStore)
	}
	if c.Credentials.SecretEnc != "" && c.Credentials.AESKey == "" {
		return fmt.Errorf("credentials.secret_enc requires credentials.aes_key")
	}
	if c.Connect.APIVersion <= 0 {
		return fmt.Errorf("connect.api_version must be positive, got %d", c.Connect.APIVersion)
	}
	return nil
}
