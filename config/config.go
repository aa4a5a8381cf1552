// Package config loads service settings from .env files, the environment and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"blockflow/database"
	"blockflow/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	ServiceName string               `mapstructure:"service_name"`
	HTTP        HTTPConfig           `mapstructure:"http"`
	Database    DatabaseConfig       `mapstructure:"database"`
	Redis       database.RedisConfig `mapstructure:"redis"`
	Kafka       KafkaConfig          `mapstructure:"kafka"`
	JWT         JWTConfig            `mapstructure:"jwt"`
	Logger      logger.Config        `mapstructure:"logger"`
	Metrics     MetricsConfig        `mapstructure:"metrics"`
	Tracing     TracingConfig        `mapstructure:"tracing"`
	Seed        SeedConfig           `mapstructure:"seed"`
}

type HTTPConfig struct {
	Port           int      `mapstructure:"port"`
	ReadTimeout    int      `mapstructure:"read_timeout"`
	WriteTimeout   int      `mapstructure:"write_timeout"`
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// DatabaseConfig selects the store backend. Driver is one of mongo, mysql,
// postgres, sqlite or memory.
type DatabaseConfig struct {
	Driver             string               `mapstructure:"driver"`
	DSN                string               `mapstructure:"dsn"`
	MaxOpenConns       int                  `mapstructure:"max_open_conns"`
	MaxIdleConns       int                  `mapstructure:"max_idle_conns"`
	ConnMaxLifetime    int                  `mapstructure:"conn_max_lifetime"`
	LogEnabled         bool                 `mapstructure:"log_enabled"`
	SlowQueryThreshold int                  `mapstructure:"slow_query_threshold"`
	Mongo              database.MongoConfig `mapstructure:"mongo"`
}

func (d DatabaseConfig) SQL() database.SQLConfig {
	return database.SQLConfig{
		Driver:             d.Driver,
		DSN:                d.DSN,
		MaxOpenConns:       d.MaxOpenConns,
		MaxIdleConns:       d.MaxIdleConns,
		ConnMaxLifetime:    d.ConnMaxLifetime,
		LogEnabled:         d.LogEnabled,
		SlowQueryThreshold: d.SlowQueryThreshold,
	}
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type SeedConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoadEnv reads .env into the process environment. A missing file is fine.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load builds the configuration from defaults overridden by environment
// variables. Nested keys map to upper-case names joined by underscores, so
// database.mongo.uri is read from DATABASE_MONGO_URI.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// names the service has always used
	aliases := map[string][]string{
		"http.port":               {"HTTP_PORT", "PORT"},
		"database.mongo.uri":      {"DATABASE_MONGO_URI", "MONGO_URI"},
		"database.mongo.database": {"DATABASE_MONGO_DATABASE", "DB_NAME"},
		"jwt.secret":              {"JWT_SECRET"},
		"redis.addr":              {"REDIS_ADDR"},
		"kafka.brokers":           {"KAFKA_BROKERS"},
	}
	for key, envs := range aliases {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "blockflow")

	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", 30)
	v.SetDefault("http.write_timeout", 30)
	v.SetDefault("http.trusted_proxies", []string{})

	v.SetDefault("database.driver", "mongo")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 300)
	v.SetDefault("database.log_enabled", false)
	v.SetDefault("database.slow_query_threshold", 200)
	v.SetDefault("database.mongo.uri", "")
	v.SetDefault("database.mongo.database", "")
	v.SetDefault("database.mongo.timeout", 10*time.Second)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "blockflow.events")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.ttl", 24*time.Hour)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.file_path", "logs/blockflow.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 10)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.with_caller", false)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.collector_endpoint", "localhost:4317")

	v.SetDefault("seed.enabled", true)
}

var drivers = map[string]bool{"mongo": true, "mysql": true, "postgres": true, "sqlite": true, "memory": true}

func (c *Config) Validate() error {
	var errs []error
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port %d out of range", c.HTTP.Port))
	}
	if !drivers[c.Database.Driver] {
		errs = append(errs, fmt.Errorf("unsupported database.driver %q", c.Database.Driver))
	}
	switch c.Database.Driver {
	case "mongo":
		if c.Database.Mongo.URI == "" || c.Database.Mongo.Database == "" {
			errs = append(errs, errors.New("MONGO_URI and DB_NAME are required for the mongo driver"))
		}
	case "mysql", "postgres", "sqlite":
		if c.Database.DSN == "" {
			errs = append(errs, fmt.Errorf("database.dsn is required for the %s driver", c.Database.Driver))
		}
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Kafka.Enabled() && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("kafka.topic is required when brokers are set"))
	}
	return errors.Join(errs...)
}

// GetEnv returns the environment value of key, or fallback when unset.
func GetEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
