// Package config loads service settings from an optional YAML file and
// FILETREE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const EnvPrefix = "FILETREE"

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Storage StorageConfig `mapstructure:"storage"`
	Store   StoreConfig   `mapstructure:"store"`
	Session SessionConfig `mapstructure:"session"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Queue   QueueConfig   `mapstructure:"queue"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

type ServerConfig struct {
	GRPCAddr        string        `mapstructure:"grpc_addr" validate:"required"`
	MetricsAddr     string        `mapstructure:"metrics_addr" validate:"required"`
	MaxMessageBytes int           `mapstructure:"max_message_bytes" validate:"gt=0"`
	PageSize        int           `mapstructure:"page_size" validate:"gt=0"`
	MaxUploads      int64         `mapstructure:"max_uploads" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

type LoggingConfig struct {
	Dev   bool   `mapstructure:"dev"`
	Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
}

type StorageConfig struct {
	// FolderPath also honours the bare FOLDER_PATH variable.
	FolderPath string `mapstructure:"folder_path" validate:"required"`
}

type StoreConfig struct {
	Driver        string `mapstructure:"driver" validate:"required,oneof=mongo postgres memory"`
	MongoURI      string `mapstructure:"mongo_uri" validate:"required_if=Driver mongo"`
	MongoDatabase string `mapstructure:"mongo_database" validate:"required_if=Driver mongo"`
	PostgresURL   string `mapstructure:"postgres_url" validate:"required_if=Driver postgres"`
}

type SessionConfig struct {
	Driver     string        `mapstructure:"driver" validate:"required,oneof=redis memory"`
	TTL        time.Duration `mapstructure:"ttl" validate:"gt=0"`
	MemorySize int           `mapstructure:"memory_size" validate:"gt=0"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"required"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

type QueueConfig struct {
	Driver      string `mapstructure:"driver" validate:"required,oneof=asynq memory"`
	MaxRetry    int    `mapstructure:"max_retry" validate:"gte=0"`
	Concurrency int    `mapstructure:"concurrency" validate:"gt=0"`
	Buffer      int    `mapstructure:"buffer" validate:"gt=0"`
}

type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

var validate = validator.New()

// Load reads configPath when non-empty, then applies environment overrides
// such as FILETREE_STORE_DRIVER=memory.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.BindEnv("storage.folder_path", EnvPrefix+"_STORAGE_FOLDER_PATH", "FOLDER_PATH"); err != nil {
		return nil, err
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.grpc_addr", ":50051")
	v.SetDefault("server.metrics_addr", ":9090")
	v.SetDefault("server.max_message_bytes", 32<<20)
	v.SetDefault("server.page_size", 20)
	v.SetDefault("server.max_uploads", 16)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("logging.dev", false)
	v.SetDefault("logging.level", "info")

	v.SetDefault("storage.folder_path", "/tmp/files_manager")

	v.SetDefault("store.driver", "mongo")
	v.SetDefault("store.mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("store.mongo_database", "files_manager")
	v.SetDefault("store.postgres_url", "")

	v.SetDefault("session.driver", "redis")
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.memory_size", 10000)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("queue.driver", "asynq")
	v.SetDefault("queue.max_retry", 5)
	v.SetDefault("queue.concurrency", 4)
	v.SetDefault("queue.buffer", 64)

	v.SetDefault("tracing.enabled", false)
}

func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)", e.Namespace(), e.Tag(), e.Value())
		}
		return err
	}
	return nil
}

// NeedsRedis reports whether any backend talks to Redis.
func (c *Config) NeedsRedis() bool {
	return c.Session.Driver == "redis" || c.Queue.Driver == "asynq"
}
