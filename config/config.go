package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Env     string        `yaml:"env"`
	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
	Mongo   MongoConfig   `yaml:"mongo"`
	Redis   RedisConfig   `yaml:"redis"`
	JWT     JWTConfig     `yaml:"jwt"`
	Storage StorageConfig `yaml:"storage"`
	AMQP    AMQPConfig    `yaml:"amqp"`
	Search  SearchConfig  `yaml:"search"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"` // mongo, memory
}

type MongoConfig struct {
	URI            string        `yaml:"uri"`
	Database       string        `yaml:"database"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// RedisConfig enables the search cache when Addr is set.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Key string        `yaml:"key"`
	TTL time.Duration `yaml:"ttl"`
}

type StorageConfig struct {
	Type      string `yaml:"type"` // local, s3
	BasePath  string `yaml:"base_path"`
	BaseURL   string `yaml:"base_url"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Endpoint  string `yaml:"endpoint"`
}

// AMQPConfig enables notification publishing when URL is set.
type AMQPConfig struct {
	URL   string `yaml:"url"`
	Queue string `yaml:"queue"`
}

type SearchConfig struct {
	CacheTTL           time.Duration `yaml:"cache_ttl"`
	InvalidatorWorkers int           `yaml:"invalidator_workers"`
}

func defaults() *Config {
	return &Config{
		Env: "development",
		Server: ServerConfig{
			Port:            "8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		Store:   StoreConfig{Driver: "mongo"},
		Mongo:   MongoConfig{Database: "cozycorner", ConnectTimeout: 10 * time.Second},
		JWT:     JWTConfig{TTL: 24 * time.Hour},
		Storage: StorageConfig{Type: "local", BasePath: "./uploads", BaseURL: "/uploads"},
		AMQP:    AMQPConfig{Queue: "notifications"},
		Search:  SearchConfig{CacheTTL: 10 * time.Minute, InvalidatorWorkers: 2},
	}
}

// Load builds the configuration from defaults, the YAML file named by
// CONFIG_PATH (if any) and the environment, in that order. A .env file in
// the working directory is loaded into the environment first.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = d
		}
		return nil
	}

	str("APP_ENV", &cfg.Env)
	str("PORT", &cfg.Server.Port)
	str("STORE_DRIVER", &cfg.Store.Driver)
	str("MONGOURI", &cfg.Mongo.URI)
	str("DB", &cfg.Mongo.Database)
	str("REDIS_ADD", &cfg.Redis.Addr)
	str("REDIS_PASS", &cfg.Redis.Password)
	str("JWT_KEY", &cfg.JWT.Key)
	str("STORAGE_TYPE", &cfg.Storage.Type)
	str("STORAGE_PATH", &cfg.Storage.BasePath)
	str("STORAGE_BASE_URL", &cfg.Storage.BaseURL)
	str("S3_BUCKET", &cfg.Storage.Bucket)
	str("S3_REGION", &cfg.Storage.Region)
	str("S3_ACCESS_KEY", &cfg.Storage.AccessKey)
	str("S3_SECRET_KEY", &cfg.Storage.SecretKey)
	str("S3_ENDPOINT", &cfg.Storage.Endpoint)
	str("AMQP_URL", &cfg.AMQP.URL)
	str("AMQP_QUEUE", &cfg.AMQP.Queue)

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		cfg.Redis.DB = n
	}
	if err := dur("JWT_TTL", &cfg.JWT.TTL); err != nil {
		return err
	}
	return dur("SEARCH_CACHE_TTL", &cfg.Search.CacheTTL)
}

func (c *Config) Validate() error {
	if c.JWT.Key == "" {
		return fmt.Errorf("JWT_KEY not set")
	}
	switch c.Store.Driver {
	case "memory":
	case "mongo":
		if c.Mongo.URI == "" {
			return fmt.Errorf("MONGOURI not set in environment")
		}
		if c.Mongo.Database == "" {
			return fmt.Errorf("DB not set in environment")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Search.InvalidatorWorkers < 1 {
		c.Search.InvalidatorWorkers = 1
	}
	return nil
}
