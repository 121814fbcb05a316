package config

import (
	"commonroom/utils"
	"errors"
	"fmt"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"os"
	"time"
)

// Config holds all application configuration. It is built once at startup
// and passed to the store, the token service and the HTTP server.
type Config struct {
	// App
	HTTPAddr  string `yaml:"http_addr"`
	Env       string `yaml:"env"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Storage
	StoreDriver  string `yaml:"store_driver"`
	DatabaseURI  string `yaml:"database_uri"`
	DatabaseName string `yaml:"database_name"`

	// Identity cache, disabled when RedisAddr is empty
	RedisAddr        string        `yaml:"redis_addr"`
	RedisPassword    string        `yaml:"redis_password"`
	RedisDB          int           `yaml:"redis_db"`
	IdentityCacheTTL time.Duration `yaml:"identity_cache_ttl"`

	// Auth
	SecretKey     string        `yaml:"secret_key"`
	TokenValidity time.Duration `yaml:"token_validity"`
	BcryptCost    int           `yaml:"bcrypt_cost"`

	// Media, disabled when S3Bucket is empty
	S3Bucket         string        `yaml:"s3_bucket"`
	S3Region         string        `yaml:"s3_region"`
	S3BaseEndpoint   string        `yaml:"s3_base_endpoint"`
	S3AccessKey      string        `yaml:"s3_access_key"`
	S3SecretKey      string        `yaml:"s3_secret_key"`
	MediaURLValidity time.Duration `yaml:"media_url_validity"`
}

func Default() *Config {
	return &Config{
		HTTPAddr:         ":5000",
		Env:              "development",
		LogLevel:         "info",
		LogFormat:        "text",
		StoreDriver:      "mongo",
		DatabaseURI:      "mongodb://localhost:27017",
		DatabaseName:     "commonroom",
		IdentityCacheTTL: 30 * time.Minute,
		SecretKey:        "secretKey",
		TokenValidity:    time.Hour,
		BcryptCost:       12,
		S3Region:         "us-east-1",
		S3BaseEndpoint:   "http://localhost:9000",
		S3AccessKey:      "minioadmin",
		S3SecretKey:      "minioadmin",
		MediaURLValidity: 15 * time.Minute,
	}
}

// Load builds the configuration: defaults, then the YAML file at path (or
// $CONFIG), then .env and the process environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	// Try to load .env file, but don't fail if it doesn't exist
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warningf("Error loading .env file: %v", err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err = yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.HTTPAddr = getEnv("HTTP_ADDR", c.HTTPAddr)
	c.Env = getEnv("ENV", c.Env)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)

	c.StoreDriver = getEnv("STORE_DRIVER", c.StoreDriver)
	c.DatabaseURI = getEnv("DATABASE_URI", c.DatabaseURI)
	c.DatabaseName = getEnv("DATABASE_NAME", c.DatabaseName)

	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = utils.IntFromString(os.Getenv("REDIS_DB"), c.RedisDB)
	c.IdentityCacheTTL = getEnvMinutes("IDENTITY_CACHE_TTL_MINUTES", c.IdentityCacheTTL)

	c.SecretKey = getEnv("JWT_KEY", c.SecretKey)
	c.TokenValidity = getEnvMinutes("TOKEN_VALIDITY_MINUTES", c.TokenValidity)
	c.BcryptCost = utils.IntFromString(os.Getenv("BCRYPT_COST"), c.BcryptCost)

	c.S3Bucket = getEnv("S3_BUCKET", c.S3Bucket)
	c.S3Region = getEnv("S3_REGION", c.S3Region)
	c.S3BaseEndpoint = getEnv("S3_BASE_ENDPOINT", c.S3BaseEndpoint)
	c.S3AccessKey = getEnv("S3_ACCESS_KEY", c.S3AccessKey)
	c.S3SecretKey = getEnv("S3_SECRET_KEY", c.S3SecretKey)
	c.MediaURLValidity = getEnvMinutes("MEDIA_URL_VALIDITY_MINUTES", c.MediaURLValidity)
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case "mongo", "postgres":
		if c.DatabaseURI == "" {
			return fmt.Errorf("DATABASE_URI is required for store driver %s", c.StoreDriver)
		}
	case "memory":
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.StoreDriver == "mongo" && c.DatabaseName == "" {
		return fmt.Errorf("DATABASE_NAME is required")
	}
	if c.SecretKey == "" {
		return fmt.Errorf("JWT_KEY is required")
	}
	if c.IsProduction() && c.SecretKey == Default().SecretKey {
		return fmt.Errorf("JWT_KEY must be changed in production")
	}
	if c.TokenValidity <= 0 {
		return fmt.Errorf("TOKEN_VALIDITY_MINUTES must be positive")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// SetupLogging applies the level and formatter to the package-level logger.
func (c *Config) SetupLogging() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	if c.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvMinutes(key string, defaultValue time.Duration) time.Duration {
	minutes := utils.IntFromString(os.Getenv(key), -1)
	if minutes < 0 {
		return defaultValue
	}
	return time.Duration(minutes) * time.Minute
}
