// Package config loads service settings from defaults, an optional YAML file
// and environment variables, in that order. A .env file, when present, fills
// in environment variables the process does not already have.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// History backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendDynamoDB = "dynamodb"
)

// Config holds every setting the service reads.
type Config struct {
	Server    Server    `yaml:"server"`
	RateLimit RateLimit `yaml:"rate_limit"`
	History   History   `yaml:"history"`
	AWS       AWS       `yaml:"aws"`
	Export    Export    `yaml:"export"`
	Log       Log       `yaml:"log"`
	Tracing   Tracing   `yaml:"tracing"`
	Engine    Engine    `yaml:"engine"`
}

// Server settings. TrustProxy is the number of reverse proxies in front of
// the service whose X-Forwarded-For entries are believed; 0 keys clients on
// the socket address alone.
type Server struct {
	Port       int    `yaml:"port"`
	Env        string `yaml:"env"`
	TrustProxy int    `yaml:"trust_proxy"`
}

// Production reports whether error details must be hidden from clients.
func (s Server) Production() bool {
	return s.Env == "production"
}

type RateLimit struct {
	Window time.Duration `yaml:"window"`
	Max    int           `yaml:"max"`
}

type History struct {
	Backend       string `yaml:"backend"`
	Capacity      int    `yaml:"capacity"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisKey      string `yaml:"redis_key"`
	DynamoDBTable string `yaml:"dynamodb_table"`
}

type AWS struct {
	Region string `yaml:"region"`
}

type Export struct {
	S3Bucket string `yaml:"s3_bucket"`
	S3Prefix string `yaml:"s3_prefix"`
}

type Log struct {
	Level string `yaml:"level"`
}

type Tracing struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

// Engine tunes the persona engine. A zero Seed means the process-wide random
// source.
type Engine struct {
	Seed uint64 `yaml:"seed"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Server:    Server{Port: 3000, Env: "development"},
		RateLimit: RateLimit{Window: 15 * time.Minute, Max: 100},
		History: History{
			Backend:       BackendMemory,
			Capacity:      100,
			RedisAddr:     "localhost:6379",
			RedisKey:      "personaswap:history",
			DynamoDBTable: "personaswap-history",
		},
		AWS:     AWS{Region: "us-east-1"},
		Export:  Export{S3Prefix: "history/"},
		Log:     Log{Level: "info"},
		Tracing: Tracing{ServiceName: "personaswap"},
	}
}

// DefaultEnvFile is read by Load when no env file is named.
const DefaultEnvFile = ".env"

// Load reads path (if non-empty) over the defaults, applies environment
// overrides and validates the result. Before reading the environment it
// loads envFiles (DefaultEnvFile when none are given) without overriding
// variables already set. A missing DefaultEnvFile is ignored; a missing
// named file is an error.
func Load(path string, envFiles ...string) (Config, error) {
	if err := loadDotEnv(envFiles); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var errs []error
	c.Server.Port = envInt("PORT", c.Server.Port, &errs)
	c.Server.Env = envOr("APP_ENV", c.Server.Env)
	c.Server.TrustProxy = envInt("TRUST_PROXY", c.Server.TrustProxy, &errs)
	if ms := envInt("RATE_LIMIT_WINDOW_MS", 0, &errs); ms > 0 {
		c.RateLimit.Window = time.Duration(ms) * time.Millisecond
	}
	c.RateLimit.Max = envInt("RATE_LIMIT_MAX", c.RateLimit.Max, &errs)
	c.History.Backend = strings.ToLower(envOr("HISTORY_BACKEND", c.History.Backend))
	c.History.Capacity = envInt("HISTORY_CAPACITY", c.History.Capacity, &errs)
	c.History.RedisAddr = envOr("REDIS_ADDR", c.History.RedisAddr)
	c.History.DynamoDBTable = envOr("DYNAMODB_TABLE", c.History.DynamoDBTable)
	c.AWS.Region = envOr("AWS_REGION", c.AWS.Region)
	c.Export.S3Bucket = envOr("HISTORY_S3_BUCKET", c.Export.S3Bucket)
	c.Log.Level = envOr("LOG_LEVEL", c.Log.Level)
	if v := os.Getenv("OTEL_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("OTEL_ENABLED: %w", err))
		}
		c.Tracing.Enabled = b
	}
	if v := os.Getenv("PERSONA_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("PERSONA_SEED: %w", err))
		}
		c.Engine.Seed = seed
	}
	return errors.Join(errs...)
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.TrustProxy < 0 {
		errs = append(errs, fmt.Errorf("server.trust_proxy must not be negative"))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, fmt.Errorf("rate_limit.window must be positive"))
	}
	if c.RateLimit.Max <= 0 {
		errs = append(errs, fmt.Errorf("rate_limit.max must be positive"))
	}
	switch c.History.Backend {
	case BackendMemory, BackendRedis, BackendDynamoDB:
	default:
		errs = append(errs, fmt.Errorf("history.backend %q: want memory, redis or dynamodb", c.History.Backend))
	}
	if c.History.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("history.capacity must be positive"))
	}
	return errors.Join(errs...)
}

func loadDotEnv(files []string) error {
	if len(files) == 0 {
		if _, err := os.Stat(DefaultEnvFile); err != nil {
			return nil
		}
		files = []string{DefaultEnvFile}
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}
