package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
)

// Config holds the application configuration. Every flag takes its default
// from an environment variable so the service can run unchanged under
// OpenRC, Docker or a plain shell.
type Config struct {
	Debug           bool
	ServerPort      string
	StoreBackend    string
	DataFile        string
	RedisAddr       string
	RedisDB         int
	RedisKey        string
	RedisChannel    string
	StaticDir       string
	WriteRate       float64
	WriteBurst      int
	MaxBodyBytes    int64
	OTLPEndpoint    string
	ShutdownTimeout time.Duration
}

const (
	storeFile  = "file"
	storeRedis = "redis"
)

// loadConfig parses args on top of the environment.
func loadConfig(args []string) (Config, error) {
	var cfg Config

	fs := pflag.NewFlagSet("growstation", pflag.ContinueOnError)
	fs.BoolVar(&cfg.Debug, "debug", getEnvBool("DEBUG", false), "enable debug logging")
	fs.StringVarP(&cfg.ServerPort, "listen", "l", getEnv("SERVER_PORT", ":8080"), "HTTP listen address")
	fs.StringVar(&cfg.StoreBackend, "store", getEnv("STORE_BACKEND", storeFile), "storage backend for the latest reading (file|redis)")
	fs.StringVar(&cfg.DataFile, "data-file", getEnv("DATA_FILE", "/var/www/data/sensor.json"), "path of the JSON document holding the latest reading")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", getEnv("REDIS_ADDR", "localhost:6379"), "Redis address")
	fs.IntVar(&cfg.RedisDB, "redis-db", getEnvInt("REDIS_DB", 0), "Redis database number")
	fs.StringVar(&cfg.RedisKey, "redis-key", getEnv("REDIS_KEY", "sensor:latest"), "Redis key holding the latest reading")
	fs.StringVar(&cfg.RedisChannel, "redis-channel", getEnv("REDIS_CHANNEL", "sensor_channel"), "Redis pub/sub channel for accepted readings")
	fs.StringVar(&cfg.StaticDir, "static-dir", getEnv("STATIC_DIR", ""), "directory with the dashboard assets served at /")
	fs.Float64Var(&cfg.WriteRate, "write-rate", getEnvFloat("WRITE_RATE", 0), "accepted POSTs per second, 0 disables the limit")
	fs.IntVar(&cfg.WriteBurst, "write-burst", getEnvInt("WRITE_BURST", 5), "burst size for the write rate limit")
	fs.Int64Var(&cfg.MaxBodyBytes, "max-body", int64(getEnvInt("MAX_BODY_BYTES", 1<<20)), "maximum accepted request body in bytes")
	fs.StringVar(&cfg.OTLPEndpoint, "otlp-endpoint", getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""), "OTLP/HTTP endpoint for traces, empty disables export")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second), "graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StoreBackend {
	case storeFile:
		if c.DataFile == "" {
			return fmt.Errorf("data file path must not be empty")
		}
	case storeRedis:
		if c.RedisAddr == "" || c.RedisKey == "" {
			return fmt.Errorf("redis backend needs an address and a key")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body must be positive, got %d", c.MaxBodyBytes)
	}
	return nil
}

// getEnv gets an environment variable with a default fallback
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	switch os.Getenv(key) {
	case "true", "1":
		return true
	case "false", "0":
		return false
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}
