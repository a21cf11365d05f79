// Package config provides runtime configuration values for the service.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds configuration knobs for the HTTP server, storage, intake and
// notification workers.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
	LogLevel        string
	StoreName       string

	DataDir      string
	DatabaseURL  string
	CatalogFile  string
	DefaultStock int

	LowStockThreshold  int
	NotifyWorkers      int
	NotifyBuffer       int
	NotifyTimeout      time.Duration
	QueueHighWatermark int

	RedisURL      string
	RedisPassword string
	RedisDB       int
	RedisChannel  string

	AdminUsername     string
	AdminPasswordHash string
	SessionTTL        time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvms(key string, defMs int) time.Duration {
	ms := atoienv(key, defMs)
	return time.Duration(ms) * time.Millisecond
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

// LoadDotEnv reads KEY=value pairs from the given files (".env" when none are
// given) into the environment without overriding variables already set. A
// missing file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if f == "" {
			continue
		}
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		ShutdownTimeout: durenvs("SHUTDOWN_TIMEOUT", 15),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		StoreName:       getenv("STORE_NAME", "Makahan Store"),

		DataDir:      getenv("DATA_DIR", "./data"),
		DatabaseURL:  getenv("DATABASE_URL", ""),
		CatalogFile:  getenv("CATALOG_FILE", ""),
		DefaultStock: atoienv("DEFAULT_STOCK", 10),

		LowStockThreshold:  atoienv("LOW_STOCK_THRESHOLD", 2),
		NotifyWorkers:      atoienv("NOTIFY_WORKERS", 1),
		NotifyBuffer:       atoienv("NOTIFY_BUFFER", 64),
		NotifyTimeout:      durenvms("NOTIFY_TIMEOUT_MS", 5000),
		QueueHighWatermark: atoienv("QUEUE_HIGH_WATERMARK", 1000),

		RedisURL:      getenv("REDIS_URL", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       atoienv("REDIS_DB", 0),
		RedisChannel:  getenv("REDIS_CHANNEL", "storefront:low-stock"),

		AdminUsername:     getenv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: getenv("ADMIN_PASSWORD_HASH", ""),
		SessionTTL:        durenvs("SESSION_TTL", 3600),
	}
}
