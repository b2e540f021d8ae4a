package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/go_storefront/internal/cart"
	"github.com/fjod/go_storefront/internal/domain"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	HTTPPort           string
	CatalogURL         string
	CatalogDBPath      string
	MigrationsPath     string
	Mongo              cart.MongoConfig
	RedisAddr          string
	RedisPassword      string
	KafkaBrokers       []string
	KafkaGroupID       string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64
	LogLevel           log.Level
	DisplayCurrency    string
}

func loadConfig() (*Config, error) {
	requestTimeout, err := getEnvDuration("REQUEST_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	level, err := log.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	mongo, err := loadMongoConfig()
	if err != nil {
		return nil, err
	}
	currency, err := domain.NormalizeCurrency(getEnv("DISPLAY_CURRENCY", "IDR"))
	if err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_CURRENCY: %w", err)
	}

	return &Config{
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		CatalogURL:         getEnv("CATALOG_URL", ""),
		CatalogDBPath:      getEnv("CATALOG_DB_PATH", "./data/catalog.db"),
		MigrationsPath:     getEnv("MIGRATIONS_PATH", ""),
		Mongo:              mongo,
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:       splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaGroupID:       getEnv("KAFKA_GROUP_ID", "storefront-cart"),
		RequestTimeout:     requestTimeout,
		ShutdownTimeout:    shutdownTimeout,
		MaxRequestBodySize: 1 << 20, // 1MB
		LogLevel:           level,
		DisplayCurrency:    currency,
	}, nil
}

func loadMongoConfig() (cart.MongoConfig, error) {
	cfg := cart.MongoConfig{
		URI:      getEnv("MONGO_URI", ""),
		Database: getEnv("MONGO_DB_NAME", "storefront"),
	}
	var err error
	if cfg.ConnectTimeout, err = getEnvDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second); err != nil {
		return cfg, err
	}
	if cfg.ServerSelectionTimeout, err = getEnvDuration("MONGO_SERVER_SELECTION_TIMEOUT", 5*time.Second); err != nil {
		return cfg, err
	}
	if cfg.MaxPoolSize, err = getEnvUint("MONGO_MAX_POOL_SIZE", 100); err != nil {
		return cfg, err
	}
	if cfg.MinPoolSize, err = getEnvUint("MONGO_MIN_POOL_SIZE", 10); err != nil {
		return cfg, err
	}
	if cfg.MaxPoolSize == 0 || cfg.MinPoolSize > cfg.MaxPoolSize {
		return cfg, fmt.Errorf("invalid MONGO_MIN_POOL_SIZE: must not exceed a positive MONGO_MAX_POOL_SIZE")
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

func getEnvUint(key string, defaultValue uint64) (uint64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
