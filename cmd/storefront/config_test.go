package main

import (
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"HTTP_PORT", "CATALOG_URL", "MONGO_URI", "REDIS_ADDR", "KAFKA_BROKERS",
		"REQUEST_TIMEOUT", "SHUTDOWN_TIMEOUT", "LOG_LEVEL", "DISPLAY_CURRENCY", "MONGO_DB_NAME",
		"MONGO_CONNECT_TIMEOUT", "MONGO_SERVER_SELECTION_TIMEOUT", "MONGO_MAX_POOL_SIZE", "MONGO_MIN_POOL_SIZE"} {
		t.Setenv(key, "")
	}

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Empty(t, cfg.CatalogURL)
	assert.Empty(t, cfg.Mongo.URI)
	assert.Equal(t, "storefront", cfg.Mongo.Database)
	assert.Equal(t, 10*time.Second, cfg.Mongo.ConnectTimeout)
	assert.Equal(t, 5*time.Second, cfg.Mongo.ServerSelectionTimeout)
	assert.Equal(t, uint64(100), cfg.Mongo.MaxPoolSize)
	assert.Equal(t, uint64(10), cfg.Mongo.MinPoolSize)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, log.InfoLevel, cfg.LogLevel)
	assert.Equal(t, "IDR", cfg.DisplayCurrency)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DISPLAY_CURRENCY", "usd")

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, log.DebugLevel, cfg.LogLevel)
	assert.Equal(t, "USD", cfg.DisplayCurrency)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := map[string]string{
		"REQUEST_TIMEOUT":       "soon",
		"SHUTDOWN_TIMEOUT":      "-1s",
		"LOG_LEVEL":             "loud",
		"DISPLAY_CURRENCY":      "XXXX",
		"MONGO_CONNECT_TIMEOUT": "0s",
		"MONGO_MAX_POOL_SIZE":   "many",
		"MONGO_MIN_POOL_SIZE":   "500",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := loadConfig()
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestLoadConfig_MongoFromEnv(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://mongo:27017")
	t.Setenv("MONGO_DB_NAME", "carts")
	t.Setenv("MONGO_CONNECT_TIMEOUT", "3s")
	t.Setenv("MONGO_MAX_POOL_SIZE", "25")
	t.Setenv("MONGO_MIN_POOL_SIZE", "5")

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, "mongodb://mongo:27017", cfg.Mongo.URI)
	assert.Equal(t, "carts", cfg.Mongo.Database)
	assert.Equal(t, 3*time.Second, cfg.Mongo.ConnectTimeout)
	assert.Equal(t, uint64(25), cfg.Mongo.MaxPoolSize)
	assert.Equal(t, uint64(5), cfg.Mongo.MinPoolSize)
}
