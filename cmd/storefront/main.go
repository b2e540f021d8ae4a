package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fjod/go_storefront/internal/cart"
	"github.com/fjod/go_storefront/internal/catalog"
	"github.com/fjod/go_storefront/internal/checkout"
	h "github.com/fjod/go_storefront/internal/http"
	"github.com/fjod/go_storefront/internal/metrics"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetOutput(os.Stdout)

	cfg, err := loadConfig()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	log.SetLevel(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	products, err := openCatalog(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to open product catalog")
	}
	defer products.Close()

	repo, mongoDB, err := openCartRepository(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to open cart store")
	}
	if mongoDB != nil {
		defer func() {
			if err := mongoDB.Client().Disconnect(context.Background()); err != nil {
				log.WithError(err).Error("failed to disconnect from MongoDB")
			}
		}()
	}

	var cache cart.Cache = cart.NoopCache{}
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.WithError(err).Fatal("Redis connection failed")
		}
		log.WithField("addr", cfg.RedisAddr).Info("Redis ping succeeded")
		cache = cart.NewRedisCache(redisClient)
	}

	storeMetrics := metrics.NewStoreMetrics()
	cartService := cart.NewService(repo, cache, products,
		cart.WithMetrics(storeMetrics),
		cart.WithDisplayCurrency(cfg.DisplayCurrency),
	)

	var publisher checkout.Publisher = checkout.NewLogPublisher()
	if len(cfg.KafkaBrokers) > 0 {
		publisher = checkout.NewKafkaPublisher(cfg.KafkaBrokers...)

		poller := cart.NewPoller(cartService, cfg.KafkaGroupID, cfg.KafkaBrokers...)
		go poller.Run(ctx)
		defer poller.Close()
		log.WithField("brokers", cfg.KafkaBrokers).Info("order events go to Kafka")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.WithError(err).Error("failed to close order publisher")
		}
	}()

	checkoutService := checkout.NewService(cartService, publisher, storeMetrics)

	router := h.NewRouter(h.RouterConfig{
		Products:           products,
		Carts:              cartService,
		Checkout:           checkoutService,
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.HTTPPort).Info("storefront starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}

	log.Info("server exited")
}

// openCatalog uses the remote catalog API when CATALOG_URL is set and the bundled sqlite catalog otherwise.
func openCatalog(cfg *Config) (catalog.Repository, error) {
	if cfg.CatalogURL != "" {
		log.WithField("url", cfg.CatalogURL).Info("using remote product catalog")
		return catalog.NewRemoteRepository(cfg.CatalogURL), nil
	}

	if dir := filepath.Dir(cfg.CatalogDBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	repo, err := catalog.NewSQLiteRepository(cfg.CatalogDBPath)
	if err != nil {
		return nil, err
	}
	if err := repo.RunMigrations(cfg.MigrationsPath); err != nil {
		repo.Close()
		return nil, err
	}
	log.WithField("path", cfg.CatalogDBPath).Info("product catalog ready")
	return repo, nil
}

// openCartRepository returns the MongoDB store when MONGO_URI is set and an in-memory store otherwise.
func openCartRepository(ctx context.Context, cfg *Config) (cart.Repository, *mongo.Database, error) {
	if cfg.Mongo.URI == "" {
		log.Warn("MONGO_URI not set, carts are kept in memory")
		return cart.NewMemoryRepository(), nil, nil
	}

	db, err := cart.ConnectMongoDB(ctx, cfg.Mongo)
	if err != nil {
		return nil, nil, err
	}
	repo := cart.NewMongoRepository(db)
	if err := repo.CreateIndexes(ctx); err != nil {
		return nil, nil, err
	}
	log.WithFields(log.Fields{
		"database":      cfg.Mongo.Database,
		"max_pool_size": cfg.Mongo.MaxPoolSize,
	}).Info("connected to MongoDB")
	return repo, db, nil
}
