package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mikiasgoitom/Snapfeed/internal/infrastructure/cache"
	"github.com/mikiasgoitom/Snapfeed/internal/infrastructure/config"
	"github.com/mikiasgoitom/Snapfeed/internal/infrastructure/database"
	"github.com/mikiasgoitom/Snapfeed/internal/infrastructure/logger"
	"github.com/mikiasgoitom/Snapfeed/internal/infrastructure/repository/mongodb"
	"github.com/mikiasgoitom/Snapfeed/internal/infrastructure/store"
	"github.com/mikiasgoitom/Snapfeed/internal/usecase"
	"github.com/redis/go-redis/v9"
)

// app holds the connections a maintenance command needs.
type app struct {
	cfg     *config.Config
	log     *logger.SlogLogger
	mongo   *database.MongoDBClient
	rdb     *redis.Client
	auditor *usecase.IntegrityAuditor
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	// Reports go to stdout, so logs go to stderr.
	appLogger := logger.NewSlogLoggerTo(os.Stderr, cfg.Env, cfg.LogLevel)

	client, err := database.NewMongoDBClient(cfg.MongoURI)
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.MongoDBName)

	auditor := usecase.NewIntegrityAuditor(
		mongodb.NewPostRepository(db),
		mongodb.NewMediaRepository(db),
		mongodb.NewMongoUserRepository(db),
		appLogger,
		config.NewConfig(cfg),
	)

	a := &app{cfg: cfg, log: appLogger, mongo: client, auditor: auditor}
	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedisFromURL(ctx, cfg.RedisURL)
		if err != nil {
			appLogger.Warnf("feed cache will not be invalidated: %v", err)
		} else {
			a.rdb = rdb
			auditor.SetFeedCache(store.NewFeedCacheStore(rdb, cfg.FeedCacheTTL()))
		}
	}
	return a, nil
}

func (a *app) Close() {
	cache.Close(a.rdb)
	if err := a.mongo.Disconnect(); err != nil {
		a.log.Warnf("failed to disconnect from mongodb: %v", err)
	}
}

// withApp opens the store, runs fn and closes everything afterwards.
func withApp(ctx context.Context, fn func(a *app) error) error {
	a, err := openApp(ctx)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer a.Close()
	return fn(a)
}
