// Package app opens the storage layer shared by the server and the seeder.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"studyhub/internal/cache"
	"studyhub/internal/config"
	"studyhub/internal/repository"
)

// App holds the storage clients and the repositories and caches built on them.
type App struct {
	Mongo *mongo.Client
	Redis *redis.Client

	SessionRepo repository.SessionRepo
	ProfileRepo repository.ProfileRepo

	SessionCache     cache.SessionCache
	GameCache        cache.GameCache
	LeaderboardCache cache.LeaderboardCache
}

// Open connects to MongoDB and Redis and pings both.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		mongoClient.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	log.Info("connected to MongoDB", zap.String("database", cfg.MongoDatabase))

	db := mongoClient.Database(cfg.MongoDatabase)
	if err := repository.EnsureSessionIndexes(ctx, db); err != nil {
		log.Warn("session index creation failed", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	if _, err := rdb.Ping(pingCtx).Result(); err != nil {
		rdb.Close()
		mongoClient.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	log.Info("connected to Redis", zap.String("addr", cfg.RedisAddr))

	return &App{
		Mongo:            mongoClient,
		Redis:            rdb,
		SessionRepo:      repository.NewSessionRepo(db),
		ProfileRepo:      repository.NewProfileRepo(db),
		SessionCache:     cache.NewSessionCache(rdb),
		GameCache:        cache.NewGameCache(rdb),
		LeaderboardCache: cache.NewLeaderboardCache(rdb),
	}, nil
}

// Close disconnects both stores.
func (a *App) Close(ctx context.Context) {
	a.Redis.Close()
	a.Mongo.Disconnect(ctx)
}
