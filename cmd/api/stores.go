package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/order-tracking/internal/api/handler"
	"github.com/99minutos/order-tracking/internal/infrastructure/config"
	mongodb "github.com/99minutos/order-tracking/internal/infrastructure/db/mongo"
	redisdb "github.com/99minutos/order-tracking/internal/infrastructure/db/redis"
)

const startupPingTimeout = 5 * time.Second

// unavailable is the readiness check of a store that could not be set up at
// all, so readiness keeps reporting the reason.
func unavailable(err error) handler.Pinger {
	return func(context.Context) error {
		return fmt.Errorf("disabled: %w", err)
	}
}

// openAuditStore sets up the MongoDB audit trail. The returned dependency is
// always meant for readiness, also when Mongo is down or misconfigured. The
// repository is nil only when the client could not be built.
func openAuditStore(ctx context.Context, cfg config.MongoConfig, log zerolog.Logger) (*mongo.Client, *mongodb.EventRepository, handler.Dependency) {
	dep := handler.Dependency{Name: "mongodb"}

	client, err := mongodb.Open(mongodb.Config{
		URI:            cfg.URI,
		Database:       cfg.Database,
		MaxPoolSize:    cfg.MaxPoolSize,
		ConnectTimeout: startupPingTimeout,
	})
	if err != nil {
		log.Warn().Err(err).Msg("mongodb misconfigured, order audit trail disabled")
		dep.Ping = unavailable(err)
		return nil, nil, dep
	}
	dep.Ping = mongodb.Pinger(client)
	repo := mongodb.NewEventRepository(client.Database(cfg.Database))

	pingCtx, cancel := context.WithTimeout(ctx, startupPingTimeout)
	defer cancel()
	if err := dep.Ping(pingCtx); err != nil {
		log.Warn().Err(err).Msg("mongodb unreachable at startup, audit writes fail until it recovers")
		return client, repo, dep
	}
	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to ensure audit indexes")
	}
	return client, repo, dep
}

// openRateLimiter sets up the Redis-backed limiter. The client dials lazily,
// so limiting starts once Redis answers; until then the middleware lets
// requests through and readiness reports Redis as down.
func openRateLimiter(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (*redis.Client, *redisdb.FixedWindowLimiter, handler.Dependency) {
	client := redisdb.NewClient(redisdb.Config{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	dep := handler.Dependency{Name: "redis", Ping: redisdb.Pinger(client)}

	pingCtx, cancel := context.WithTimeout(ctx, startupPingTimeout)
	defer cancel()
	if err := dep.Ping(pingCtx); err != nil {
		log.Warn().Err(err).Msg("redis unreachable at startup, requests are not rate limited until it recovers")
	}
	return client, redisdb.NewFixedWindowLimiter(client), dep
}
