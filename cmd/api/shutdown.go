package main

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/99minutos/order-tracking/internal/infrastructure/db/postgres"
)

// closeStores releases every connection that was opened. Optional stores
// that never connected are nil and skipped.
func closeStores(log zerolog.Logger, db *gorm.DB, mongoClient *mongo.Client, redisClient *redis.Client) {
	if err := postgres.Close(db); err != nil {
		log.Warn().Err(err).Msg("postgres close failed")
	}
	if mongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(ctx); err != nil {
			log.Warn().Err(err).Msg("mongodb disconnect failed")
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close failed")
		}
	}
}
