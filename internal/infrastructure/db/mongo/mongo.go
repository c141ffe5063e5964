package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	appName        = "order-tracking"
	defaultTimeout = 10 * time.Second
)

// Config holds the audit store settings.
type Config struct {
	URI            string
	Database       string
	MaxPoolSize    uint64
	ConnectTimeout time.Duration
}

func (c Config) connectTimeout() time.Duration {
	if c.ConnectTimeout > 0 {
		return c.ConnectTimeout
	}
	return 5 * time.Second
}

// Open builds a client without waiting for the server. The driver connects in
// the background, so a server that is down now is picked up once it returns.
// Only a malformed URI or option fails here. Timeouts given in the URI
// override the ones from cfg.
func Open(cfg Config) (*mongo.Client, error) {
	opts := options.Client().
		SetAppName(appName).
		SetConnectTimeout(cfg.connectTimeout()).
		SetServerSelectionTimeout(cfg.connectTimeout()).
		ApplyURI(cfg.URI)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	client, err := mongo.Connect(context.Background(), opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	return client, nil
}

// Connect opens a client and pings the primary. The returned database is the
// one named in cfg.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	client, err := Open(cfg)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.connectTimeout())
	defer cancel()
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, client.Database(cfg.Database), nil
}

// Pinger returns a readiness check bound to client.
func Pinger(client *mongo.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}
}
