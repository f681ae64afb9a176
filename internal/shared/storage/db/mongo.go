package db

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"healthdocs-backend/internal/shared/telemetry"
)

// ConnectMongo dials a MongoDB deployment and verifies it answers a primary ping.
func ConnectMongo(ctx context.Context, uri string, opts Options) (*mongo.Client, error) {
	if strings.TrimSpace(uri) == "" {
		return nil, fmt.Errorf("MONGO_URI is empty")
	}

	clientOpts := options.Client().ApplyURI(uri)
	if opts.MaxOpenConns > 0 {
		clientOpts.SetMaxPoolSize(uint64(opts.MaxOpenConns))
	}
	if opts.ConnMaxIdleTime > 0 {
		clientOpts.SetMaxConnIdleTime(opts.ConnMaxIdleTime)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout(opts))
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	telemetry.Info("mongo.connected", map[string]any{"max_pool": opts.MaxOpenConns})
	return client, nil
}
