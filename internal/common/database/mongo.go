// internal/common/database/mongo.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/cozypet/loan-processor-ai/internal/common/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoClient wraps the mongo client together with the configured database.
type MongoClient struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// NewMongo connects and pings within the configured timeout.
func NewMongo(ctx context.Context, cfg config.MongoConfig) (*MongoClient, error) {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second

	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect failed: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}

	return &MongoClient{
		Client:   client,
		Database: client.Database(cfg.Database),
	}, nil
}

// Close disconnects the underlying client.
func (c *MongoClient) Close(ctx context.Context) error {
	if c.Client != nil {
		return c.Client.Disconnect(ctx)
	}
	return nil
}
