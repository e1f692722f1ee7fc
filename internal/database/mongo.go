package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"foodmemories/internal/config"
)

// DefaultMongoDatabase is used when neither DB_NAME nor the URI path names a database.
const DefaultMongoDatabase = "foodmemories"

var mongoConnect = mongo.Connect

// MongoDatabaseName resolves the database name: explicit config, then the URI path, then the default.
func MongoDatabaseName(c config.DatabaseConfig) string {
	if c.Name != "" {
		return c.Name
	}
	if cs, err := connstring.Parse(c.URI); err == nil && cs.Database != "" {
		return cs.Database
	}
	return DefaultMongoDatabase
}

// NewMongo connects to MongoDB, applies pool settings and verifies connectivity.
func NewMongo(ctx context.Context, c config.DatabaseConfig) (*mongo.Client, *mongo.Database, error) {
	if driver, err := DriverFor(c.URI); err != nil {
		return nil, nil, err
	} else if driver != DriverMongo {
		return nil, nil, fmt.Errorf("not a mongodb URI")
	}

	opts := options.Client().ApplyURI(c.URI)
	if c.MaxOpenConns > 0 {
		opts.SetMaxPoolSize(uint64(c.MaxOpenConns))
	}
	if c.MaxIdleConns > 0 {
		opts.SetMinPoolSize(uint64(c.MaxIdleConns))
	}
	if c.ConnMaxLifetimeSec > 0 {
		opts.SetMaxConnIdleTime(time.Duration(c.ConnMaxLifetimeSec) * time.Second)
	}

	client, err := mongoConnect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(MongoDatabaseName(c)), nil
}
