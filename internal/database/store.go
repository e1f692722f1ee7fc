package database

import (
	"context"
	"database/sql"
	"log/slog"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"foodmemories/internal/config"
	"foodmemories/internal/database/migration"
	"foodmemories/internal/repository"
	"foodmemories/internal/repository/mongodb"
	"foodmemories/internal/repository/postgres"
)

// Store bundles the repositories of one document store with its lifecycle.
type Store struct {
	Driver       string
	Participants repository.ParticipantRepository
	Photos       repository.PhotoRepository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Ping reports whether the document store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// Close releases the underlying connections.
func (s *Store) Close(ctx context.Context) error {
	return s.close(ctx)
}

// Open connects to the store named by c.URI, prepares its schema and returns its repositories.
func Open(ctx context.Context, c config.DatabaseConfig, log *slog.Logger) (*Store, error) {
	driver, err := DriverFor(c.URI)
	if err != nil {
		return nil, err
	}

	if driver == DriverPostgres {
		db, err := NewPostgres(c)
		if err != nil {
			return nil, err
		}
		if err := migration.EnsureMigrated(ctx, db, log, HostOf(c.URI)); err != nil {
			_ = db.Close()
			return nil, err
		}
		return NewPostgresStore(db), nil
	}

	client, db, err := NewMongo(ctx, c)
	if err != nil {
		return nil, err
	}
	if err := migration.EnsureIndexes(ctx, db, log); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return NewMongoStore(client, db), nil
}

// NewPostgresStore wraps an open *sql.DB.
func NewPostgresStore(db *sql.DB) *Store {
	return &Store{
		Driver:       DriverPostgres,
		Participants: postgres.NewParticipantPostgres(db),
		Photos:       postgres.NewPhotoPostgres(db),
		ping:         db.PingContext,
		close:        func(context.Context) error { return db.Close() },
	}
}

// NewMongoStore wraps a connected client and its database.
func NewMongoStore(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{
		Driver:       DriverMongo,
		Participants: mongodb.NewParticipantMongo(db),
		Photos:       mongodb.NewPhotoMongo(db),
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		close: client.Disconnect,
	}
}
