package migration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"foodmemories/internal/logging"
	"foodmemories/internal/repository/mongodb"
)

type indexStep struct {
	Collection string
	Model      mongo.IndexModel
}

var indexSteps = []indexStep{
	{
		Collection: mongodb.ParticipantsCollection,
		Model: mongo.IndexModel{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_participants_created_at"),
		},
	},
	{
		Collection: mongodb.PhotosCollection,
		Model: mongo.IndexModel{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_photos_created_at"),
		},
	},
	{
		Collection: mongodb.PhotosCollection,
		Model: mongo.IndexModel{
			Keys:    bson.D{{Key: "day", Value: 1}, {Key: "moduleId", Value: 1}},
			Options: options.Index().SetName("idx_photos_day_module"),
		},
	},
}

// EnsureIndexes creates the collection indexes. Creating an index that already
// exists with the same definition is a no-op in MongoDB, so this runs on every start.
func EnsureIndexes(ctx context.Context, db *mongo.Database, log *slog.Logger) error {
	start := time.Now()
	log = log.With(slog.String("component", "database"), slog.String("db_name", db.Name()))

	for _, step := range indexSteps {
		stepStart := time.Now()
		name, err := db.Collection(step.Collection).Indexes().CreateOne(ctx, step.Model)
		if err != nil {
			log.Error("db_index_failed",
				slog.String("status", "error"),
				slog.String("collection", step.Collection),
				logging.Err(err),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
			return fmt.Errorf("create index on %s: %w", step.Collection, err)
		}
		log.Info("db_index_step",
			slog.String("status", "success"),
			slog.String("collection", step.Collection),
			slog.String("index", name),
			slog.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.Info("db_migration_success",
		slog.String("status", "success"),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
