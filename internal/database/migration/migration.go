package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"foodmemories/internal/logging"
)

type migrationStep struct {
	Name string
	SQL  string
}

// photo_participants.participant_id has no foreign key: deleting a participant
// leaves photo references dangling, and reads drop them.
var steps = []migrationStep{
	{
		Name: "create_table_participants",
		SQL: `CREATE TABLE IF NOT EXISTS participants (
  id         UUID        PRIMARY KEY,
  name       TEXT        NOT NULL,
  email      TEXT        NOT NULL DEFAULT '',
  dietary    TEXT        NOT NULL DEFAULT '',
  cultural   TEXT        NOT NULL DEFAULT '',
  notes      TEXT        NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_participants_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_participants_created_at ON participants (created_at);`,
	},
	{
		Name: "create_table_photos",
		SQL: `CREATE TABLE IF NOT EXISTS photos (
  id            UUID        PRIMARY KEY,
  filename      TEXT        NOT NULL,
  original_name TEXT        NOT NULL,
  storage_path  TEXT        NOT NULL UNIQUE,
  mime_type     TEXT        NOT NULL,
  size          BIGINT      NOT NULL CHECK (size >= 0),
  day           INTEGER     NOT NULL CHECK (day BETWEEN 1 AND 2),
  phase_index   INTEGER     NOT NULL CHECK (phase_index >= 0),
  module_id     TEXT        NOT NULL DEFAULT '',
  caption       TEXT        NOT NULL DEFAULT '',
  notes         TEXT        NOT NULL DEFAULT '',
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_photos_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_photos_created_at ON photos (created_at);`,
	},
	{
		Name: "create_index_photos_day_module",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_photos_day_module ON photos (day, module_id);`,
	},
	{
		Name: "create_table_photo_participants",
		SQL: `CREATE TABLE IF NOT EXISTS photo_participants (
  photo_id       UUID    NOT NULL REFERENCES photos (id) ON DELETE CASCADE,
  participant_id UUID    NOT NULL,
  position       INTEGER NOT NULL,
  PRIMARY KEY (photo_id, participant_id)
);`,
	},
}

// sentinelTable is the last table the steps create; its presence means every step completed.
// Steps are idempotent, so a run interrupted before it is simply repeated in full.
const sentinelTable = "photo_participants"

// EnsureMigrated runs the migration steps unless the sentinel table already exists.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *slog.Logger, dbHost string) error {
	start := time.Now()
	log = log.With(slog.String("component", "database"), slog.String("db_host", dbHost))

	log.Info("db_migration_check", slog.String("status", "starting"))

	var exists bool
	query := "SELECT to_regclass('public." + sentinelTable + "') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			slog.String("status", "error"),
			logging.Err(err),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			slog.String("status", "success"),
			slog.String("detail", "schema already exists, skipping migration"),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("db_migration_start", slog.String("status", "in_progress"))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				slog.String("status", "error"),
				slog.String("migration_step", step.Name),
				logging.Err(err),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			slog.String("status", "success"),
			slog.String("migration_step", step.Name),
			slog.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.Info("db_migration_success",
		slog.String("status", "success"),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
