package migration

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodmemories/internal/logging"
)

func TestEnsureMigrated_Skip(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var logs bytes.Buffer
	mock.ExpectQuery(regexp.QuoteMeta("SELECT to_regclass('public.photo_participants') IS NOT NULL")).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	err = EnsureMigrated(context.Background(), db, logging.New(&logs, time.UTC), "db.local")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Contains(t, logs.String(), `"msg":"db_migration_skip"`)
	assert.Contains(t, logs.String(), `"db_host":"db.local"`)
}

func TestEnsureMigrated_RunsAllSteps(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT to_regclass('public.photo_participants') IS NOT NULL")).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	for _, step := range steps {
		mock.ExpectExec(regexp.QuoteMeta(step.SQL)).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	var logs bytes.Buffer
	err = EnsureMigrated(context.Background(), db, logging.New(&logs, time.UTC), "db.local")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Contains(t, logs.String(), `"migration_step":"create_table_photo_participants"`)
	assert.Contains(t, logs.String(), `"msg":"db_migration_success"`)
}

func TestEnsureMigrated_StepFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT to_regclass('public.photo_participants') IS NOT NULL")).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta(steps[0].SQL)).WillReturnError(errors.New("permission denied"))

	err = EnsureMigrated(context.Background(), db, logging.Discard(), "db.local")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration step create_table_participants failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureMigrated_SentinelError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("to_regclass").WillReturnError(errors.New("conn reset"))

	err = EnsureMigrated(context.Background(), db, logging.Discard(), "db.local")
	assert.ErrorContains(t, err, "failed to check sentinel table: conn reset")
}

func TestEnsureMigrated_RecoversAfterPartialRun(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sentinel := regexp.QuoteMeta("SELECT to_regclass('public.photo_participants') IS NOT NULL")

	// first start: participants is created, then the next step fails
	mock.ExpectQuery(sentinel).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta(steps[0].SQL)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(steps[1].SQL)).WillReturnError(errors.New("disk full"))

	err = EnsureMigrated(context.Background(), db, logging.Discard(), "db.local")
	require.Error(t, err)

	// second start: the sentinel is still missing, so every step runs again
	mock.ExpectQuery(sentinel).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	for _, step := range steps {
		mock.ExpectExec(regexp.QuoteMeta(step.SQL)).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	var logs bytes.Buffer
	err = EnsureMigrated(context.Background(), db, logging.New(&logs, time.UTC), "db.local")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Contains(t, logs.String(), `"migration_step":"create_table_photo_participants"`)
	assert.NotContains(t, logs.String(), "db_migration_skip")
}
