package migration

import (
	"bytes"
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"foodmemories/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("creates every index", func(mt *mtest.T) {
		for range indexSteps {
			mt.AddMockResponses(mtest.CreateSuccessResponse())
		}

		var logs bytes.Buffer
		err := EnsureIndexes(context.Background(), mt.DB, logging.New(&logs, time.UTC))

		require.NoError(mt, err)
		assert.Contains(mt, logs.String(), `"index":"idx_photos_day_module"`)
		assert.Contains(mt, logs.String(), `"msg":"db_migration_success"`)
	})

	mt.Run("command error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 13, Message: "unauthorized"}))

		err := EnsureIndexes(context.Background(), mt.DB, logging.Discard())

		assert.ErrorContains(mt, err, "create index on participants")
	})
}
