package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	loc := time.FixedZone("WIB", 7*60*60)

	New(&buf, loc).Warn("photo_cleanup_failed", "component", "photos", Err(errors.New("permission denied")))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "photo_cleanup_failed", entry["msg"])
	assert.Equal(t, "photos", entry["component"])
	assert.Equal(t, "permission denied", entry["error"])
	assert.NotContains(t, entry, "time")

	ts, err := time.Parse(time.RFC3339Nano, entry["ts"].(string))
	require.NoError(t, err)
	_, offset := ts.Zone()
	assert.Equal(t, 7*60*60, offset)
}

func TestNew_NilLocation(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, nil).Info("ok")
	assert.Contains(t, buf.String(), `"level":"info"`)
	assert.Contains(t, buf.String(), `"ts":`)
}
