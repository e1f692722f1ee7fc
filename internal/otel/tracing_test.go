package otel

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodmemories/internal/logging"
)

func TestInit_Disabled(t *testing.T) {
	t.Setenv("OTEL_SDK_DISABLED", "true")

	var logs bytes.Buffer
	shutdown, err := Init(context.Background(), logging.New(&logs, time.UTC))
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.Contains(t, logs.String(), `"tracing_enabled":false`)
}

func TestInit_UnsupportedProtocolDegrades(t *testing.T) {
	t.Setenv("OTEL_SDK_DISABLED", "")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "carrier-pigeon")

	var logs bytes.Buffer
	shutdown, err := Init(context.Background(), logging.New(&logs, time.UTC), WithServiceName("foodmemories-facilitator"))
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.Contains(t, logs.String(), `"msg":"tracing_init_failed"`)
	assert.Contains(t, logs.String(), "unsupported OTLP protocol: carrier-pigeon")
}

func TestInit_HTTPExporter(t *testing.T) {
	t.Setenv("OTEL_SDK_DISABLED", "")
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "http/protobuf")
	t.Setenv("OTEL_SERVICE_NAME", "")
	t.Setenv("OTEL_TRACES_SAMPLER", "always_off")

	var logs bytes.Buffer
	shutdown, err := Init(context.Background(), logging.New(&logs, time.UTC), WithServiceName("foodmemories-facilitator"))
	require.NoError(t, err)
	defer shutdown(context.Background())

	assert.Contains(t, logs.String(), `"service":"foodmemories-facilitator"`)
	assert.Contains(t, logs.String(), `"sampler":"always_off"`)
}

func TestSamplerFromEnv(t *testing.T) {
	t.Setenv("OTEL_TRACES_SAMPLER", "traceidratio")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.25")
	sc := samplerFromEnv()
	assert.Equal(t, 0.25, sc.ratio)
	assert.Contains(t, sc.sampler().Description(), "0.25")

	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "7")
	assert.Equal(t, 1.0, samplerFromEnv().ratio)

	t.Setenv("OTEL_TRACES_SAMPLER", "always_off")
	assert.Equal(t, "AlwaysOffSampler", samplerFromEnv().sampler().Description())

	t.Setenv("OTEL_TRACES_SAMPLER", "")
	assert.Contains(t, samplerFromEnv().sampler().Description(), "ParentBased")
}
