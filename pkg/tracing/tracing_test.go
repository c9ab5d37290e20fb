package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_Enabled_SetsGlobalProvider(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{
		ServiceName:    "lingualetter-test",
		ServiceVersion: "0.0.1",
		Environment:    "test",
		OTLPEndpoint:   "localhost:4318",
		SampleRate:     0.5,
		Enabled:        true,
	})
	require.NoError(t, err)
	defer func() { _ = shutdown(context.Background()) }()

	// Spans can be started against the installed provider; exporting is lazy
	// so no collector needs to be listening.
	_, span := Tracer("test").Start(context.Background(), "op")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
}
