package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewTracerProvider(t *testing.T) {
	// The exporter connects lazily, so an unreachable endpoint is fine here.
	tp, err := NewTracerProvider(context.Background(), "http://localhost:0/v1/traces", ServiceName)
	require.NoError(t, err)
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestNewProvider_SetsServiceName(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp, err := newProvider(recorder, "interview-test")
	require.NoError(t, err)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, span := tp.Tracer("test").Start(context.Background(), "work")
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "work", ended[0].Name())
	assert.Contains(t, ended[0].Resource().Attributes(), attribute.String("service.name", "interview-test"))
}
