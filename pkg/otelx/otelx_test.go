package otelx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/aussiebroadwan/clientdesk/pkg/otelx"
)

func TestSetupWithoutEndpointIsNoop(t *testing.T) {
	shutdown, err := otelx.Setup(context.Background(), otelx.Config{Service: "clientdesk"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestSetupWithEndpoint(t *testing.T) {
	// The exporter connects lazily, so nothing needs to listen here.
	shutdown, err := otelx.Setup(context.Background(), otelx.Config{
		Service:  "clientdesk",
		Version:  "test",
		Endpoint: "http://127.0.0.1:4318",
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = shutdown(ctx)
}

func TestHandlerRecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	var sawSpan bool
	h := otelx.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawSpan = trace.SpanContextFromContext(r.Context()).HasTraceID()
		w.WriteHeader(http.StatusNoContent)
	}), "clientdesk", tp)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/clients/1", nil))

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.True(t, sawSpan)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, "clientdesk DELETE", spans[0].Name())
}
