package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"imgrelay/internal/services"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counts(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()

	r.Record(ctx, services.RelayEvent{Kind: services.EventUploaded, Provider: "quax", Size: 2048, Duration: 120 * time.Millisecond})
	r.Record(ctx, services.RelayEvent{Kind: services.EventUploaded, Provider: "quax", Size: 10})
	r.Record(ctx, services.RelayEvent{Kind: services.EventFailed, Provider: "ikram", Code: "UPSTREAM_HTTP_ERROR"})
	r.Record(ctx, services.RelayEvent{Kind: services.EventFailed, Provider: "ikram"})
	r.Record(ctx, services.RelayEvent{Kind: services.EventCleanupFailed})
	r.Record(ctx, services.RelayEvent{Kind: services.EventDecoded, Provider: "quax"})

	assert.Equal(t, 2.0, testutil.ToFloat64(r.Uploads.WithLabelValues("quax", OutcomeSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.Uploads.WithLabelValues("ikram", OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Failures.WithLabelValues("ikram", "UPSTREAM_HTTP_ERROR")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Failures.WithLabelValues("ikram", "UNEXPECTED_ERROR")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.CleanupFailures))
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder()
	r.Record(context.Background(), services.RelayEvent{Kind: services.EventUploaded, Provider: "tmpfiles"})

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `imgrelay_relay_uploads_total{outcome="success",provider="tmpfiles"} 1`)
}
