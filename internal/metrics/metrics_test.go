package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopMetrics(t *testing.T) {
	var m Noop
	m.ObserveProcessed("file", StatusOK)
	m.ObserveUpload("r2", StatusError, time.Second)
	m.SetCacheEntries(3)
}

func TestPromMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewProm("optibridge", reg)

	m.ObserveProcessed("file", StatusOK)
	m.ObserveProcessed("file", StatusOK)
	m.ObserveProcessed("clipboard", StatusError)
	m.ObserveUpload("cloudinary", StatusOK, 250*time.Millisecond)
	m.SetCacheEntries(4)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.processed.WithLabelValues("file", StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.processed.WithLabelValues("clipboard", StatusError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.uploads.WithLabelValues("cloudinary", StatusOK)))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.cacheEntries))
	assert.Equal(t, 1, testutil.CollectAndCount(m.uploadDuration))
}

func TestHandlerServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewProm("optibridge", reg)
	m.ObserveUpload("r2", StatusOK, time.Second)

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `optibridge_uploads_total{provider="r2",status="ok"} 1`)
	assert.Contains(t, string(body), "optibridge_upload_duration_seconds_bucket")
}
