package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetricsUsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/drive/history", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/drive/history", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/api/drive/history", "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestsTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.InFlightGauge))
}

func TestDriveMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewDriveMetrics(reg)

	m.Observe("backup", time.Now(), nil)
	m.Observe("backup", time.Now(), errors.New("boom"))
	m.Pruned(2)
	m.Exchange(nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("backup", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("backup", "error")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BackupsPruned))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TokenExchanges.WithLabelValues("success")))

	var nilMetrics *DriveMetrics
	nilMetrics.Observe("backup", time.Now(), nil)
	nilMetrics.Pruned(1)
}

func TestHandlerServesRegistry(t *testing.T) {
	reg := NewRegistry()
	NewDriveMetrics(reg).Pruned(1)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "promptmetal_drive_backups_pruned_total 1"))
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
