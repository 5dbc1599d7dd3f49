package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/blockfs/pkg/metrics"
	_ "github.com/marmos91/blockfs/pkg/metrics/prometheus"
)

func TestDisabledByDefault(t *testing.T) {
	metrics.Reset()

	assert.False(t, metrics.IsEnabled())
	assert.Nil(t, metrics.GetRegistry())
	assert.Nil(t, metrics.NewSessionMetrics())
	assert.Nil(t, metrics.NewImageMetrics())
	metrics.ObserveBadger(nil)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInitRegistry(t *testing.T) {
	t.Cleanup(metrics.Reset)

	reg := metrics.InitRegistry()
	require.NotNil(t, reg)
	assert.True(t, metrics.IsEnabled())
	assert.Same(t, reg, metrics.GetRegistry())

	m := metrics.NewSessionMetrics()
	require.NotNil(t, m)
	m.SetUsage(3, 10)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "blockfs_disk_blocks_used 3")
	assert.Contains(t, body, "go_goroutines")
	assert.True(t, strings.Contains(body, "process_") || strings.Contains(body, "go_"))
}

func TestInitRegistry_Replaces(t *testing.T) {
	t.Cleanup(metrics.Reset)

	first := metrics.InitRegistry()
	require.NotNil(t, metrics.NewImageMetrics())

	second := metrics.InitRegistry()
	assert.NotSame(t, first, second)
	assert.NotNil(t, metrics.NewImageMetrics(), "a fresh registry accepts the same metric names again")
}
