package prometheus

import (
	"errors"
	"time"

	"github.com/marmos91/blockfs/pkg/metrics"
	"github.com/marmos91/blockfs/pkg/store/image"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// imageMetrics is the Prometheus implementation of image.Metrics.
type imageMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	bytes      *prometheus.CounterVec
}

// NewImageMetrics creates a new Prometheus-backed image.Metrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewImageMetrics() image.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &imageMetrics{
		operations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "blockfs_image_operations_total",
				Help: "Total number of image store operations by store type, operation and status",
			},
			[]string{"store_type", "operation", "status"}, // status: "success", "not_found", "error"
		),
		duration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "blockfs_image_operation_duration_milliseconds",
				Help: "Duration of image store operations in milliseconds",
				Buckets: []float64{
					0.1, // memory store
					1,   // local file
					5,
					10,
					50,
					100, // S3 round trips
					500,
					1000,
					5000, // slow object stores
				},
			},
			[]string{"store_type", "operation"},
		),
		bytes: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "blockfs_image_bytes_total",
				Help: "Total bytes moved by image store operations",
			},
			[]string{"store_type", "operation"},
		),
	}
}

func (m *imageMetrics) ObserveOperation(storeType, op string, n int, d time.Duration, err error) {
	if m == nil {
		return
	}

	status := "success"
	switch {
	case errors.Is(err, image.ErrImageNotFound):
		status = "not_found"
	case err != nil:
		status = "error"
	}

	m.operations.WithLabelValues(storeType, op, status).Inc()
	m.duration.WithLabelValues(storeType, op).Observe(d.Seconds() * 1000)
	if n > 0 {
		m.bytes.WithLabelValues(storeType, op).Add(float64(n))
	}
}
