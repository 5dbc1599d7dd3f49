// Package prometheus implements the blockfs metrics sinks on top of
// client_golang. Importing it (usually blank) registers the constructors
// with pkg/metrics.
package prometheus

import (
	"time"

	"github.com/marmos91/blockfs/pkg/fserrors"
	"github.com/marmos91/blockfs/pkg/metrics"
	"github.com/marmos91/blockfs/pkg/vfs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func init() {
	metrics.RegisterSessionMetricsConstructor(NewSessionMetrics)
	metrics.RegisterImageMetricsConstructor(NewImageMetrics)
	metrics.RegisterBadgerMetricsConstructor(RegisterBadgerCollector)
}

// sessionMetrics is the Prometheus implementation of vfs.Metrics.
type sessionMetrics struct {
	allocations *prometheus.CounterVec
	frees       prometheus.Counter
	blocksUsed  prometheus.Gauge
	blocksTotal prometheus.Gauge
	inodes      prometheus.Gauge
	operations  *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewSessionMetrics creates a new Prometheus-backed vfs.Metrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewSessionMetrics() vfs.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &sessionMetrics{
		allocations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "blockfs_disk_allocations_total",
				Help: "Total number of block allocation attempts by result",
			},
			[]string{"result"}, // "ok", "no_space"
		),
		frees: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "blockfs_disk_frees_total",
				Help: "Total number of blocks returned to the free pool",
			},
		),
		blocksUsed: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "blockfs_disk_blocks_used",
				Help: "Number of blocks currently allocated",
			},
		),
		blocksTotal: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "blockfs_disk_blocks_total",
				Help: "Number of blocks on the disk",
			},
		),
		inodes: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "blockfs_inodes",
				Help: "Number of live inodes, root directory included",
			},
		),
		operations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "blockfs_fs_operations_total",
				Help: "Total number of filesystem operations by operation and status",
			},
			[]string{"operation", "status"}, // status: "ok" or the error code
		),
		duration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "blockfs_fs_operation_duration_milliseconds",
				Help: "Duration of filesystem operations in milliseconds",
				Buckets: []float64{
					0.01, // 10us - metadata only
					0.05,
					0.1,
					0.5,
					1,
					5,
					10,
					50, // large files
				},
			},
			[]string{"operation"},
		),
	}
}

func (m *sessionMetrics) ObserveAllocate(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "no_space"
	}
	m.allocations.WithLabelValues(result).Inc()
}

func (m *sessionMetrics) ObserveFree() {
	if m == nil {
		return
	}
	m.frees.Inc()
}

func (m *sessionMetrics) SetUsage(used, total int) {
	if m == nil {
		return
	}
	m.blocksUsed.Set(float64(used))
	m.blocksTotal.Set(float64(total))
}

func (m *sessionMetrics) SetInodes(n int) {
	if m == nil {
		return
	}
	m.inodes.Set(float64(n))
}

func (m *sessionMetrics) ObserveOperation(op string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, operationStatus(err)).Inc()
	m.duration.WithLabelValues(op).Observe(d.Seconds() * 1000)
}

// operationStatus maps err to a low-cardinality label value.
func operationStatus(err error) string {
	if err == nil {
		return "ok"
	}
	if code := fserrors.CodeOf(err); code != 0 {
		return code.String()
	}
	return "error"
}
