package metrics

import (
	"github.com/marmos91/blockfs/pkg/store/image"
	"github.com/marmos91/blockfs/pkg/vfs"
)

// The Prometheus constructors are implemented in pkg/metrics/prometheus.
// This indirection avoids import cycles while keeping the API clean.
var (
	newPrometheusSessionMetrics func() vfs.Metrics
	newPrometheusImageMetrics   func() image.Metrics
	newPrometheusBadgerMetrics  func(BadgerSizer)
)

// RegisterSessionMetricsConstructor registers the Prometheus session metrics constructor.
// Called by pkg/metrics/prometheus during package initialization.
func RegisterSessionMetricsConstructor(constructor func() vfs.Metrics) {
	newPrometheusSessionMetrics = constructor
}

// RegisterImageMetricsConstructor registers the Prometheus image store metrics constructor.
func RegisterImageMetricsConstructor(constructor func() image.Metrics) {
	newPrometheusImageMetrics = constructor
}

// RegisterBadgerMetricsConstructor registers the BadgerDB size collector constructor.
func RegisterBadgerMetricsConstructor(constructor func(BadgerSizer)) {
	newPrometheusBadgerMetrics = constructor
}

// NewSessionMetrics creates a Prometheus-backed vfs.Metrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called) or the
// prometheus package was not linked in. Callers pass the result straight to
// vfs.WithMetrics; a nil sink costs nothing.
//
// Example usage:
//
//	metrics.InitRegistry()
//	s, err := vfs.New(vfs.WithMetrics(metrics.NewSessionMetrics()))
func NewSessionMetrics() vfs.Metrics {
	if !IsEnabled() || newPrometheusSessionMetrics == nil {
		return nil
	}
	return newPrometheusSessionMetrics()
}

// NewImageMetrics creates a Prometheus-backed image.Metrics instance, or nil
// when metrics are disabled.
func NewImageMetrics() image.Metrics {
	if !IsEnabled() || newPrometheusImageMetrics == nil {
		return nil
	}
	return newPrometheusImageMetrics()
}

// BadgerSizer is implemented by stores backed by BadgerDB.
type BadgerSizer interface {
	Size() (lsm, vlog int64)
}

// ObserveBadger exports the on-disk size of a BadgerDB-backed store. It is a
// no-op when metrics are disabled.
func ObserveBadger(s BadgerSizer) {
	if !IsEnabled() || newPrometheusBadgerMetrics == nil || s == nil {
		return
	}
	newPrometheusBadgerMetrics(s)
}
