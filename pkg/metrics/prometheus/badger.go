package prometheus

import (
	"github.com/marmos91/blockfs/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RegisterBadgerCollector exports the LSM tree and value log sizes of a
// BadgerDB-backed store. The sizes are read at scrape time.
//
// Does nothing if metrics are not enabled (InitRegistry not called).
func RegisterBadgerCollector(src metrics.BadgerSizer) {
	if !metrics.IsEnabled() || src == nil {
		return
	}

	reg := metrics.GetRegistry()

	promauto.With(reg).NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "blockfs_badger_lsm_size_bytes",
			Help: "Size of the BadgerDB LSM tree in bytes",
		},
		func() float64 {
			lsm, _ := src.Size()
			return float64(lsm)
		},
	)
	promauto.With(reg).NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "blockfs_badger_vlog_size_bytes",
			Help: "Size of the BadgerDB value log in bytes",
		},
		func() float64 {
			_, vlog := src.Size()
			return float64(vlog)
		},
	)
}
