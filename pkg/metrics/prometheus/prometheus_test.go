package prometheus

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/blockfs/pkg/fserrors"
	"github.com/marmos91/blockfs/pkg/metrics"
	"github.com/marmos91/blockfs/pkg/store/image"
	"github.com/marmos91/blockfs/pkg/vfs"
)

func enableMetrics(t *testing.T) {
	t.Helper()
	metrics.InitRegistry()
	t.Cleanup(metrics.Reset)
}

func TestConstructorsNilWhenDisabled(t *testing.T) {
	metrics.Reset()
	assert.Nil(t, NewSessionMetrics())
	assert.Nil(t, NewImageMetrics())
	RegisterBadgerCollector(fixedSizer{})
}

func TestSessionMetrics(t *testing.T) {
	enableMetrics(t)
	m := NewSessionMetrics().(*sessionMetrics)

	m.ObserveAllocate(true)
	m.ObserveAllocate(true)
	m.ObserveAllocate(false)
	m.ObserveFree()
	m.SetUsage(1, 100)
	m.SetInodes(4)
	m.ObserveOperation("mkdir", time.Millisecond, nil)
	m.ObserveOperation("rm", time.Millisecond, fserrors.NewNotFoundError("a", "entry"))
	m.ObserveOperation("save", time.Millisecond, errors.New("disk on fire"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.allocations.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.allocations.WithLabelValues("no_space")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.frees))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.blocksUsed))
	assert.Equal(t, 100.0, testutil.ToFloat64(m.blocksTotal))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.inodes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("mkdir", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("rm", "NotFound")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("save", "error")))
	assert.Equal(t, 3, testutil.CollectAndCount(m.duration))
}

func TestSessionMetrics_NilReceiver(t *testing.T) {
	var m *sessionMetrics
	assert.NotPanics(t, func() {
		m.ObserveAllocate(true)
		m.ObserveFree()
		m.SetUsage(1, 2)
		m.SetInodes(1)
		m.ObserveOperation("ls", 0, nil)
	})
}

func TestSessionMetrics_WiredIntoSession(t *testing.T) {
	enableMetrics(t)
	m := metrics.NewSessionMetrics()
	require.NotNil(t, m)

	s, err := vfs.New(vfs.WithMetrics(m))
	require.NoError(t, err)
	_, err = s.CreateFile(t.Context(), "a", []byte("hello"))
	require.NoError(t, err)

	sm := m.(*sessionMetrics)
	assert.Equal(t, 1.0, testutil.ToFloat64(sm.blocksUsed))
	assert.Equal(t, 2.0, testutil.ToFloat64(sm.inodes))
	assert.Equal(t, 1.0, testutil.ToFloat64(sm.operations.WithLabelValues("create", "ok")))
}

func TestImageMetrics(t *testing.T) {
	enableMetrics(t)
	m := NewImageMetrics().(*imageMetrics)

	m.ObserveOperation("file", "save", 51200, 2*time.Millisecond, nil)
	m.ObserveOperation("file", "load", 0, time.Millisecond, fmt.Errorf("wrapped: %w", image.ErrImageNotFound))
	m.ObserveOperation("s3", "save", 10, time.Second, errors.New("timeout"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("file", "save", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("file", "load", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("s3", "save", "error")))
	assert.Equal(t, 51200.0, testutil.ToFloat64(m.bytes.WithLabelValues("file", "save")))
}

type fixedSizer struct{}

func (fixedSizer) Size() (int64, int64) { return 1024, 4096 }

func TestBadgerCollector(t *testing.T) {
	enableMetrics(t)
	RegisterBadgerCollector(fixedSizer{})

	families, err := metrics.GetRegistry().Gather()
	require.NoError(t, err)

	got := map[string]float64{}
	for _, f := range families {
		if len(f.GetMetric()) == 1 && f.GetMetric()[0].GetGauge() != nil {
			got[f.GetName()] = f.GetMetric()[0].GetGauge().GetValue()
		}
	}
	assert.Equal(t, 1024.0, got["blockfs_badger_lsm_size_bytes"])
	assert.Equal(t, 4096.0, got["blockfs_badger_vlog_size_bytes"])
}
