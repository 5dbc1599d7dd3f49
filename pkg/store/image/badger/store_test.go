package badger_test

import (
	"testing"

	"github.com/marmos91/blockfs/pkg/store/image"
	"github.com/marmos91/blockfs/pkg/store/image/badger"
	"github.com/marmos91/blockfs/pkg/store/image/imagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConformance(t *testing.T) {
	imagetest.RunConformanceSuite(t, func(t *testing.T) image.Store {
		s, err := badger.New(badger.Config{Dir: t.TempDir()})
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestConformance_InMemory(t *testing.T) {
	imagetest.RunConformanceSuite(t, func(t *testing.T) image.Store {
		s, err := badger.New(badger.Config{InMemory: true})
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestList(t *testing.T) {
	s, err := badger.New(badger.Config{InMemory: true})
	require.NoError(t, err)
	defer s.Close()

	ctx := t.Context()
	require.NoError(t, s.Save(ctx, "b.bin", []byte{1}))
	require.NoError(t, s.Save(ctx, "a.bin", []byte{2}))

	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.bin", "b.bin"}, names)
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := t.Context()

	s, err := badger.New(badger.Config{Dir: dir})
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "img", []byte("kept")))
	require.NoError(t, s.Close())

	s, err = badger.New(badger.Config{Dir: dir})
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Load(ctx, "img")
	require.NoError(t, err)
	assert.Equal(t, []byte("kept"), got)
}

func TestNew_RequiresLocation(t *testing.T) {
	_, err := badger.New(badger.Config{})
	assert.Error(t, err)
}

func TestSize_ZeroAfterClose(t *testing.T) {
	s, err := badger.New(badger.Config{Dir: t.TempDir()})
	require.NoError(t, err)

	lsm, vlog := s.Size()
	assert.GreaterOrEqual(t, lsm, int64(0))
	assert.GreaterOrEqual(t, vlog, int64(0))

	require.NoError(t, s.Close())
	lsm, vlog = s.Size()
	assert.Zero(t, lsm)
	assert.Zero(t, vlog)
}
