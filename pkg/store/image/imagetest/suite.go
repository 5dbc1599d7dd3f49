// Package imagetest is a conformance suite shared by every image.Store
// implementation.
package imagetest

import (
	"bytes"
	"testing"

	"github.com/marmos91/blockfs/pkg/store/image"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// StoreFactory creates a fresh store for each test. It may use t.TempDir()
// and t.Cleanup() for stores that need filesystem paths or teardown.
type StoreFactory func(t *testing.T) image.Store

// RunConformanceSuite runs every conformance test against factory. Each test
// gets a fresh store.
func RunConformanceSuite(t *testing.T, factory StoreFactory) {
	t.Helper()

	t.Run("SaveLoad", func(t *testing.T) { testSaveLoad(t, factory(t)) })
	t.Run("LoadMissing", func(t *testing.T) { testLoadMissing(t, factory(t)) })
	t.Run("Overwrite", func(t *testing.T) { testOverwrite(t, factory(t)) })
	t.Run("ExistsDelete", func(t *testing.T) { testExistsDelete(t, factory(t)) })
	t.Run("Isolation", func(t *testing.T) { testIsolation(t, factory(t)) })
	t.Run("InvalidNames", func(t *testing.T) { testInvalidNames(t, factory(t)) })
	t.Run("HealthCheck", func(t *testing.T) { testHealthCheck(t, factory(t)) })
	t.Run("Closed", func(t *testing.T) { testClosed(t, factory(t)) })
}

// sampleImage returns a 100x512 image with a recognizable pattern.
func sampleImage() []byte {
	data := make([]byte, 100*512)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

func testSaveLoad(t *testing.T, s image.Store) {
	ctx := t.Context()
	want := sampleImage()

	require.NoError(t, s.Save(ctx, "fs_image.bin", want))

	got, err := s.Load(ctx, "fs_image.bin")
	require.NoError(t, err)
	assert.True(t, bytes.Equal(want, got), "loaded image differs from saved image")
}

func testLoadMissing(t *testing.T, s image.Store) {
	_, err := s.Load(t.Context(), "absent.bin")
	assert.ErrorIs(t, err, image.ErrImageNotFound)
}

func testOverwrite(t *testing.T, s image.Store) {
	ctx := t.Context()

	require.NoError(t, s.Save(ctx, "img", []byte("first version")))
	require.NoError(t, s.Save(ctx, "img", []byte("second")))

	got, err := s.Load(ctx, "img")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)
}

func testExistsDelete(t *testing.T, s image.Store) {
	ctx := t.Context()

	ok, err := s.Exists(ctx, "img")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Save(ctx, "img", []byte{1, 2, 3}))
	ok, err = s.Exists(ctx, "img")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Delete(ctx, "img"))
	ok, err = s.Exists(ctx, "img")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Load(ctx, "img")
	assert.ErrorIs(t, err, image.ErrImageNotFound)

	assert.NoError(t, s.Delete(ctx, "img"), "deleting a missing image is not an error")
}

func testIsolation(t *testing.T, s image.Store) {
	ctx := t.Context()
	data := []byte("abc")

	require.NoError(t, s.Save(ctx, "a", data))
	require.NoError(t, s.Save(ctx, "b", []byte("xyz")))
	data[0] = 'Z'

	got, err := s.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got, "store must not alias the caller's slice")

	got[1] = 'Q'
	again, err := s.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again, "loaded slices must be independent copies")

	other, err := s.Load(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []byte("xyz"), other)
}

func testInvalidNames(t *testing.T, s image.Store) {
	for _, name := range []string{"", ".", "..", "a/b", `a\b`} {
		assert.Error(t, s.Save(t.Context(), name, []byte{1}), "name %q", name)
	}
}

func testHealthCheck(t *testing.T, s image.Store) {
	assert.NoError(t, s.HealthCheck(t.Context()))
}

func testClosed(t *testing.T, s image.Store) {
	ctx := t.Context()
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Save(ctx, "img", []byte{1}), image.ErrStoreClosed)
	_, err := s.Load(ctx, "img")
	assert.ErrorIs(t, err, image.ErrStoreClosed)
	_, err = s.Exists(ctx, "img")
	assert.ErrorIs(t, err, image.ErrStoreClosed)
	assert.ErrorIs(t, s.Delete(ctx, "img"), image.ErrStoreClosed)
	assert.ErrorIs(t, s.HealthCheck(ctx), image.ErrStoreClosed)
}
