package disk

import (
	"bytes"
	"testing"

	"github.com/marmos91/blockfs/pkg/fserrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImage_Layout(t *testing.T) {
	g := Geometry{BlockSize: 4, TotalBlocks: 3}
	d, err := NewWithGeometry(g)
	require.NoError(t, err)

	require.NoError(t, d.Write(0, []byte("ab")))
	require.NoError(t, d.Write(2, []byte("wxyz")))

	want := []byte{'a', 'b', 0, 0, 0, 0, 0, 0, 'w', 'x', 'y', 'z'}
	assert.Equal(t, want, d.Image())

	var buf bytes.Buffer
	n, err := d.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
	assert.Equal(t, want, buf.Bytes())
}

func TestImage_RoundTrip(t *testing.T) {
	d := New()
	for i := 0; i < TotalBlocks; i += 7 {
		idx, err := d.Allocate()
		require.NoError(t, err)
		require.NoError(t, d.Write(idx, bytes.Repeat([]byte{byte(i + 1)}, BlockSize/2)))
	}
	require.NotZero(t, d.UsedCount())

	var buf bytes.Buffer
	_, err := d.WriteTo(&buf)
	require.NoError(t, err)

	loaded, err := ReadFrom(DefaultGeometry(), &buf)
	require.NoError(t, err)

	for i := 0; i < TotalBlocks; i++ {
		orig, err := d.Read(i)
		require.NoError(t, err)
		got, err := loaded.Read(i)
		require.NoError(t, err)
		assert.Equal(t, orig, got, "block %d", i)
	}

	// The bitmap is not persisted: a reloaded disk starts with every block free.
	assert.Equal(t, TotalBlocks, loaded.FreeCount())
	assert.Empty(t, loaded.Allocated())
}

func TestDecode_WrongSize(t *testing.T) {
	_, err := Decode(DefaultGeometry(), make([]byte, 10))
	assert.True(t, fserrors.IsInvalidArgumentError(err))

	_, err = ReadFrom(DefaultGeometry(), bytes.NewReader(make([]byte, 10)))
	assert.Error(t, err)
}

func TestScan(t *testing.T) {
	g := Geometry{BlockSize: 8, TotalBlocks: 4}
	d, err := NewWithGeometry(g)
	require.NoError(t, err)
	require.NoError(t, d.Write(1, []byte("hi\nthere")))
	require.NoError(t, d.Write(3, []byte{0x01}))

	infos, err := Scan(g, d.Image(), 4)
	require.NoError(t, err)
	require.Len(t, infos, 2)

	assert.Equal(t, 1, infos[0].Index)
	assert.Equal(t, 8, infos[0].NonZero)
	assert.Equal(t, "hi.t", infos[0].Preview)

	assert.Equal(t, 3, infos[1].Index)
	assert.Equal(t, ".", infos[1].Preview)

	_, err = Scan(g, []byte{1}, 4)
	assert.Error(t, err)
}
