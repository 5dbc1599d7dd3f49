package directory

import (
	"bytes"
	"testing"

	"github.com/marmos91/blockfs/pkg/fserrors"
	"github.com/marmos91/blockfs/pkg/inode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddEntry(t *testing.T) {
	d := New(0, "root", nil)

	require.NoError(t, d.AddEntry("a.txt", 1, false))
	assert.True(t, d.HasEntry("a.txt"))
	assert.False(t, d.HasEntry("A.txt"), "names are case-sensitive")

	e, ok := d.GetEntry("a.txt")
	require.True(t, ok)
	assert.Equal(t, DirEntry{Name: "a.txt", InodeID: 1, IsDir: false}, e)
}

func TestAddEntry_Duplicate(t *testing.T) {
	d := New(0, "root", nil)
	require.NoError(t, d.AddEntry("x", 1, false))

	err := d.AddEntry("x", 2, true)
	require.Error(t, err)
	assert.True(t, fserrors.IsAlreadyExistsError(err))

	e, ok := d.GetEntry("x")
	require.True(t, ok)
	assert.Equal(t, inode.ID(1), e.InodeID, "existing entry must be unchanged")
	assert.False(t, e.IsDir)
	assert.Equal(t, 1, d.Len())
}

func TestAddEntry_InvalidNames(t *testing.T) {
	d := New(0, "root", nil)

	for _, name := range []string{"", ".", "..", "a/b", "nul\x00"} {
		err := d.AddEntry(name, 1, false)
		assert.True(t, fserrors.IsInvalidArgumentError(err), "name %q", name)
	}
	assert.Equal(t, 0, d.Len())
}

func TestRemoveEntry(t *testing.T) {
	d := New(0, "root", nil)
	require.NoError(t, d.AddEntry("a", 1, false))
	require.NoError(t, d.AddEntry("b", 2, false))

	removed, err := d.RemoveEntry("a")
	require.NoError(t, err)
	assert.Equal(t, inode.ID(1), removed.InodeID)

	_, ok := d.GetEntry("a")
	assert.False(t, ok)

	_, err = d.RemoveEntry("missing")
	assert.True(t, fserrors.IsNotFoundError(err))
	assert.Equal(t, []DirEntry{{Name: "b", InodeID: 2}}, d.ListEntries())
}

func TestListEntries_And_Format(t *testing.T) {
	d := New(0, "root", nil)

	var buf bytes.Buffer
	d.Format(&buf)
	assert.Equal(t, "Contents of directory 'root':\n  (empty)\n", buf.String())

	require.NoError(t, d.AddEntry("zeta", 2, false))
	require.NoError(t, d.AddEntry("docs", 1, true))

	entries := d.ListEntries()
	require.Len(t, entries, 2)
	assert.ElementsMatch(t, []string{"docs", "zeta"}, []string{entries[0].Name, entries[1].Name})

	buf.Reset()
	d.Format(&buf)
	assert.Contains(t, buf.String(), "  docs (DIR) -> inode 1\n")
	assert.Contains(t, buf.String(), "  zeta (FILE) -> inode 2\n")
}

func TestChangeDir(t *testing.T) {
	tree := NewTree(0)
	root := tree.Root()

	t.Run("ParentAtRoot", func(t *testing.T) {
		id, ok, err := root.ChangeDir("..")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, ID(0), id)
		assert.Equal(t, 0, root.Len())
	})

	docs, err := tree.Mkdir(root.ID, "docs", 1)
	require.NoError(t, err)
	require.NoError(t, root.AddEntry("a.txt", 2, false))

	t.Run("IntoSubdirectory", func(t *testing.T) {
		id, ok, err := root.ChangeDir("docs")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, docs.ID, id)
	})

	t.Run("ParentOfChild", func(t *testing.T) {
		id, ok, err := docs.ChangeDir("..")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, root.ID, id)
	})

	t.Run("IntoFile", func(t *testing.T) {
		_, _, err := root.ChangeDir("a.txt")
		assert.True(t, fserrors.IsNotDirectoryError(err))
	})

	t.Run("Missing", func(t *testing.T) {
		_, _, err := root.ChangeDir("nope")
		assert.True(t, fserrors.IsNotFoundError(err))
	})

	t.Run("UnmaterializedDirEntry", func(t *testing.T) {
		d := New(9, "loose", nil)
		require.NoError(t, d.AddEntry("sub", 3, true))
		_, _, err := d.ChangeDir("sub")
		assert.True(t, fserrors.IsNotFoundError(err))
	})
}

func TestDirEntry_Kind(t *testing.T) {
	assert.Equal(t, "DIR", DirEntry{IsDir: true}.Kind())
	assert.Equal(t, "FILE", DirEntry{}.Kind())
}
