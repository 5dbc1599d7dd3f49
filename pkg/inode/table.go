package inode

import (
	"fmt"
	"sort"
	"time"

	"github.com/marmos91/blockfs/pkg/fserrors"
)

// Table is the authoritative set of live inodes.
//
// IDs come from a monotonically increasing counter and are never reused,
// even after the inode they named is removed.
type Table struct {
	inodes map[ID]*Inode
	next   ID
	now    func() time.Time
}

// TableOption configures a Table.
type TableOption func(*Table)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) TableOption {
	return func(t *Table) {
		t.now = now
	}
}

// NewTable creates an empty table.
func NewTable(opts ...TableOption) *Table {
	t := &Table{
		inodes: make(map[ID]*Inode),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Create issues a fresh ID and stores a new inode.
func (t *Table) Create(name string, size int, blocks []int, typ Type) (*Inode, error) {
	ino, err := newAt(t.next, name, size, blocks, typ, t.now())
	if err != nil {
		return nil, err
	}
	t.inodes[ino.ID] = ino
	t.next++
	return ino, nil
}

// Adopt stores a copy of ino under a freshly issued ID, keeping every other
// field. Used when duplicating metadata without re-deriving timestamps or
// permissions.
func (t *Table) Adopt(ino *Inode) *Inode {
	c := ino.Clone()
	c.ID = t.next
	t.next++
	t.inodes[c.ID] = c
	return c
}

// Get returns the live inode with the given ID.
func (t *Table) Get(id ID) (*Inode, error) {
	ino, ok := t.inodes[id]
	if !ok {
		return nil, fserrors.NewNotFoundError(fmt.Sprintf("#%d", id), "inode")
	}
	return ino, nil
}

// Update replaces the size and block list of an inode and refreshes its
// modification time.
func (t *Table) Update(id ID, size int, blocks []int) (*Inode, error) {
	ino, err := t.Get(id)
	if err != nil {
		return nil, err
	}
	if size < 0 {
		return nil, fserrors.NewInvalidArgumentError(fmt.Sprintf("negative size %d", size))
	}
	ino.update(size, blocks, t.now())
	return ino, nil
}

// Remove deletes an inode and returns it so the caller can release its
// blocks.
func (t *Table) Remove(id ID) (*Inode, error) {
	ino, err := t.Get(id)
	if err != nil {
		return nil, err
	}
	delete(t.inodes, id)
	return ino, nil
}

// Len returns the number of live inodes.
func (t *Table) Len() int {
	return len(t.inodes)
}

// All returns every live inode ordered by ID.
func (t *Table) All() []*Inode {
	out := make([]*Inode, 0, len(t.inodes))
	for _, ino := range t.inodes {
		out = append(out, ino)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Owners maps every block index claimed by a live inode to the IDs of the
// inodes claiming it, one element per claim. A healthy table has exactly one
// element per index; an inode listing the same block twice shows up twice.
func (t *Table) Owners() map[int][]ID {
	owners := make(map[int][]ID)
	for _, ino := range t.All() {
		for _, b := range ino.Blocks {
			owners[b] = append(owners[b], ino.ID)
		}
	}
	return owners
}
