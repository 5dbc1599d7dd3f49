// Package inode provides per-object metadata records and the table that
// issues and owns them.
package inode

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/marmos91/blockfs/pkg/fserrors"
)

// TimeFormat is the layout used when timestamps are displayed.
const TimeFormat = "2006-01-02 15:04:05"

// ID identifies an inode within the table that issued it.
type ID uint64

// Type represents the type of a filesystem object.
type Type int

const (
	TypeFile Type = iota
	TypeDirectory
	// TypeSymlink is declared for completeness. Constructing an inode of
	// this type fails with NotSupported.
	TypeSymlink
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case TypeFile:
		return "File"
	case TypeDirectory:
		return "Directory"
	case TypeSymlink:
		return "Symlink"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Permissions holds three independent rwx flags. They are stored, never
// enforced.
type Permissions struct {
	Read    bool `json:"read"`
	Write   bool `json:"write"`
	Execute bool `json:"execute"`
}

// DefaultFilePermissions returns rw-.
func DefaultFilePermissions() Permissions {
	return Permissions{Read: true, Write: true}
}

// DefaultDirPermissions returns rwx.
func DefaultDirPermissions() Permissions {
	return Permissions{Read: true, Write: true, Execute: true}
}

// String renders the flags as "rwx" with '-' for unset bits.
func (p Permissions) String() string {
	b := []byte("---")
	if p.Read {
		b[0] = 'r'
	}
	if p.Write {
		b[1] = 'w'
	}
	if p.Execute {
		b[2] = 'x'
	}
	return string(b)
}

// Inode describes one file or directory.
type Inode struct {
	// ID is stable and unique within the issuing table.
	ID ID `json:"id"`

	// Name mirrors the directory entry name by convention.
	Name string `json:"name"`

	// Size is the logical content length in bytes.
	Size int `json:"size"`

	// Type is the object type.
	Type Type `json:"type"`

	// Blocks lists the owned block indices in content order. Concatenating
	// them and truncating to Size reconstructs the content.
	Blocks []int `json:"blocks"`

	// Permissions are defaulted by type at creation.
	Permissions Permissions `json:"permissions"`

	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// New creates an inode stamped with the current time.
func New(id ID, name string, size int, blocks []int, typ Type) (*Inode, error) {
	return newAt(id, name, size, blocks, typ, time.Now())
}

func newAt(id ID, name string, size int, blocks []int, typ Type, now time.Time) (*Inode, error) {
	var perms Permissions
	switch typ {
	case TypeFile:
		perms = DefaultFilePermissions()
	case TypeDirectory:
		perms = DefaultDirPermissions()
	case TypeSymlink:
		return nil, fserrors.NewNotSupportedError("symlink")
	default:
		return nil, fserrors.NewInvalidArgumentError(fmt.Sprintf("unknown inode type %d", int(typ)))
	}
	if size < 0 {
		return nil, fserrors.NewInvalidArgumentError(fmt.Sprintf("negative size %d", size))
	}

	return &Inode{
		ID:          id,
		Name:        name,
		Size:        size,
		Type:        typ,
		Blocks:      slices.Clone(blocks),
		Permissions: perms,
		CreatedAt:   now,
		ModifiedAt:  now,
	}, nil
}

// Update replaces size and block list wholesale and refreshes ModifiedAt.
// Growth or shrink is expressed by passing the complete new block list.
func (i *Inode) Update(size int, blocks []int) {
	i.update(size, blocks, time.Now())
}

func (i *Inode) update(size int, blocks []int, now time.Time) {
	i.Size = size
	i.Blocks = slices.Clone(blocks)
	i.ModifiedAt = now
}

// Clone returns an independent copy with identical field values, same ID
// and timestamps included.
func (i *Inode) Clone() *Inode {
	c := *i
	c.Blocks = slices.Clone(i.Blocks)
	return &c
}

// IsDir reports whether the inode describes a directory.
func (i *Inode) IsDir() bool {
	return i.Type == TypeDirectory
}

// Describe writes a multi-line human readable summary of the inode.
func (i *Inode) Describe(w io.Writer) {
	fmt.Fprintf(w, "Inode #%d -> Name: %s, Type: %s, Size: %d bytes\n", i.ID, i.Name, i.Type, i.Size)
	fmt.Fprintf(w, "  Created: %s, Modified: %s\n", i.CreatedAt.Format(TimeFormat), i.ModifiedAt.Format(TimeFormat))
	fmt.Fprintf(w, "  Permissions: r=%t w=%t x=%t\n", i.Permissions.Read, i.Permissions.Write, i.Permissions.Execute)
	fmt.Fprintf(w, "  Blocks: %v\n", i.Blocks)
}
