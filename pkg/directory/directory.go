// Package directory provides name resolution for one directory level and an
// arena of directories addressed by stable IDs.
package directory

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/marmos91/blockfs/pkg/fserrors"
	"github.com/marmos91/blockfs/pkg/inode"
)

// ParentName is the navigation target that moves one level up.
const ParentName = ".."

// ID identifies a directory node within a Tree. IDs are issued by the tree
// and never derived from names.
type ID uint64

// DirEntry binds a name to an inode.
type DirEntry struct {
	Name    string   `json:"name"`
	InodeID inode.ID `json:"inode_id"`
	IsDir   bool     `json:"is_dir"`
}

// Kind returns "DIR" or "FILE".
func (e DirEntry) Kind() string {
	if e.IsDir {
		return "DIR"
	}
	return "FILE"
}

// Directory is one level of the hierarchy.
type Directory struct {
	ID      ID
	Name    string
	Parent  *ID      // nil only for the root
	InodeID inode.ID // the directory's own inode

	entries  map[string]DirEntry
	children map[string]ID // subdirectory entries materialized in a tree
}

// New creates an empty directory.
func New(id ID, name string, parent *ID) *Directory {
	return &Directory{
		ID:       id,
		Name:     name,
		Parent:   parent,
		entries:  make(map[string]DirEntry),
		children: make(map[string]ID),
	}
}

// ValidateName rejects names that cannot be bound in a directory.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fserrors.NewInvalidArgumentError("empty name")
	case name == "." || name == ParentName:
		return fserrors.NewInvalidArgumentError(fmt.Sprintf("reserved name %q", name))
	case strings.ContainsAny(name, "/\x00"):
		return fserrors.NewInvalidArgumentError(fmt.Sprintf("name %q contains '/' or NUL", name))
	}
	return nil
}

// AddEntry binds name to inodeID. Fails with AlreadyExists if the name is
// taken, leaving the existing entry unchanged.
func (d *Directory) AddEntry(name string, inodeID inode.ID, isDir bool) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if _, exists := d.entries[name]; exists {
		return &fserrors.FsError{
			Code:    fserrors.ErrAlreadyExists,
			Message: fmt.Sprintf("entry '%s' already exists in directory '%s'", name, d.Name),
			Path:    name,
		}
	}

	d.entries[name] = DirEntry{Name: name, InodeID: inodeID, IsDir: isDir}
	return nil
}

// RemoveEntry unbinds name and returns the removed entry so the caller can
// release the inode and its blocks. Fails with NotFound if absent.
func (d *Directory) RemoveEntry(name string) (DirEntry, error) {
	entry, ok := d.entries[name]
	if !ok {
		return DirEntry{}, &fserrors.FsError{
			Code:    fserrors.ErrNotFound,
			Message: fmt.Sprintf("no such entry '%s' in '%s'", name, d.Name),
			Path:    name,
		}
	}

	delete(d.entries, name)
	delete(d.children, name)
	return entry, nil
}

// HasEntry reports whether name is bound.
func (d *Directory) HasEntry(name string) bool {
	_, ok := d.entries[name]
	return ok
}

// GetEntry resolves name.
func (d *Directory) GetEntry(name string) (DirEntry, bool) {
	e, ok := d.entries[name]
	return e, ok
}

// Len returns the number of entries.
func (d *Directory) Len() int {
	return len(d.entries)
}

// ListEntries returns every entry. Callers must not rely on the order; it is
// sorted by name only to keep output stable.
func (d *Directory) ListEntries() []DirEntry {
	out := make([]DirEntry, 0, len(d.entries))
	for _, e := range d.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Format writes the human-readable listing.
func (d *Directory) Format(w io.Writer) {
	fmt.Fprintf(w, "Contents of directory '%s':\n", d.Name)
	if len(d.entries) == 0 {
		fmt.Fprintln(w, "  (empty)")
		return
	}
	for _, e := range d.ListEntries() {
		fmt.Fprintf(w, "  %s (%s) -> inode %d\n", e.Name, e.Kind(), e.InodeID)
	}
}

// ChangeDir resolves a navigation target without mutating anything.
//
// For ".." it returns the parent and ok=true, or ok=false at the root. For a
// subdirectory entry it returns the child's ID. A file entry yields
// NotDirectory and an unknown name yields NotFound.
func (d *Directory) ChangeDir(target string) (ID, bool, error) {
	if target == ParentName {
		if d.Parent == nil {
			return 0, false, nil
		}
		return *d.Parent, true, nil
	}

	entry, ok := d.entries[target]
	if !ok {
		return 0, false, fserrors.NewNotFoundError(target, "directory")
	}
	if !entry.IsDir {
		return 0, false, fserrors.NewNotDirectoryError(target)
	}
	child, ok := d.children[target]
	if !ok {
		return 0, false, fserrors.NewNotFoundError(target, "directory node")
	}
	return child, true, nil
}
