package directory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/marmos91/blockfs/pkg/fserrors"
	"github.com/marmos91/blockfs/pkg/inode"
)

// RootName is the name given to the root directory.
const RootName = "root"

// Tree is an arena of directories indexed by stable ID. Descending looks up
// the existing child node and ascending is an index change, so the contents
// of a subdirectory survive leaving and re-entering it.
type Tree struct {
	dirs map[ID]*Directory
	next ID
	root ID
}

// NewTree creates a tree holding only the root directory, whose own inode
// is rootInode.
func NewTree(rootInode inode.ID) *Tree {
	t := &Tree{dirs: make(map[ID]*Directory)}
	root := t.add(RootName, nil)
	root.InodeID = rootInode
	t.root = root.ID
	return t
}

func (t *Tree) add(name string, parent *ID) *Directory {
	d := New(t.next, name, parent)
	t.dirs[d.ID] = d
	t.next++
	return d
}

// Root returns the root directory.
func (t *Tree) Root() *Directory {
	return t.dirs[t.root]
}

// Get returns the directory with the given ID.
func (t *Tree) Get(id ID) (*Directory, error) {
	d, ok := t.dirs[id]
	if !ok {
		return nil, fserrors.NewNotFoundError(fmt.Sprintf("#%d", id), "directory node")
	}
	return d, nil
}

// Len returns the number of directories in the tree, root included.
func (t *Tree) Len() int {
	return len(t.dirs)
}

// All returns every directory ordered by ID.
func (t *Tree) All() []*Directory {
	out := make([]*Directory, 0, len(t.dirs))
	for _, d := range t.dirs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Mkdir binds name in parent as a directory entry pointing at dirInode and
// materializes the child node. The parent is left unchanged on failure.
func (t *Tree) Mkdir(parent ID, name string, dirInode inode.ID) (*Directory, error) {
	p, err := t.Get(parent)
	if err != nil {
		return nil, err
	}
	if err := p.AddEntry(name, dirInode, true); err != nil {
		return nil, err
	}

	parentID := p.ID
	child := t.add(name, &parentID)
	child.InodeID = dirInode
	p.children[name] = child.ID
	return child, nil
}

// Path reconstructs the absolute path of a directory by walking stable
// parent IDs, e.g. "/root/docs".
func (t *Tree) Path(id ID) (string, error) {
	d, err := t.Get(id)
	if err != nil {
		return "", err
	}

	parts := []string{d.Name}
	for d.Parent != nil {
		parent, ok := t.dirs[*d.Parent]
		if !ok {
			break
		}
		parts = append(parts, parent.Name)
		d = parent
	}

	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return "/" + strings.Join(parts, "/"), nil
}

// Child returns the subdirectory bound to name in parent.
func (t *Tree) Child(parent ID, name string) (*Directory, error) {
	p, err := t.Get(parent)
	if err != nil {
		return nil, err
	}
	id, ok, err := p.ChangeDir(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fserrors.NewInvalidArgumentError(fmt.Sprintf("%q is not a child directory", name))
	}
	return t.Get(id)
}
