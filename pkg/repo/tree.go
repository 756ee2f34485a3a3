package repo

import (
	"bytes"
	"fmt"
	"io"

	"github.com/odvcencio/twig/pkg/object"
	"github.com/odvcencio/twig/pkg/worktree"
)

// ObjectWriter is the part of the object store the tree builder writes
// through. *object.Store implements it.
type ObjectWriter interface {
	WriteStream(objType object.ObjectType, size int64, r io.Reader) (object.Hash, error)
}

// BuildTree writes every file in dir as a blob and every directory as a
// tree, bottom-up, and returns the id of dir's tree. Files keep their raw
// mode bits; subdirectories are recorded as 40000 whatever their
// permissions. Entry order in dir does not matter. If any child fails,
// BuildTree returns the error without writing dir's own tree.
func BuildTree(w ObjectWriter, dir *worktree.Dir) (object.Hash, error) {
	entries := make([]object.TreeEntry, 0, len(dir.Children))
	for _, child := range dir.Children {
		var (
			h    object.Hash
			mode uint32
			err  error
		)
		switch n := child.(type) {
		case *worktree.Dir:
			h, err = BuildTree(w, n)
			mode = object.ModeDir
		case *worktree.File:
			h, err = writeBlob(w, n)
			mode = n.Mode
		default:
			err = fmt.Errorf("unsupported node %T", child)
		}
		if err != nil {
			return "", fmt.Errorf("build tree %q: %w", child.NodeName(), err)
		}
		entries = append(entries, object.TreeEntry{Mode: mode, Name: child.NodeName(), Hash: h})
	}

	data, err := object.MarshalTree(&object.TreeObj{Entries: entries})
	if err != nil {
		return "", fmt.Errorf("build tree %q: %w", dir.Name, err)
	}
	h, err := w.WriteStream(object.TypeTree, int64(len(data)), bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("build tree %q: write: %w", dir.Name, err)
	}
	return h, nil
}

func writeBlob(w ObjectWriter, f *worktree.File) (object.Hash, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return w.WriteStream(object.TypeBlob, f.Size, rc)
}

// WriteTree snapshots the whole working directory, skipping the
// administrative directory and every dotfile, and returns the root tree id.
func (r *Repo) WriteTree() (object.Hash, error) {
	snap, err := worktree.Read(r.RootDir, worktree.SkipHidden(AdminDir))
	if err != nil {
		return "", fmt.Errorf("write tree: %w", err)
	}
	h, err := BuildTree(r.Store, snap)
	if err != nil {
		return "", fmt.Errorf("write tree: %w", err)
	}
	return h, nil
}

// ReadTreeEntries returns the entries of the tree with the given id.
func (r *Repo) ReadTreeEntries(h object.Hash) ([]object.TreeEntry, error) {
	tr, err := r.Store.ReadTree(h)
	if err != nil {
		return nil, fmt.Errorf("read tree: %w", err)
	}
	return tr.Entries, nil
}
