// Package worktree reads a working directory into an in-memory snapshot
// of files and directories. It performs no hashing; turning a snapshot
// into objects is the repository's job, which keeps that step testable
// against fixtures built with NewFile and NewDir.
package worktree

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/twig/pkg/object"
)

// Node is one child of a directory snapshot: either a *File or a *Dir.
type Node interface {
	NodeName() string
	node()
}

// File is a leaf in the snapshot. Mode holds the raw mode bits as read
// from the filesystem (type bits included). Content is read lazily.
type File struct {
	Name string
	Mode uint32
	Size int64

	open func() (io.ReadCloser, error)
}

// NodeName returns the file's base name.
func (f *File) NodeName() string { return f.Name }

func (*File) node() {}

// Open returns a reader over the file's content, which yields Size bytes.
func (f *File) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, fmt.Errorf("open %s: no content source", f.Name)
	}
	return f.open()
}

// Dir is an interior node. Children are in enumeration order, which
// carries no meaning.
type Dir struct {
	Name     string
	Children []Node
}

// NodeName returns the directory's base name, empty for the root.
func (d *Dir) NodeName() string { return d.Name }

func (*Dir) node() {}

// NewFile returns an in-memory file node.
func NewFile(name string, mode uint32, data []byte) *File {
	return &File{
		Name: name,
		Mode: mode,
		Size: int64(len(data)),
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// NewDir returns an in-memory directory node.
func NewDir(name string, children ...Node) *Dir {
	return &Dir{Name: name, Children: children}
}

// SkipFunc reports whether a directory child should be left out of the
// snapshot.
type SkipFunc func(name string) bool

// SkipHidden skips every name starting with a dot, which covers the
// repository's administrative directory and any other dotfile.
func SkipHidden(admin string) SkipFunc {
	return func(name string) bool {
		return strings.HasPrefix(name, ".") || (admin != "" && strings.HasPrefix(name, admin))
	}
}

// Read walks root and returns its snapshot. Symlinks are not followed;
// they become files whose content is the link target. Sockets, devices
// and named pipes are left out.
func Read(root string, skip SkipFunc) (*Dir, error) {
	info, err := os.Lstat(root)
	if err != nil {
		return nil, fmt.Errorf("worktree: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("worktree: %s is not a directory", root)
	}
	return readDir(root, "", skip)
}

func readDir(path, name string, skip SkipFunc) (*Dir, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("worktree: %w", err)
	}

	dir := &Dir{Name: name}
	for _, e := range entries {
		if skip != nil && skip(e.Name()) {
			continue
		}
		childPath := filepath.Join(path, e.Name())
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("worktree: %w", err)
		}

		switch mode := info.Mode(); {
		case mode.IsDir():
			sub, err := readDir(childPath, e.Name(), skip)
			if err != nil {
				return nil, err
			}
			dir.Children = append(dir.Children, sub)
		case mode&fs.ModeSymlink != 0:
			target, err := os.Readlink(childPath)
			if err != nil {
				return nil, fmt.Errorf("worktree: %w", err)
			}
			dir.Children = append(dir.Children, NewFile(e.Name(), RawMode(mode), []byte(target)))
		case mode.IsRegular():
			dir.Children = append(dir.Children, &File{
				Name: e.Name(),
				Mode: RawMode(mode),
				Size: info.Size(),
				open: func() (io.ReadCloser, error) { return os.Open(childPath) },
			})
		}
	}
	return dir, nil
}

// RawMode converts an fs.FileMode into Unix st_mode bits: the type bits
// the tree format understands plus permission, setuid, setgid and sticky
// bits.
func RawMode(m fs.FileMode) uint32 {
	bits := uint32(m.Perm())
	if m&fs.ModeSetuid != 0 {
		bits |= 0o4000
	}
	if m&fs.ModeSetgid != 0 {
		bits |= 0o2000
	}
	if m&fs.ModeSticky != 0 {
		bits |= 0o1000
	}

	switch {
	case m.IsDir():
		return object.ModeDir | bits
	case m&fs.ModeSymlink != 0:
		return object.ModeSymlink | bits
	case m.IsRegular():
		return object.ModeRegular | bits
	}
	return bits
}
