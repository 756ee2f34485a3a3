package object

import "fmt"

// Hash is a 40-character lowercase hex-encoded SHA-1 digest.
type Hash string

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
)

// ParseObjectType maps a header kind string to an ObjectType.
func ParseObjectType(s string) (ObjectType, error) {
	switch ObjectType(s) {
	case TypeBlob, TypeTree, TypeCommit:
		return ObjectType(s), nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownKind, s)
	}
}

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// TreeEntry is one entry in a tree object. Mode holds the raw mode bits
// (e.g. 0o100644, 0o40000) and is written in octal.
type TreeEntry struct {
	Mode uint32
	Name string
	Hash Hash
}

// Type reports the object type the entry points at, derived from its mode.
func (e TreeEntry) Type() (ObjectType, error) {
	return TypeForMode(e.Mode)
}

// IsDir reports whether the entry names a subtree.
func (e TreeEntry) IsDir() bool {
	return e.Mode&ModeTypeMask == ModeDir
}

// TreeObj holds a list of tree entries. MarshalTree sorts them by raw name
// bytes, so callers may fill Entries in any order.
type TreeObj struct {
	Entries []TreeEntry
}

// CommitObj represents a commit pointing to a tree with metadata. Parent is
// empty for the first commit of a lineage.
type CommitObj struct {
	TreeHash    Hash
	Parent      Hash
	AuthorName  string
	AuthorEmail string
	Timestamp   int64
	Message     string
}
