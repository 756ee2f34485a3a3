package object

import (
	"fmt"
	"strconv"
)

// Raw mode bits as stored in tree entries. Only the type bits select the
// object kind; permission bits are carried through unchanged.
const (
	ModeTypeMask uint32 = 0o170000
	ModeDir      uint32 = 0o040000
	ModeRegular  uint32 = 0o100000
	ModeSymlink  uint32 = 0o120000
	ModeGitlink  uint32 = 0o160000
)

// TypeForMode returns the object type a tree entry with the given raw mode
// points at.
func TypeForMode(mode uint32) (ObjectType, error) {
	switch mode & ModeTypeMask {
	case ModeRegular, ModeSymlink:
		return TypeBlob, nil
	case ModeDir:
		return TypeTree, nil
	case ModeGitlink:
		return TypeCommit, nil
	default:
		return "", fmt.Errorf("%w %o", ErrUnknownMode, mode)
	}
}

// FormatMode renders mode in octal without leading zeros, the form used in
// tree payloads ("100644", "40000").
func FormatMode(mode uint32) string {
	return strconv.FormatUint(uint64(mode), 8)
}

// ParseMode parses an octal tree mode string.
func ParseMode(s string) (uint32, error) {
	m, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("%w %q", ErrUnknownMode, s)
	}
	return uint32(m), nil
}
