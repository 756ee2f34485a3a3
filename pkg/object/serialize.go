package object

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

// MarshalBlob serializes a Blob to raw bytes (identity).
func MarshalBlob(b *Blob) []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// UnmarshalBlob deserializes raw bytes into a Blob.
func UnmarshalBlob(data []byte) (*Blob, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return &Blob{Data: out}, nil
}

// ---------------------------------------------------------------------------
// TreeObj
// ---------------------------------------------------------------------------

// MarshalTree serializes a TreeObj. Entries are sorted by the raw bytes of
// Name, so the output does not depend on the order they were collected in.
// Each entry is
//
//	<octal mode> <name>\0<20 raw id bytes>
func MarshalTree(tr *TreeObj) ([]byte, error) {
	sorted := slices.Clone(tr.Entries)
	slices.SortFunc(sorted, func(a, b TreeEntry) int {
		return strings.Compare(a.Name, b.Name)
	})

	var buf bytes.Buffer
	for i, e := range sorted {
		if e.Name == "" || strings.IndexByte(e.Name, 0) >= 0 {
			return nil, fmt.Errorf("marshal tree: invalid entry name %q", e.Name)
		}
		if i > 0 && sorted[i-1].Name == e.Name {
			return nil, fmt.Errorf("marshal tree: duplicate entry %q", e.Name)
		}
		raw, err := e.Hash.Raw()
		if err != nil {
			return nil, fmt.Errorf("marshal tree: entry %q: %w", e.Name, err)
		}
		buf.WriteString(FormatMode(e.Mode))
		buf.WriteByte(' ')
		buf.WriteString(e.Name)
		buf.WriteByte(0)
		buf.Write(raw)
	}
	return buf.Bytes(), nil
}

// UnmarshalTree parses a TreeObj from its serialized form.
func UnmarshalTree(data []byte) (*TreeObj, error) {
	tr := &TreeObj{}
	for len(data) > 0 {
		nul := bytes.IndexByte(data, 0)
		if nul < 0 {
			return nil, fmt.Errorf("unmarshal tree: %w: entry without NUL", ErrMalformed)
		}
		modeStr, name, ok := strings.Cut(string(data[:nul]), " ")
		if !ok {
			return nil, fmt.Errorf("unmarshal tree: %w: entry %q", ErrMalformed, data[:nul])
		}
		mode, err := ParseMode(modeStr)
		if err != nil {
			return nil, fmt.Errorf("unmarshal tree: %w", err)
		}
		data = data[nul+1:]
		if len(data) < HashSize {
			return nil, fmt.Errorf("unmarshal tree: %w: entry %q", ErrTruncated, name)
		}
		h, err := HashFromRaw(data[:HashSize])
		if err != nil {
			return nil, fmt.Errorf("unmarshal tree: %w", err)
		}
		data = data[HashSize:]
		tr.Entries = append(tr.Entries, TreeEntry{Mode: mode, Name: name, Hash: h})
	}
	return tr, nil
}

// ---------------------------------------------------------------------------
// CommitObj
// ---------------------------------------------------------------------------

// MarshalCommit serializes a CommitObj:
//
//	tree H
//	parent H     (omitted without a parent)
//	author N <E> T +0000
//	committer N <E> T +0000
//
//	message
//
// Author and committer are always the same identity. The message is
// written verbatim.
func MarshalCommit(c *CommitObj) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", c.TreeHash)
	if c.Parent != "" {
		fmt.Fprintf(&buf, "parent %s\n", c.Parent)
	}
	ident := fmt.Sprintf("%s <%s> %d +0000", c.AuthorName, c.AuthorEmail, c.Timestamp)
	fmt.Fprintf(&buf, "author %s\n", ident)
	fmt.Fprintf(&buf, "committer %s\n", ident)
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

// UnmarshalCommit parses a CommitObj from its serialized form.
func UnmarshalCommit(data []byte) (*CommitObj, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("unmarshal commit: %w: missing header/message separator", ErrMalformed)
	}
	header := string(data[:idx])
	c := &CommitObj{Message: string(data[idx+2:])}

	for _, line := range strings.Split(header, "\n") {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("unmarshal commit: %w: header line %q", ErrMalformed, line)
		}
		switch key {
		case "tree":
			c.TreeHash = Hash(val)
		case "parent":
			if c.Parent != "" {
				return nil, fmt.Errorf("unmarshal commit: %w: more than one parent", ErrMalformed)
			}
			c.Parent = Hash(val)
		case "author":
			name, email, ts, err := parseIdent(val)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: %w", err)
			}
			c.AuthorName, c.AuthorEmail, c.Timestamp = name, email, ts
		case "committer":
			// Same identity as author.
		default:
			return nil, fmt.Errorf("unmarshal commit: %w: unknown header key %q", ErrMalformed, key)
		}
	}
	if c.TreeHash == "" {
		return nil, fmt.Errorf("unmarshal commit: %w: missing tree", ErrMalformed)
	}
	return c, nil
}

// parseIdent splits "Name <email> 1720703241 +0000".
func parseIdent(s string) (string, string, int64, error) {
	lt := strings.LastIndexByte(s, '<')
	gt := strings.LastIndexByte(s, '>')
	if lt < 0 || gt < lt {
		return "", "", 0, fmt.Errorf("%w: ident %q", ErrMalformed, s)
	}
	name := strings.TrimSuffix(s[:lt], " ")
	email := s[lt+1 : gt]
	fields := strings.Fields(s[gt+1:])
	if len(fields) == 0 {
		return "", "", 0, fmt.Errorf("%w: ident %q has no timestamp", ErrMalformed, s)
	}
	ts, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return "", "", 0, fmt.Errorf("%w: bad timestamp %q", ErrMalformed, fields[0])
	}
	return name, email, ts, nil
}
