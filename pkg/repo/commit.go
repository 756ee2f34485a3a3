package repo

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/odvcencio/twig/pkg/object"
)

// CommitTree writes a commit object for tree with an optional parent (empty
// for the first commit of a lineage). The identity comes from r.Identity
// and the timestamp from r.Clock; a clock failure aborts the commit. The
// message is stored verbatim. No ref is changed.
func (r *Repo) CommitTree(tree, parent object.Hash, message string) (object.Hash, error) {
	if _, err := object.ParseHash(string(tree)); err != nil {
		return "", fmt.Errorf("commit tree: tree: %w", err)
	}
	if parent != "" {
		if _, err := object.ParseHash(string(parent)); err != nil {
			return "", fmt.Errorf("commit tree: parent: %w", err)
		}
	}

	ident, err := r.Identity.Identity()
	if err != nil {
		return "", fmt.Errorf("commit tree: identity: %w", err)
	}
	if err := validateIdentity(ident); err != nil {
		return "", fmt.Errorf("commit tree: %w", err)
	}
	ts, err := unixSeconds(r.Clock)
	if err != nil {
		return "", fmt.Errorf("commit tree: read clock: %w", err)
	}

	h, err := r.Store.WriteCommit(&object.CommitObj{
		TreeHash:    tree,
		Parent:      parent,
		AuthorName:  ident.Name,
		AuthorEmail: ident.Email,
		Timestamp:   ts,
		Message:     message,
	})
	if err != nil {
		return "", fmt.Errorf("commit tree: write commit: %w", err)
	}
	return h, nil
}

func validateIdentity(id Identity) error {
	for _, s := range []string{id.Name, id.Email} {
		if strings.ContainsAny(s, "<>\n\x00") {
			return fmt.Errorf("identity %q <%s>: name and email may not contain '<', '>' or newlines", id.Name, id.Email)
		}
	}
	return nil
}

// Commit snapshots the entire working tree and records it on the current
// branch.
//
//  1. Resolve HEAD to the current branch ref
//  2. Read the ref for the parent; a missing ref means this is the first commit
//  3. Write the working tree
//  4. Write the commit object
//  5. Point the branch ref at the new commit
//
// The ref update at step 5 is not guarded against a concurrent commit on
// the same branch.
func (r *Repo) Commit(message string) (object.Hash, error) {
	ref, err := r.ResolveHead()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	parent, err := r.ReadRef(ref)
	if err != nil {
		if !errors.Is(err, ErrRefNotFound) {
			return "", fmt.Errorf("commit: %w", err)
		}
		parent = ""
	}

	tree, err := r.WriteTree()
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	h, err := r.CommitTree(tree, parent, message)
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}

	if err := r.WriteRef(ref, h); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	r.Logger.Debug("commit recorded",
		zap.String("ref", ref),
		zap.String("hash", string(h)),
		zap.String("parent", string(parent)),
		zap.String("tree", string(tree)),
	)
	return h, nil
}

// LogEntry pairs a commit with its id.
type LogEntry struct {
	Hash   object.Hash
	Commit *object.CommitObj
}

// Log walks parent links starting at start, returning up to limit commits
// newest first. A limit of zero or less means no limit.
func (r *Repo) Log(start object.Hash, limit int) ([]LogEntry, error) {
	var entries []LogEntry
	current := start

	for current != "" && (limit <= 0 || len(entries) < limit) {
		c, err := r.Store.ReadCommit(current)
		if err != nil {
			return nil, fmt.Errorf("log: read commit %s: %w", current, err)
		}
		entries = append(entries, LogEntry{Hash: current, Commit: c})
		current = c.Parent
	}
	return entries, nil
}
