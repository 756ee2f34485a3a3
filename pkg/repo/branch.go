package repo

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/odvcencio/twig/pkg/object"
)

// Branch is one entry of ListBranches.
type Branch struct {
	Name    string      // "main", "feature/x", or "origin/main" for remotes
	Ref     string      // full ref path, e.g. "refs/heads/main"
	Hash    object.Hash // commit the ref points at
	Current bool        // HEAD points at this branch
	Remote  bool        // lives under refs/remotes
}

// BranchExists reports whether refs/heads/<name> is a ref file. Branch
// names may contain slashes; the lookup enumerates refs/heads recursively,
// so a directory of nested branches is not itself a branch.
func (r *Repo) BranchExists(name string) (bool, error) {
	if err := validateRefComponents(name); err != nil {
		return false, fmt.Errorf("branch exists: %w", err)
	}
	names, err := r.refNames("refs/heads")
	if err != nil {
		return false, fmt.Errorf("branch exists: %w", err)
	}
	return slices.Contains(names, name), nil
}

// CreateBranch creates refs/heads/<name> pointing at HEAD's current commit.
// It fails with ErrBranchExists if the branch exists and with ErrNoCommits
// before the first commit, since there is nothing to point at.
func (r *Repo) CreateBranch(name string) error {
	exists, err := r.BranchExists(name)
	if err != nil {
		return fmt.Errorf("create branch: %w", err)
	}
	if exists {
		return fmt.Errorf("create branch %q: %w", name, ErrBranchExists)
	}

	head, err := r.HeadCommit()
	if err != nil {
		if errors.Is(err, ErrRefNotFound) {
			return fmt.Errorf("create branch %q: %w", name, ErrNoCommits)
		}
		return fmt.Errorf("create branch %q: %w", name, err)
	}

	if err := r.WriteRef(refPrefixHeads+name, head); err != nil {
		return fmt.Errorf("create branch %q: %w", name, err)
	}
	r.Logger.Debug("branch created", zap.String("branch", name), zap.String("hash", string(head)))
	return nil
}

// SwitchBranch points HEAD at refs/heads/<name>. Only HEAD changes: the
// working directory is left as it is, so files from the previous branch
// stay on disk and the next commit snapshots them.
func (r *Repo) SwitchBranch(name string) error {
	exists, err := r.BranchExists(name)
	if err != nil {
		return fmt.Errorf("switch branch: %w", err)
	}
	if !exists {
		return fmt.Errorf("switch branch %q: %w", name, ErrBranchNotFound)
	}
	if err := r.writeHead(refPrefixHeads + name); err != nil {
		return fmt.Errorf("switch branch %q: %w", name, err)
	}
	return nil
}

// ListBranches returns the branches under refs/heads sorted by name, with
// the one HEAD points at flagged Current. With all set, branches under
// refs/remotes follow the local ones.
func (r *Repo) ListBranches(all bool) ([]Branch, error) {
	currentRef, err := r.ResolveHead()
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}

	branches, err := r.branchesUnder(refPrefixHeads, false, currentRef)
	if err != nil {
		return nil, err
	}
	if all {
		remotes, err := r.branchesUnder(refPrefixRemotes, true, currentRef)
		if err != nil {
			return nil, err
		}
		branches = append(branches, remotes...)
	}
	return branches, nil
}

func (r *Repo) branchesUnder(prefix string, remote bool, currentRef string) ([]Branch, error) {
	names, err := r.refNames(prefix[:len(prefix)-1])
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	out := make([]Branch, 0, len(names))
	for _, name := range names {
		ref := prefix + name
		h, err := r.ReadRef(ref)
		if err != nil {
			return nil, fmt.Errorf("list branches: %w", err)
		}
		out = append(out, Branch{
			Name:    name,
			Ref:     ref,
			Hash:    h,
			Current: ref == currentRef,
			Remote:  remote,
		})
	}
	return out, nil
}
