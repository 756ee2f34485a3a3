package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/odvcencio/twig/pkg/object"
)

const (
	headFile         = "HEAD"
	symrefPrefix     = "ref: "
	refPrefixHeads   = "refs/heads/"
	refPrefixRemotes = "refs/remotes/"
)

// Ref files are plain pointer files written with temp file + rename, so a
// reader never sees a half-written id. There is no locking and no
// compare-and-swap: two processes advancing the same ref concurrently race,
// and the later rename wins. HEAD and the branch ref are also not updated
// together, so a crash between the two writes can leave them out of step.

// ResolveHead reads HEAD and returns the ref path it points at, e.g.
// "refs/heads/main". A HEAD without the "ref: " prefix fails with
// ErrDetachedHead.
func (r *Repo) ResolveHead() (string, error) {
	data, err := os.ReadFile(filepath.Join(r.GitDir, headFile))
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	content := strings.TrimRight(string(data), "\n")

	ref, ok := strings.CutPrefix(content, symrefPrefix)
	if !ok {
		return "", fmt.Errorf("resolve HEAD: %w (content %q)", ErrDetachedHead, content)
	}
	ref = strings.TrimSpace(ref)
	if err := validateRefPath(ref); err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	return ref, nil
}

// HeadCommit returns the commit id of the branch HEAD points at. Before the
// first commit it returns an error matching ErrRefNotFound.
func (r *Repo) HeadCommit() (object.Hash, error) {
	ref, err := r.ResolveHead()
	if err != nil {
		return "", err
	}
	return r.ReadRef(ref)
}

// CurrentBranch returns the branch name HEAD points at.
func (r *Repo) CurrentBranch() (string, error) {
	ref, err := r.ResolveHead()
	if err != nil {
		return "", err
	}
	name, ok := strings.CutPrefix(ref, refPrefixHeads)
	if !ok {
		return "", fmt.Errorf("current branch: HEAD points outside refs/heads: %q", ref)
	}
	return name, nil
}

func (r *Repo) writeHead(ref string) error {
	if err := validateRefPath(ref); err != nil {
		return fmt.Errorf("write HEAD: %w", err)
	}
	data := []byte(symrefPrefix + ref + "\n")
	if err := writeFileAtomic(r.GitDir, filepath.Join(r.GitDir, headFile), data); err != nil {
		return fmt.Errorf("write HEAD: %w", err)
	}
	r.Logger.Debug("HEAD updated", zap.String("ref", ref))
	return nil
}

// ReadRef reads the id stored at a ref path such as "refs/heads/main".
// A missing ref file is reported as *RefNotFoundError.
func (r *Repo) ReadRef(name string) (object.Hash, error) {
	if err := validateRefPath(name); err != nil {
		return "", fmt.Errorf("read ref: %w", err)
	}
	data, err := os.ReadFile(r.refFile(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", &RefNotFoundError{Ref: name}
		}
		return "", fmt.Errorf("read ref %q: %w", name, err)
	}
	h, err := object.ParseHash(strings.TrimSpace(string(data)))
	if err != nil {
		return "", fmt.Errorf("read ref %q: %w", name, err)
	}
	return h, nil
}

// WriteRef stores h at a ref path, creating parent directories as needed.
func (r *Repo) WriteRef(name string, h object.Hash) error {
	if err := validateRefPath(name); err != nil {
		return fmt.Errorf("write ref: %w", err)
	}
	if _, err := object.ParseHash(string(h)); err != nil {
		return fmt.Errorf("write ref %q: %w", name, err)
	}
	path := r.refFile(name)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("write ref %q: mkdir: %w", name, err)
	}
	if err := writeFileAtomic(dir, path, []byte(string(h)+"\n")); err != nil {
		return fmt.Errorf("write ref %q: %w", name, err)
	}
	r.Logger.Debug("ref updated", zap.String("ref", name), zap.String("hash", string(h)))
	return nil
}

func (r *Repo) refFile(name string) string {
	return filepath.Join(r.GitDir, filepath.FromSlash(name))
}

// ListRefs lists references under refs/<prefix>. Names are returned
// relative to refs/, e.g. "heads/main", "remotes/origin/main".
func (r *Repo) ListRefs(prefix string) (map[string]object.Hash, error) {
	root := "refs"
	if p := strings.Trim(prefix, "/"); p != "" {
		root = "refs/" + p
	}
	names, err := r.refNames(root)
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	refs := make(map[string]object.Hash, len(names))
	for _, name := range names {
		full := root + "/" + name
		h, err := r.ReadRef(full)
		if err != nil {
			return nil, fmt.Errorf("list refs: %w", err)
		}
		refs[strings.TrimPrefix(full, "refs/")] = h
	}
	return refs, nil
}

// refNames enumerates ref files under <GitDir>/<root> recursively and
// returns their paths relative to root, slash-separated and sorted. A
// missing root yields no names. Dotfiles are in-flight temp files and are
// skipped.
func (r *Repo) refNames(root string) ([]string, error) {
	base := filepath.Join(r.GitDir, filepath.FromSlash(root))
	var names []string
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if strings.HasPrefix(d.Name(), ".") && path != base {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// validateRefPath checks a slash-separated ref path such as
// "refs/heads/feature/x" so it cannot escape the refs directory or collide
// with temp and lock files.
func validateRefPath(name string) error {
	if !strings.HasPrefix(name, "refs/") {
		return fmt.Errorf("%w %q: must start with refs/", ErrInvalidRefName, name)
	}
	return validateRefComponents(name)
}

func validateRefComponents(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidRefName)
	}
	for _, c := range name {
		if c < 0x20 || c == 0x7f || strings.ContainsRune(" ~^:?*[\\", c) {
			return fmt.Errorf("%w %q: contains %q", ErrInvalidRefName, name, c)
		}
	}
	for _, part := range strings.Split(name, "/") {
		switch {
		case part == "":
			return fmt.Errorf("%w %q: empty path component", ErrInvalidRefName, name)
		case strings.HasPrefix(part, "."):
			return fmt.Errorf("%w %q: component starts with '.'", ErrInvalidRefName, name)
		case strings.HasSuffix(part, ".lock"):
			return fmt.Errorf("%w %q: component ends with .lock", ErrInvalidRefName, name)
		}
	}
	return nil
}
