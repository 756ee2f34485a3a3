package repo

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/odvcencio/twig/pkg/object"
)

const refPrefixTags = "refs/tags/"

// CreateTag creates a lightweight tag: a ref under refs/tags/ holding a
// commit id directly. Unless force is set, an existing tag is an error.
func (r *Repo) CreateTag(name string, target object.Hash, force bool) error {
	if err := validateRefComponents(name); err != nil {
		return fmt.Errorf("create tag: %w", err)
	}

	kind, err := r.objectKind(target)
	if err != nil {
		return fmt.Errorf("create tag %q: %w", name, err)
	}
	if kind != object.TypeCommit {
		return fmt.Errorf("create tag %q: %s is a %s, not a commit", name, target, kind)
	}

	refName := refPrefixTags + name
	if !force {
		if _, err := r.ReadRef(refName); err == nil {
			return fmt.Errorf("create tag %q: %w", name, ErrTagExists)
		} else if !errors.Is(err, ErrRefNotFound) {
			return fmt.Errorf("create tag %q: %w", name, err)
		}
	}
	if err := r.WriteRef(refName, target); err != nil {
		return fmt.Errorf("create tag %q: %w", name, err)
	}
	r.Logger.Debug("tag created", zap.String("tag", name), zap.String("hash", string(target)))
	return nil
}

// DeleteTag removes a tag ref from refs/tags/.
func (r *Repo) DeleteTag(name string) error {
	if err := validateRefComponents(name); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if err := os.Remove(r.refFile(refPrefixTags + name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("delete tag %q: %w", name, ErrTagNotFound)
		}
		return fmt.Errorf("delete tag %q: %w", name, err)
	}
	return nil
}

// ResolveTag returns the commit a tag points at.
func (r *Repo) ResolveTag(name string) (object.Hash, error) {
	if err := validateRefComponents(name); err != nil {
		return "", fmt.Errorf("resolve tag: %w", err)
	}
	h, err := r.ReadRef(refPrefixTags + name)
	if errors.Is(err, ErrRefNotFound) {
		return "", fmt.Errorf("resolve tag %q: %w", name, ErrTagNotFound)
	}
	return h, err
}

// ListTags returns tag name -> commit id.
func (r *Repo) ListTags() (map[string]object.Hash, error) {
	refs, err := r.ListRefs("tags")
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	out := make(map[string]object.Hash, len(refs))
	for full, h := range refs {
		out[strings.TrimPrefix(full, "tags/")] = h
	}
	return out, nil
}

// TagNames returns the tag names sorted alphabetically.
func (r *Repo) TagNames() ([]string, error) {
	tags, err := r.ListTags()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(tags))
	for name := range tags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (r *Repo) objectKind(h object.Hash) (object.ObjectType, error) {
	rd, err := r.Store.Open(h)
	if err != nil {
		return "", err
	}
	defer rd.Close()
	return rd.Type, nil
}
