package repo

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/odvcencio/twig/pkg/object"
)

func TestTagCreateResolveAndList(t *testing.T) {
	r := initRepoWithFile(t, "main.go", []byte("package main\n\nfunc main() {}\n"))
	head, err := r.Commit("initial\n")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := r.CreateTag("v1.0.0", head, false); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if err := r.CreateTag("release/v1", head, false); err != nil {
		t.Fatalf("CreateTag(nested): %v", err)
	}

	resolved, err := r.ResolveTag("v1.0.0")
	if err != nil {
		t.Fatalf("ResolveTag: %v", err)
	}
	if resolved != head {
		t.Fatalf("resolved tag = %q, want %q", resolved, head)
	}

	names, err := r.TagNames()
	if err != nil {
		t.Fatalf("TagNames: %v", err)
	}
	if len(names) != 2 || names[0] != "release/v1" || names[1] != "v1.0.0" {
		t.Fatalf("TagNames = %v, want [release/v1 v1.0.0]", names)
	}

	// Tags are not branches.
	branches, err := r.ListBranches(true)
	if err != nil {
		t.Fatalf("ListBranches: %v", err)
	}
	if len(branches) != 1 {
		t.Errorf("ListBranches = %+v, want only main", branches)
	}
}

func TestTagCreateExistingWithoutForceFails(t *testing.T) {
	r := initRepoWithFile(t, "main.go", []byte("package main\n"))
	h1, err := r.Commit("initial\n")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := r.CreateTag("v1.0.0", h1, false); err != nil {
		t.Fatalf("CreateTag first: %v", err)
	}
	if err := r.CreateTag("v1.0.0", h1, false); !errors.Is(err, ErrTagExists) {
		t.Fatalf("CreateTag second error = %v, want ErrTagExists", err)
	}

	writeFile(t, filepath.Join(r.RootDir, "main.go"), "package main\n// v2\n", 0o644)
	h2, err := r.Commit("second\n")
	if err != nil {
		t.Fatalf("Commit h2: %v", err)
	}
	if err := r.CreateTag("v1.0.0", h2, true); err != nil {
		t.Fatalf("CreateTag force: %v", err)
	}
	resolved, err := r.ResolveTag("v1.0.0")
	if err != nil {
		t.Fatalf("ResolveTag: %v", err)
	}
	if resolved != h2 {
		t.Fatalf("forced tag = %s, want %s", resolved, h2)
	}
}

func TestTagTargetMustBeCommit(t *testing.T) {
	r := initRepoWithFile(t, "main.go", []byte("package main\n"))
	blob, err := r.Store.WriteBlob(&object.Blob{Data: []byte("x")})
	if err != nil {
		t.Fatalf("WriteBlob: %v", err)
	}
	if err := r.CreateTag("blobtag", blob, false); err == nil {
		t.Fatal("CreateTag on a blob should fail")
	}
	if err := r.CreateTag("missing", hashA, false); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("CreateTag on a missing object error = %v, want ErrNotFound", err)
	}
}

func TestTagDelete(t *testing.T) {
	r := initRepoWithFile(t, "main.go", []byte("package main\n"))
	head, err := r.Commit("initial\n")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := r.CreateTag("v1", head, false); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if err := r.DeleteTag("v1"); err != nil {
		t.Fatalf("DeleteTag: %v", err)
	}
	if _, err := r.ResolveTag("v1"); !errors.Is(err, ErrTagNotFound) {
		t.Errorf("ResolveTag after delete error = %v, want ErrTagNotFound", err)
	}
	if err := r.DeleteTag("v1"); !errors.Is(err, ErrTagNotFound) {
		t.Errorf("second DeleteTag error = %v, want ErrTagNotFound", err)
	}
	if err := r.DeleteTag("../../HEAD"); !errors.Is(err, ErrInvalidRefName) {
		t.Errorf("DeleteTag(escape) error = %v, want ErrInvalidRefName", err)
	}
}
