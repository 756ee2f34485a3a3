package repo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/odvcencio/twig/pkg/object"
)

var fixtureTime = time.Unix(1720703241, 0)

// initRepoWithFile creates a temp repo with a fixed identity and clock and
// writes one file into the working directory.
func initRepoWithFile(t *testing.T, name string, content []byte) *Repo {
	t.Helper()
	dir := t.TempDir()
	r, err := Init(dir,
		WithIdentity(StaticIdentity{Name: "Name", Email: "email"}),
		WithClock(FixedClock(fixtureTime)),
	)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	writeFile(t, filepath.Join(dir, name), string(content), 0o644)
	return r
}

func TestCommitTree_Fixture(t *testing.T) {
	r := initRepoWithFile(t, "main.go", []byte("package main\n"))

	h, err := r.CommitTree("ecabbf6e6c59d8d3d222685a369bb611803d3ce8", "", "Implement init command\n")
	if err != nil {
		t.Fatalf("CommitTree: %v", err)
	}
	if h != "f8a9d7076045640858671339250de33d331cec74" {
		t.Fatalf("CommitTree = %s, want f8a9d7076045640858671339250de33d331cec74", h)
	}

	// CommitTree moves no ref.
	if _, err := r.HeadCommit(); !errors.Is(err, ErrRefNotFound) {
		t.Errorf("HeadCommit after CommitTree error = %v, want ErrRefNotFound", err)
	}
}

func TestCommitTree_InvalidInput(t *testing.T) {
	r := initRepoWithFile(t, "main.go", []byte("package main\n"))

	if _, err := r.CommitTree("abc", "", "m\n"); !errors.Is(err, object.ErrInvalidHash) {
		t.Errorf("bad tree error = %v, want ErrInvalidHash", err)
	}
	if _, err := r.CommitTree(fixtureTree, "xyz", "m\n"); !errors.Is(err, object.ErrInvalidHash) {
		t.Errorf("bad parent error = %v, want ErrInvalidHash", err)
	}

	r.Identity = StaticIdentity{Name: "Evil\nparent 0000", Email: "e"}
	if _, err := r.CommitTree(fixtureTree, "", "m\n"); err == nil {
		t.Error("identity with a newline should be rejected")
	}
}

func TestCommitTree_ClockFailure(t *testing.T) {
	r := initRepoWithFile(t, "main.go", []byte("package main\n"))
	errClock := errors.New("clock unavailable")
	r.Clock = ClockFunc(func() (time.Time, error) { return time.Time{}, errClock })

	if _, err := r.CommitTree(fixtureTree, "", "m\n"); !errors.Is(err, errClock) {
		t.Fatalf("CommitTree error = %v, want clock error", err)
	}

	r.Clock = FixedClock(time.Unix(-5, 0))
	if _, err := r.CommitTree(fixtureTree, "", "m\n"); err == nil {
		t.Fatal("CommitTree with a pre-epoch clock should fail")
	}
}

func TestCommit_FirstHasNoParent(t *testing.T) {
	r := initRepoWithFile(t, "main.go", []byte("package main\n\nfunc main() {}\n"))

	h, err := r.Commit("initial commit\n")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	c, err := r.Store.ReadCommit(h)
	if err != nil {
		t.Fatalf("ReadCommit(%s): %v", h, err)
	}
	if c.Message != "initial commit\n" {
		t.Errorf("Message = %q, want %q", c.Message, "initial commit\n")
	}
	if c.AuthorName != "Name" || c.AuthorEmail != "email" {
		t.Errorf("author = %q <%s>, want Name <email>", c.AuthorName, c.AuthorEmail)
	}
	if c.Timestamp != fixtureTime.Unix() {
		t.Errorf("Timestamp = %d, want %d", c.Timestamp, fixtureTime.Unix())
	}
	if c.Parent != "" {
		t.Errorf("first commit parent = %q, want none", c.Parent)
	}

	headHash, err := r.HeadCommit()
	if err != nil {
		t.Fatalf("HeadCommit: %v", err)
	}
	if headHash != h {
		t.Errorf("HEAD = %q, want %q", headHash, h)
	}
}

func TestCommit_SecondHasParent(t *testing.T) {
	r := initRepoWithFile(t, "main.go", []byte("package main\n\nfunc main() {}\n"))

	h1, err := r.Commit("first commit\n")
	if err != nil {
		t.Fatalf("first Commit: %v", err)
	}

	writeFile(t, filepath.Join(r.RootDir, "main.go"), "package main\n\nfunc main() { println(\"v2\") }\n", 0o644)

	h2, err := r.Commit("second commit\n")
	if err != nil {
		t.Fatalf("second Commit: %v", err)
	}

	c2, err := r.Store.ReadCommit(h2)
	if err != nil {
		t.Fatalf("ReadCommit(%s): %v", h2, err)
	}
	if c2.Parent != h1 {
		t.Errorf("second commit parent = %q, want %q", c2.Parent, h1)
	}

	c1, err := r.Store.ReadCommit(h1)
	if err != nil {
		t.Fatalf("ReadCommit(%s): %v", h1, err)
	}
	if c1.TreeHash == c2.TreeHash {
		t.Error("modified working tree produced the same tree id")
	}
}

func TestCommit_UnchangedTreeStillCommits(t *testing.T) {
	r := initRepoWithFile(t, "main.go", []byte("package main\n"))

	h1, err := r.Commit("one\n")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	h2, err := r.Commit("two\n")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if h1 == h2 {
		t.Fatal("two commits with different messages share an id")
	}
	c1, _ := r.Store.ReadCommit(h1)
	c2, _ := r.Store.ReadCommit(h2)
	if c1.TreeHash != c2.TreeHash {
		t.Errorf("tree changed without a working tree change: %s vs %s", c1.TreeHash, c2.TreeHash)
	}
}

func TestCommit_CorruptBranchRef(t *testing.T) {
	r := initRepoWithFile(t, "main.go", []byte("package main\n"))
	if err := os.WriteFile(filepath.Join(r.GitDir, "refs", "heads", "main"), []byte("oops\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := r.Commit("m\n"); !errors.Is(err, object.ErrInvalidHash) {
		t.Fatalf("Commit error = %v, want ErrInvalidHash", err)
	}
}

func TestLog_ReverseChronological(t *testing.T) {
	r := initRepoWithFile(t, "main.go", []byte("package main\n"))

	var hashes []object.Hash
	for i, msg := range []string{"first\n", "second\n", "third\n"} {
		writeFile(t, filepath.Join(r.RootDir, "main.go"), "package main\n// "+msg, 0o644)
		h, err := r.Commit(msg)
		if err != nil {
			t.Fatalf("Commit %d: %v", i, err)
		}
		hashes = append(hashes, h)
	}

	entries, err := r.Log(hashes[2], 0)
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Log returned %d entries, want 3", len(entries))
	}
	for i, want := range []object.Hash{hashes[2], hashes[1], hashes[0]} {
		if entries[i].Hash != want {
			t.Errorf("entry %d = %s, want %s", i, entries[i].Hash, want)
		}
	}
	if entries[0].Commit.Message != "third\n" {
		t.Errorf("newest message = %q", entries[0].Commit.Message)
	}

	limited, err := r.Log(hashes[2], 2)
	if err != nil {
		t.Fatalf("Log(limit 2): %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("Log(limit 2) returned %d entries", len(limited))
	}
}

func TestLog_MissingCommit(t *testing.T) {
	r := initRepoWithFile(t, "main.go", []byte("package main\n"))
	_, err := r.Log(hashA, 0)
	if !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("Log error = %v, want ErrNotFound", err)
	}
}
