package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Init creates a new repository at path: the administrative directory with
// objects/, refs/heads/, a default config.toml, and HEAD pointing at
// refs/heads/main. The main ref itself is not created until the first
// commit. Init fails with ErrAlreadyInitialized if the administrative
// directory exists.
func Init(path string, opts ...Option) (*Repo, error) {
	gitDir := filepath.Join(path, AdminDir)

	if _, err := os.Lstat(gitDir); err == nil {
		return nil, fmt.Errorf("init %s: %w", gitDir, ErrAlreadyInitialized)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("init: %w", err)
	}

	dirs := []string{
		filepath.Join(gitDir, "objects"),
		filepath.Join(gitDir, "refs", "heads"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	cfg := DefaultConfig()
	if err := WriteConfig(gitDir, cfg); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	r := newRepo(path, gitDir, cfg, opts)
	if err := r.writeHead(refPrefixHeads + DefaultBranch); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	r.Logger.Debug("initialized repository", zap.String("git_dir", gitDir))
	return r, nil
}

// Open searches upward from path for the administrative directory and
// opens the repository. Returns ErrNotARepository if none is found.
func Open(path string, opts ...Option) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		gitDir := filepath.Join(cur, AdminDir)
		info, err := os.Stat(gitDir)
		if err == nil && info.IsDir() {
			cfg, err := ReadConfig(gitDir)
			if err != nil {
				return nil, fmt.Errorf("open: %w", err)
			}
			return newRepo(cur, gitDir, cfg, opts), nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open %s: %w", abs, ErrNotARepository)
		}
		cur = parent
	}
}
