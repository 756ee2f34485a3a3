package repo

import (
	"go.uber.org/zap"

	"github.com/odvcencio/twig/pkg/object"
)

const (
	// AdminDir is the name of the administrative directory at the root of
	// the working tree.
	AdminDir = ".git"

	// DefaultBranch is the branch HEAD points at after Init.
	DefaultBranch = "main"
)

// Repo represents an opened repository. Every operation goes through a
// Repo value; there is no process-wide repository state.
type Repo struct {
	RootDir string        // working directory root
	GitDir  string        // administrative directory
	Store   *object.Store // content-addressed object store
	Config  *Config

	Identity IdentityProvider
	Clock    Clock
	Logger   *zap.Logger
}

// Option configures a Repo at Init or Open.
type Option func(*Repo)

// WithLogger sets the logger for the repository and its object store.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Repo) {
		if logger != nil {
			r.Logger = logger
		}
	}
}

// WithIdentity overrides the identity recorded in new commits.
func WithIdentity(p IdentityProvider) Option {
	return func(r *Repo) { r.Identity = p }
}

// WithClock overrides the time source used for commit timestamps.
func WithClock(c Clock) Option {
	return func(r *Repo) { r.Clock = c }
}

func newRepo(root, gitDir string, cfg *Config, opts []Option) *Repo {
	r := &Repo{
		RootDir: root,
		GitDir:  gitDir,
		Config:  cfg,
		Clock:   SystemClock,
		Logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Identity == nil {
		r.Identity = NewEnvIdentity(cfg)
	}
	r.Store = object.NewStore(gitDir,
		object.WithCompressionLevel(cfg.Core.Compression),
		object.WithLogger(r.Logger),
	)
	return r
}
