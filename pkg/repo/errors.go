package repo

import (
	"errors"
	"fmt"
)

var (
	ErrNotARepository     = errors.New("not a twig repository (or any parent up to /)")
	ErrAlreadyInitialized = errors.New("repository already initialized")
	ErrBranchNotFound     = errors.New("branch not found")
	ErrBranchExists       = errors.New("branch already exists")
	ErrInvalidRefName     = errors.New("invalid ref name")
	ErrNoCommits          = errors.New("current branch has no commits yet")
	ErrTagExists          = errors.New("tag already exists")
	ErrTagNotFound        = errors.New("tag not found")

	// ErrRefNotFound is matched by RefNotFoundError. Commit treats it as
	// "no parent"; every other caller treats it as a failure.
	ErrRefNotFound = errors.New("ref not found")

	// ErrDetachedHead is returned when HEAD does not hold a symbolic ref.
	// Detached HEAD is not supported.
	ErrDetachedHead = errors.New("HEAD is not a symbolic ref")
)

// RefNotFoundError reports a ref file that does not exist.
type RefNotFoundError struct {
	Ref string
}

func (e *RefNotFoundError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: %q", ErrRefNotFound, e.Ref)
}

func (e *RefNotFoundError) Is(target error) bool {
	return target == ErrRefNotFound
}
