package object

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is matched by errors returned when an id has no stored object.
	ErrNotFound = errors.New("object not found")

	// ErrMalformed is matched by every decode failure: bad header, unknown
	// kind, or a payload shorter than its declared size.
	ErrMalformed = errors.New("malformed object")

	ErrUnknownKind     = fmt.Errorf("%w: unknown kind", ErrMalformed)
	ErrMalformedHeader = fmt.Errorf("%w: bad header", ErrMalformed)
	ErrTruncated       = fmt.Errorf("%w: truncated payload", ErrMalformed)

	ErrUnknownMode = errors.New("unknown tree entry mode")
	ErrInvalidHash = errors.New("invalid object id")
)

// NotFoundError reports a read of an id that is absent from the store.
type NotFoundError struct {
	Hash Hash
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("object %s: %s", e.Hash, ErrNotFound)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
