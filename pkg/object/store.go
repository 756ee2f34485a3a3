package object

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Store is a content-addressed object store with a 2-character fan-out
// directory layout: objects/ab/cdef0123...
type Store struct {
	root   string
	level  int
	logger *zap.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithCompressionLevel sets the zlib level used for new objects.
func WithCompressionLevel(level int) StoreOption {
	return func(s *Store) { s.level = level }
}

// WithLogger sets the logger used for write events.
func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates a Store rooted at the given directory. The objects/
// subdirectory is created lazily on first write.
func NewStore(root string, opts ...StoreOption) *Store {
	s := &Store{
		root:   root,
		level:  DefaultCompression,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) objectsDir() string {
	return filepath.Join(s.root, "objects")
}

// objectPath returns the filesystem path for a given hash.
func (s *Store) objectPath(h Hash) string {
	return filepath.Join(s.objectsDir(), string(h[:2]), string(h[2:]))
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) bool {
	if _, err := ParseHash(string(h)); err != nil {
		return false
	}
	_, err := os.Stat(s.objectPath(h))
	return err == nil
}

// Write stores an object and returns its content hash.
func (s *Store) Write(objType ObjectType, data []byte) (Hash, error) {
	return s.WriteStream(objType, int64(len(data)), bytes.NewReader(data))
}

// WriteStream stores an object whose payload is read from r, which must
// yield exactly size bytes. The envelope is compressed into a temp file
// under objects/ while it is hashed; only after the stream is flushed and
// synced is the file renamed to its content-addressed path. A failure at
// any point leaves nothing at the final path. Writing an object that is
// already present succeeds without touching the existing file.
func (s *Store) WriteStream(objType ObjectType, size int64, r io.Reader) (Hash, error) {
	dir := s.objectsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("object write mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-obj-*")
	if err != nil {
		return "", fmt.Errorf("object write tmpfile: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	bw := bufio.NewWriter(tmp)
	enc, err := NewEncoder(bw, objType, size, s.level)
	if err != nil {
		return "", fmt.Errorf("object write: %w", err)
	}
	// Read one byte past size so a source that grew is caught by the
	// encoder instead of being silently cut.
	n, err := io.Copy(enc, io.LimitReader(r, size+1))
	if err != nil {
		return "", fmt.Errorf("object write: %w", err)
	}
	if n != size {
		return "", fmt.Errorf("object write: read %d payload bytes, expected %d", n, size)
	}
	h, err := enc.Close()
	if err != nil {
		return "", fmt.Errorf("object write: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return "", fmt.Errorf("object write flush: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return "", fmt.Errorf("object write sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("object write close: %w", err)
	}

	dest := s.objectPath(h)
	if _, err := os.Stat(dest); err == nil {
		s.logger.Debug("object exists",
			zap.String("type", string(objType)),
			zap.String("hash", string(h)),
		)
		return h, nil
	}

	if err := os.Chmod(tmpName, 0o444); err != nil {
		return "", fmt.Errorf("object write chmod: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("object write mkdir: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return "", fmt.Errorf("object write rename: %w", err)
	}
	committed = true

	s.logger.Debug("object written",
		zap.String("type", string(objType)),
		zap.String("hash", string(h)),
		zap.Int64("size", size),
	)
	return h, nil
}

// Open returns a lazily decompressing reader over the payload of the
// object with the given hash. The caller must Close it.
func (s *Store) Open(h Hash) (*Reader, error) {
	if _, err := ParseHash(string(h)); err != nil {
		return nil, fmt.Errorf("object read: %w", err)
	}
	f, err := os.Open(s.objectPath(h))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &NotFoundError{Hash: h}
		}
		return nil, fmt.Errorf("object read %s: %w", h, err)
	}
	r, err := NewReader(bufio.NewReader(f))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("object read %s: %w", h, err)
	}
	r.closer = f
	return r, nil
}

// Read retrieves an object by hash, returning its type and raw content.
func (s *Store) Read(h Hash) (ObjectType, []byte, error) {
	r, err := s.Open(h)
	if err != nil {
		return "", nil, err
	}
	defer r.Close()
	data, err := readPayload(r)
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: %w", h, err)
	}
	return r.Type, data, nil
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

func (s *Store) readTyped(h Hash, want ObjectType) ([]byte, error) {
	objType, data, err := s.Read(h)
	if err != nil {
		return nil, err
	}
	if objType != want {
		return nil, fmt.Errorf("object %s: type mismatch: got %q, want %q", h, objType, want)
	}
	return data, nil
}

// WriteBlob serializes and stores a Blob.
func (s *Store) WriteBlob(b *Blob) (Hash, error) {
	return s.Write(TypeBlob, MarshalBlob(b))
}

// ReadBlob reads and deserializes a Blob.
func (s *Store) ReadBlob(h Hash) (*Blob, error) {
	data, err := s.readTyped(h, TypeBlob)
	if err != nil {
		return nil, err
	}
	return UnmarshalBlob(data)
}

// WriteTree serializes and stores a TreeObj.
func (s *Store) WriteTree(tr *TreeObj) (Hash, error) {
	data, err := MarshalTree(tr)
	if err != nil {
		return "", err
	}
	return s.Write(TypeTree, data)
}

// ReadTree reads and deserializes a TreeObj.
func (s *Store) ReadTree(h Hash) (*TreeObj, error) {
	data, err := s.readTyped(h, TypeTree)
	if err != nil {
		return nil, err
	}
	return UnmarshalTree(data)
}

// WriteCommit serializes and stores a CommitObj.
func (s *Store) WriteCommit(c *CommitObj) (Hash, error) {
	return s.Write(TypeCommit, MarshalCommit(c))
}

// ReadCommit reads and deserializes a CommitObj.
func (s *Store) ReadCommit(h Hash) (*CommitObj, error) {
	data, err := s.readTyped(h, TypeCommit)
	if err != nil {
		return nil, err
	}
	return UnmarshalCommit(data)
}
