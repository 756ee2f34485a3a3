package object

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"
)

// DefaultCompression is the zlib level used when none is configured.
const DefaultCompression = zlib.DefaultCompression

// maxHeaderLen bounds the scan for the envelope NUL. The longest valid
// header is "commit " plus a 19-digit size.
const maxHeaderLen = 32

// Encoder streams one object envelope "type len\0content" through zlib
// while hashing the uncompressed bytes. The id is only known once Close
// has seen exactly size payload bytes.
type Encoder struct {
	zw      *zlib.Writer
	hasher  hash.Hash
	size    int64
	written int64
	closed  bool
}

// NewEncoder writes the envelope header for an object of the given type
// and payload size to w and returns an Encoder for the payload.
func NewEncoder(w io.Writer, objType ObjectType, size int64, level int) (*Encoder, error) {
	if _, err := ParseObjectType(string(objType)); err != nil {
		return nil, err
	}
	if size < 0 {
		return nil, fmt.Errorf("encode %s: negative size %d", objType, size)
	}
	zw, err := zlib.NewWriterLevel(w, level)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", objType, err)
	}
	header := envelopeHeader(objType, size)
	if _, err := zw.Write(header); err != nil {
		return nil, fmt.Errorf("encode %s: write header: %w", objType, err)
	}
	hasher := newObjectHasher(objType, size)
	return &Encoder{zw: zw, hasher: hasher, size: size}, nil
}

// Write compresses and hashes payload bytes. Writing past the declared
// size is an error.
func (e *Encoder) Write(p []byte) (int, error) {
	if e.closed {
		return 0, errors.New("encode: write after close")
	}
	if e.written+int64(len(p)) > e.size {
		return 0, fmt.Errorf("encode: payload exceeds declared size %d", e.size)
	}
	n, err := e.zw.Write(p)
	e.hasher.Write(p[:n])
	e.written += int64(n)
	return n, err
}

// Close flushes the compressed stream and returns the object id. It fails
// if fewer than size payload bytes were written.
func (e *Encoder) Close() (Hash, error) {
	if e.closed {
		return "", errors.New("encode: already closed")
	}
	e.closed = true
	if err := e.zw.Close(); err != nil {
		return "", fmt.Errorf("encode: flush: %w", err)
	}
	if e.written != e.size {
		return "", fmt.Errorf("encode: wrote %d payload bytes, declared %d", e.written, e.size)
	}
	return Hash(hex.EncodeToString(e.hasher.Sum(nil))), nil
}

// Encode returns the compressed envelope for (objType, data) and its id.
func Encode(objType ObjectType, data []byte, level int) ([]byte, Hash, error) {
	var buf bytes.Buffer
	enc, err := NewEncoder(&buf, objType, int64(len(data)), level)
	if err != nil {
		return nil, "", err
	}
	if _, err := enc.Write(data); err != nil {
		return nil, "", err
	}
	h, err := enc.Close()
	if err != nil {
		return nil, "", err
	}
	return buf.Bytes(), h, nil
}

// Reader yields the payload of one compressed object, decompressing lazily
// and stopping after exactly Size bytes.
type Reader struct {
	Type ObjectType
	Size int64

	zr        io.ReadCloser
	payload   io.Reader
	remaining int64
	closer    io.Closer
}

// NewReader decompresses the envelope header from r and returns a Reader
// positioned at the start of the payload.
func NewReader(r io.Reader) (*Reader, error) {
	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, decodeError(err)
	}
	br := bufio.NewReader(zr)

	header := make([]byte, 0, maxHeaderLen)
	for {
		c, err := br.ReadByte()
		if err != nil {
			zr.Close()
			if err == io.EOF {
				return nil, fmt.Errorf("%w: missing NUL", ErrMalformedHeader)
			}
			return nil, decodeError(err)
		}
		if c == 0 {
			break
		}
		if len(header) == maxHeaderLen {
			zr.Close()
			return nil, fmt.Errorf("%w: header longer than %d bytes", ErrMalformedHeader, maxHeaderLen)
		}
		header = append(header, c)
	}

	kind, sizeStr, ok := strings.Cut(string(header), " ")
	if !ok {
		zr.Close()
		return nil, fmt.Errorf("%w %q", ErrMalformedHeader, header)
	}
	objType, err := ParseObjectType(kind)
	if err != nil {
		zr.Close()
		return nil, err
	}
	size, err := strconv.ParseUint(sizeStr, 10, 63)
	if err != nil {
		zr.Close()
		return nil, fmt.Errorf("%w: size %q", ErrMalformedHeader, sizeStr)
	}

	return &Reader{
		Type:      objType,
		Size:      int64(size),
		zr:        zr,
		payload:   io.LimitReader(br, int64(size)),
		remaining: int64(size),
	}, nil
}

// Read implements io.Reader. Reaching the end of the compressed stream
// before Size bytes is reported as ErrTruncated.
func (r *Reader) Read(p []byte) (int, error) {
	if r.remaining == 0 {
		return 0, io.EOF
	}
	n, err := r.payload.Read(p)
	r.remaining -= int64(n)
	if err == io.EOF && r.remaining > 0 {
		return n, fmt.Errorf("%w: %d of %d bytes missing", ErrTruncated, r.remaining, r.Size)
	}
	if err != nil && err != io.EOF {
		return n, decodeError(err)
	}
	return n, err
}

// Close releases the decompressor and, for store-backed readers, the
// underlying file.
func (r *Reader) Close() error {
	err := r.zr.Close()
	if r.closer != nil {
		if cerr := r.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Decode decompresses a full object envelope and returns its type and
// payload.
func Decode(data []byte) (ObjectType, []byte, error) {
	r, err := NewReader(bytes.NewReader(data))
	if err != nil {
		return "", nil, err
	}
	defer r.Close()
	payload, err := readPayload(r)
	if err != nil {
		return "", nil, err
	}
	return r.Type, payload, nil
}

func readPayload(r *Reader) ([]byte, error) {
	// The header size is untrusted; cap the preallocation.
	buf := bytes.NewBuffer(make([]byte, 0, min(r.Size, 1<<20)))
	if _, err := io.Copy(buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeError classifies decompressor failures as malformed objects;
// anything else (an underlying read failure) passes through.
func decodeError(err error) error {
	var corrupt flate.CorruptInputError
	switch {
	case errors.Is(err, zlib.ErrHeader), errors.Is(err, zlib.ErrChecksum), errors.Is(err, zlib.ErrDictionary):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.As(err, &corrupt):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.Is(err, io.ErrUnexpectedEOF):
		return fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	return err
}
