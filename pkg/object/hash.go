package object

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"strconv"
)

const (
	// HashSize is the length of a raw SHA-1 digest.
	HashSize = sha1.Size
	// HashHexSize is the length of a hex-encoded Hash.
	HashHexSize = 2 * HashSize
)

// HashObject computes the SHA-1 of the envelope "type len\0content" and
// returns it as a lowercase hex Hash.
func HashObject(objType ObjectType, data []byte) Hash {
	h := newObjectHasher(objType, int64(len(data)))
	h.Write(data)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

func newObjectHasher(objType ObjectType, size int64) hash.Hash {
	h := sha1.New()
	h.Write(envelopeHeader(objType, size))
	return h
}

func envelopeHeader(objType ObjectType, size int64) []byte {
	b := make([]byte, 0, len(objType)+24)
	b = append(b, string(objType)...)
	b = append(b, ' ')
	b = strconv.AppendInt(b, size, 10)
	return append(b, 0)
}

// ParseHash validates s as a 40-character lowercase hex id.
func ParseHash(s string) (Hash, error) {
	if len(s) != HashHexSize {
		return "", fmt.Errorf("%w %q: want %d hex characters", ErrInvalidHash, s, HashHexSize)
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", fmt.Errorf("%w %q", ErrInvalidHash, s)
		}
	}
	return Hash(s), nil
}

// Raw returns the 20 raw digest bytes of h.
func (h Hash) Raw() ([]byte, error) {
	if _, err := ParseHash(string(h)); err != nil {
		return nil, err
	}
	return hex.DecodeString(string(h))
}

// HashFromRaw hex-encodes a 20-byte raw digest.
func HashFromRaw(raw []byte) (Hash, error) {
	if len(raw) != HashSize {
		return "", fmt.Errorf("%w: raw id has %d bytes, want %d", ErrInvalidHash, len(raw), HashSize)
	}
	return Hash(hex.EncodeToString(raw)), nil
}

// Short returns the first 8 characters of h, for display.
func (h Hash) Short() string {
	if len(h) > 8 {
		return string(h[:8])
	}
	return string(h)
}

// HashReader computes the id of an object whose payload of the given size
// is read from r, without storing anything.
func HashReader(objType ObjectType, size int64, r io.Reader) (Hash, error) {
	h := newObjectHasher(objType, size)
	n, err := io.Copy(h, io.LimitReader(r, size+1))
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", objType, err)
	}
	if n != size {
		return "", fmt.Errorf("hash %s: read %d payload bytes, expected %d", objType, n, size)
	}
	return Hash(hex.EncodeToString(h.Sum(nil))), nil
}
