package object

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"testing"

	"github.com/klauspost/compress/zlib"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	payloads := [][]byte{
		nil,
		{},
		[]byte("a"),
		[]byte("with\x00nul\x00bytes"),
		bytes.Repeat([]byte{0xff}, 4096),
	}
	for j := 0; j < 32; j++ {
		p := make([]byte, rng.Intn(8192))
		rng.Read(p)
		payloads = append(payloads, p)
	}

	for _, objType := range []ObjectType{TypeBlob, TypeTree, TypeCommit} {
		for i, p := range payloads {
			enc, h, err := Encode(objType, p, DefaultCompression)
			if err != nil {
				t.Fatalf("Encode(%s, #%d): %v", objType, i, err)
			}
			if want := HashObject(objType, p); h != want {
				t.Errorf("Encode(%s, #%d) hash = %s, want %s", objType, i, h, want)
			}
			gotType, gotPayload, err := Decode(enc)
			if err != nil {
				t.Fatalf("Decode(%s, #%d): %v", objType, i, err)
			}
			if gotType != objType || !bytes.Equal(gotPayload, p) {
				t.Errorf("Decode(%s, #%d) = (%s, %d bytes), want (%s, %d bytes)",
					objType, i, gotType, len(gotPayload), objType, len(p))
			}
		}
	}
}

func TestEncodeCompressionLevelDoesNotChangeHash(t *testing.T) {
	data := bytes.Repeat([]byte("compressible "), 100)
	_, h1, err := Encode(TypeBlob, data, zlib.BestSpeed)
	if err != nil {
		t.Fatalf("Encode(BestSpeed): %v", err)
	}
	_, h2, err := Encode(TypeBlob, data, zlib.BestCompression)
	if err != nil {
		t.Fatalf("Encode(BestCompression): %v", err)
	}
	if h1 != h2 {
		t.Errorf("hash depends on compression level: %s vs %s", h1, h2)
	}
}

func TestEncodeUnknownType(t *testing.T) {
	_, _, err := Encode(ObjectType("tag"), []byte("x"), DefaultCompression)
	if !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("Encode(tag) error = %v, want ErrUnknownKind", err)
	}
}

func TestEncoderRejectsOverflow(t *testing.T) {
	enc, err := NewEncoder(io.Discard, TypeBlob, 3, DefaultCompression)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	if _, err := enc.Write([]byte("four")); err == nil {
		t.Error("Write past declared size should fail")
	}
}

func TestEncoderRejectsShortPayload(t *testing.T) {
	enc, err := NewEncoder(io.Discard, TypeBlob, 3, DefaultCompression)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	if _, err := enc.Write([]byte("ab")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := enc.Close(); err == nil {
		t.Error("Close with short payload should fail")
	}
}

func compress(t *testing.T, raw []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		t.Fatalf("zlib write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zlib close: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"unknown kind", "tag 3\x00abc", ErrUnknownKind},
		{"empty kind", " 3\x00abc", ErrUnknownKind},
		{"size not a number", "blob three\x00abc", ErrMalformedHeader},
		{"negative size", "blob -3\x00abc", ErrMalformedHeader},
		{"signed size", "blob +3\x00abc", ErrMalformedHeader},
		{"no space", "blob3\x00abc", ErrMalformedHeader},
		{"no NUL", "blob 3", ErrMalformedHeader},
		{"header too long", "blob 0000000000000000000000000000000000003\x00abc", ErrMalformedHeader},
		{"truncated payload", "blob 10\x00abc", ErrTruncated},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Decode(compress(t, []byte(tc.raw)))
			if !errors.Is(err, tc.want) {
				t.Fatalf("Decode(%q) error = %v, want %v", tc.raw, err, tc.want)
			}
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("Decode(%q) error = %v, want it to match ErrMalformed", tc.raw, err)
			}
		})
	}
}

func TestDecodeNotZlib(t *testing.T) {
	_, _, err := Decode([]byte("blob 3\x00abc"))
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("Decode(uncompressed) error = %v, want ErrMalformed", err)
	}
}

func TestDecodeTruncatedStream(t *testing.T) {
	enc, _, err := Encode(TypeBlob, bytes.Repeat([]byte("xyz"), 1000), DefaultCompression)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	_, _, err = Decode(enc[:len(enc)/2])
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("Decode(half stream) error = %v, want ErrMalformed", err)
	}
}

func TestDecodeHugeDeclaredSize(t *testing.T) {
	_, _, err := Decode(compress(t, []byte("blob 9223372036854775807\x00abc")))
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("Decode(huge size) error = %v, want ErrTruncated", err)
	}
}

func TestReaderStopsAtDeclaredSize(t *testing.T) {
	r, err := NewReader(bytes.NewReader(compress(t, []byte("blob 3\x00abcTRAILING"))))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "abc" {
		t.Errorf("payload = %q, want %q", got, "abc")
	}
}
