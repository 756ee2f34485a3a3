package object

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"testing"
)

// BenchmarkStoreWriteSmall benchmarks writing a 100-byte blob to the store.
func BenchmarkStoreWriteSmall(b *testing.B) {
	s := NewStore(b.TempDir())

	// Distinct payloads so every write takes the rename path.
	payloads := make([][]byte, b.N)
	for i := range payloads {
		buf := make([]byte, 100)
		if _, err := rand.Read(buf); err != nil {
			b.Fatalf("rand.Read: %v", err)
		}
		payloads[i] = buf
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Write(TypeBlob, payloads[i]); err != nil {
			b.Fatalf("Write: %v", err)
		}
	}
}

// BenchmarkStoreWriteLarge streams a 1MB blob through the store.
func BenchmarkStoreWriteLarge(b *testing.B) {
	s := NewStore(b.TempDir())
	payload := bytes.Repeat([]byte("0123456789abcdef"), 64*1024)

	b.SetBytes(int64(len(payload)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		// Vary the first bytes so the object is new each time.
		copy(payload, fmt.Sprintf("%016d", i))
		if _, err := s.WriteStream(TypeBlob, int64(len(payload)), bytes.NewReader(payload)); err != nil {
			b.Fatalf("WriteStream: %v", err)
		}
	}
}

// BenchmarkStoreRead benchmarks reading back a previously written blob.
func BenchmarkStoreRead(b *testing.B) {
	s := NewStore(b.TempDir())

	data := make([]byte, 4096)
	if _, err := rand.Read(data); err != nil {
		b.Fatalf("rand.Read: %v", err)
	}
	h, err := s.Write(TypeBlob, data)
	if err != nil {
		b.Fatalf("Write: %v", err)
	}

	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		typ, got, err := s.Read(h)
		if err != nil {
			b.Fatalf("Read: %v", err)
		}
		if typ != TypeBlob || len(got) != len(data) {
			b.Fatalf("Read = (%q, %d bytes)", typ, len(got))
		}
	}
}

func BenchmarkMarshalTree(b *testing.B) {
	entries := make([]TreeEntry, 512)
	for i := range entries {
		entries[len(entries)-1-i] = TreeEntry{
			Mode: 0o100644,
			Name: fmt.Sprintf("file-%04d.go", i),
			Hash: HashObject(TypeBlob, []byte{byte(i)}),
		}
	}
	tr := &TreeObj{Entries: entries}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := MarshalTree(tr); err != nil {
			b.Fatalf("MarshalTree: %v", err)
		}
	}
}
