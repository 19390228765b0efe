package clipboard

import "testing"

func TestBlobStorePutIsContentAddressed(t *testing.T) {
	s, err := NewBlobStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewBlobStore: %v", err)
	}
	data := []byte("some png bytes")

	hash1, ref1, err := s.Put(data)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	hash2, ref2, err := s.Put(data)
	if err != nil {
		t.Fatalf("second Put: %v", err)
	}
	if hash1 != hash2 || ref1 != ref2 {
		t.Fatalf("expected identical hash/ref for identical bytes, got (%s,%s) vs (%s,%s)", hash1, ref1, hash2, ref2)
	}
	if hash1 != Hash(data) {
		t.Fatalf("hash = %s, want sha256(data) = %s", hash1, Hash(data))
	}

	hashes, err := s.ListHashes()
	if err != nil {
		t.Fatalf("ListHashes: %v", err)
	}
	if len(hashes) != 1 {
		t.Fatalf("expected exactly one file on disk, got %d", len(hashes))
	}
}

func TestBlobStoreGetRoundTrip(t *testing.T) {
	s, err := NewBlobStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	data := []byte("round trip me")
	hash, _, err := s.Put(data)
	if err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(hash)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(data) {
		t.Fatalf("Get returned %q, want %q", got, data)
	}
}

func TestBlobStoreDeleteIsIdempotent(t *testing.T) {
	s, err := NewBlobStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("not-a-real-hash"); err != nil {
		t.Fatalf("Delete on missing file should be a no-op: %v", err)
	}
}
