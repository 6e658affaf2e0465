package crypto

import (
	"context"
	"errors"
	"testing"
)

func TestHashAndCompare(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if string(hash) == "secret123" {
		t.Fatal("hash equals plaintext")
	}
	if err := ComparePassword(hash, "secret123"); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := ComparePassword(hash, "wrongpass"); !errors.Is(err, ErrMismatch) {
		t.Errorf("wrong password: got %v, want ErrMismatch", err)
	}
}

func TestCompareMalformedHashIsNotMismatch(t *testing.T) {
	err := ComparePassword([]byte("not-a-bcrypt-hash"), "secret123")
	if err == nil {
		t.Fatal("malformed hash accepted")
	}
	if errors.Is(err, ErrMismatch) {
		t.Error("malformed hash reported as plain mismatch")
	}
}

func TestHashesAreSalted(t *testing.T) {
	first, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	second, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if string(first) == string(second) {
		t.Error("two hashes of the same password are identical")
	}
}

func TestHasherRoundTrip(t *testing.T) {
	h := NewHasher(1)
	hash, err := h.Hash(context.Background(), "secret123")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if err := h.Compare(context.Background(), hash, "secret123"); err != nil {
		t.Errorf("Compare rejected correct password: %v", err)
	}
}

func TestHasherHonoursCancelledContext(t *testing.T) {
	h := NewHasher(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := h.Hash(ctx, "secret123"); err == nil {
		t.Error("cancelled context did not abort hashing")
	}
}
