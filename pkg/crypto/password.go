package crypto

import (
	"context"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// ErrMismatch reports that plaintext does not match the stored hash. Any
// other comparison error means the hash itself or the runtime failed.
var ErrMismatch = bcrypt.ErrMismatchedHashAndPassword

// HashPassword hashes plaintext using bcrypt.
func HashPassword(plain string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
}

// ComparePassword compares plaintext to hashed secret.
func ComparePassword(hash []byte, plain string) error {
	return bcrypt.CompareHashAndPassword(hash, []byte(plain))
}

// Hasher bounds concurrent bcrypt work with a weighted semaphore so a burst
// of signups cannot occupy every scheduler thread with key stretching.
type Hasher struct {
	sem *semaphore.Weighted
}

// NewHasher returns a Hasher allowing at most workers concurrent operations.
// Zero or negative workers defaults to GOMAXPROCS.
func NewHasher(workers int) *Hasher {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Hasher{sem: semaphore.NewWeighted(int64(workers))}
}

// Hash computes a bcrypt hash, waiting for a worker slot first.
func (h *Hasher) Hash(ctx context.Context, plain string) ([]byte, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer h.sem.Release(1)
	return HashPassword(plain)
}

// Compare checks plaintext against a stored hash under the same bound.
func (h *Hasher) Compare(ctx context.Context, hash []byte, plain string) error {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer h.sem.Release(1)
	return ComparePassword(hash, plain)
}
