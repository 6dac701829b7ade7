package crypto

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// ErrInvalidInput is returned when a plaintext or digest is empty or is not a bcrypt digest.
var ErrInvalidInput = errors.New("invalid hashing input")

// Hasher hashes and verifies passwords with bcrypt.
//
// bcrypt is CPU bound by construction, so at most GOMAXPROCS computations run
// at once; the rest wait on the semaphore (or their context) instead of
// competing with request handling for every core.
type Hasher struct {
	cost  int
	slots int64
	sem   *semaphore.Weighted
}

// NewHasher returns a Hasher using the given bcrypt cost factor.
func NewHasher(cost int) *Hasher {
	slots := int64(runtime.GOMAXPROCS(0))
	return &Hasher{
		cost:  cost,
		slots: slots,
		sem:   semaphore.NewWeighted(slots),
	}
}

// Cost reports the configured bcrypt cost factor.
func (h *Hasher) Cost() int { return h.cost }

// Hash returns the bcrypt digest of plaintext.
func (h *Hasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if plaintext == "" {
		return "", fmt.Errorf("%w: empty plaintext", ErrInvalidInput)
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. A mismatch is (false, nil);
// an error is returned only for empty arguments, a digest that is not bcrypt,
// or a cancelled context.
func (h *Hasher) Verify(ctx context.Context, plaintext, digest string) (bool, error) {
	if plaintext == "" || digest == "" {
		return false, fmt.Errorf("%w: empty plaintext or digest", ErrInvalidInput)
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.sem.Release(1)

	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
}
