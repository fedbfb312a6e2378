package helpers

import (
	"crypto/sha256"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher turns passwords into bcrypt digests for durable storage.
type BcryptHasher struct {
	Cost int

	dummyOnce sync.Once
	dummy     []byte
}

// NewBcryptHasher returns a hasher with the given cost; out-of-range costs
// fall back to bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{Cost: cost}
}

// prepare pre-hashes with SHA-256 so passwords longer than bcrypt's 72-byte
// input limit are neither rejected nor truncated.
func prepare(plain string) []byte {
	sum := sha256.Sum256([]byte(plain))
	return sum[:]
}

// Hash hashes the plain text password using bcrypt.
func (h *BcryptHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword(prepare(plain), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare reports whether plain matches the bcrypt hash.
func (h *BcryptHasher) Compare(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), prepare(plain)) == nil
}

// CompareDummy spends the same work as Compare against a throwaway digest.
// Stores call it for unknown users so response time does not reveal which
// addresses are registered.
func (h *BcryptHasher) CompareDummy(plain string) {
	h.dummyOnce.Do(func() {
		h.dummy, _ = bcrypt.GenerateFromPassword(prepare(""), h.Cost)
	})
	_ = bcrypt.CompareHashAndPassword(h.dummy, prepare(plain))
}
