package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the adaptive-hash cost factor used across the platform.
const DefaultCost = 10

// Hasher wraps bcrypt at a fixed cost. Instances are immutable and safe
// for concurrent use.
type Hasher struct {
	cost int
}

// NewHasher validates the cost and returns a ready Hasher.
func NewHasher(cost int) (*Hasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, errors.New("invalid bcrypt cost")
	}
	return &Hasher{cost: cost}, nil
}

// Hash derives a salted bcrypt hash of plaintext. Failures only occur on
// underlying crypto faults and are not retried.
func (h *Hasher) Hash(plaintext string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Compare reports whether plaintext matches the stored hash. It never
// returns an error: malformed hashes and mismatches both yield false.
func (h *Hasher) Compare(plaintext, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}
