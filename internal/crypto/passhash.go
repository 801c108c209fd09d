// Package crypto implements one-way hashing for passwords and refresh tokens.
package crypto

import (
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is used when the configured bcrypt cost is out of range.
const DefaultCost = 10

// Hasher produces and verifies bcrypt digests with a fixed cost factor.
// The same primitive covers both password and refresh-token digests.
// Inputs are pre-digested with SHA-256 before bcrypt: refresh tokens are
// signed JWTs far beyond bcrypt's 72-byte input limit, and the pre-digest
// keeps Hash/Verify symmetric for any input length.
type Hasher struct {
	cost int
}

// NewHasher constructs a Hasher, clamping cost into bcrypt's valid range.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the bcrypt digest of plaintext.
func (h *Hasher) Hash(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword(predigest(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether plaintext matches the digest.
func (h *Hasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), predigest(plaintext)) == nil
}

// predigest maps arbitrary-length input to 44 printable bytes, under
// bcrypt's 72-byte cap.
func predigest(plaintext string) []byte {
	sum := sha256.Sum256([]byte(plaintext))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}
