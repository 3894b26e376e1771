package auth

import (
	"crypto/sha256"
	"encoding/base64"

	"github.com/dmitrijs2005/eventhub/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes and verifies passwords with bcrypt.
//
// bcrypt only looks at the first 72 bytes of its input, so the password is
// first reduced to base64(SHA-256(password)), which is 44 bytes for any
// password length.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher using cost; values outside bcrypt's
// range fall back to bcrypt.DefaultCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns a salted bcrypt hash of plaintext. Every call uses a fresh salt.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", common.ErrInvalidArgument
	}
	in := prehash(plaintext)
	defer common.WipeByteArray(in)

	b, err := bcrypt.GenerateFromPassword(in, h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether plaintext matches hash. Empty input, a corrupt or
// foreign-format hash and a mismatch all yield false.
func (h *PasswordHasher) Verify(plaintext, hash string) (ok bool) {
	if plaintext == "" || hash == "" {
		return false
	}
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	in := prehash(plaintext)
	defer common.WipeByteArray(in)

	return bcrypt.CompareHashAndPassword([]byte(hash), in) == nil
}

func prehash(plaintext string) []byte {
	raw := []byte(plaintext)
	sum := sha256.Sum256(raw)
	common.WipeByteArray(raw)

	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	common.WipeByteArray(sum[:])
	return out
}
