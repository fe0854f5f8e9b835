package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher wraps bcrypt with a configurable work factor. Plaintext passwords
// exist only as arguments here; they are never persisted or logged.
type Hasher struct {
	cost      int
	dummyHash string
}

// NewHasher builds a Hasher with the given bcrypt cost (default 10 when out
// of range). The dummy hash is compared against on login misses so a lookup
// miss costs roughly the same as a password mismatch.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("account-hub-dummy"), cost)
	if err != nil {
		// bcrypt only fails on invalid cost, which is checked above
		panic(fmt.Sprintf("bcrypt dummy hash: %v", err))
	}
	return &Hasher{cost: cost, dummyHash: string(dummy)}
}

func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (h *Hasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// VerifyDummy burns a bcrypt comparison without revealing anything. Called
// when login cannot find an account, so response timing does not leak
// account existence.
func (h *Hasher) VerifyDummy(password string) {
	_ = bcrypt.CompareHashAndPassword([]byte(h.dummyHash), []byte(password))
}
