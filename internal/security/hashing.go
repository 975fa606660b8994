package security

import "golang.org/x/crypto/bcrypt"

// Hasher derives and checks bcrypt digests for login credentials. Only the
// digest ever reaches storage; plaintext stays on the stack of the caller.
type Hasher struct {
	Cost int
}

// NewHasher builds a Hasher, clamping cost into bcrypt's valid range.
// Non-positive cost selects the bcrypt default.
func NewHasher(cost int) *Hasher {
	switch {
	case cost <= 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &Hasher{Cost: cost}
}

// Hash returns the bcrypt digest of password at the configured cost.
func (h *Hasher) Hash(password []byte) (string, error) {
	digest, err := bcrypt.GenerateFromPassword(password, h.Cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Compare reports whether password matches the stored digest, nil on match.
func (h *Hasher) Compare(hash string, password []byte) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), password)
}
