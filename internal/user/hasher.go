package user

import "golang.org/x/crypto/bcrypt"

// PasswordHasher defines the minimal hashing interface (abstract so we can
// swap to argon2 later).
type PasswordHasher interface {
	Hash(pw string) (string, error)
	// Verify reports whether pw matches the stored hash. A malformed
	// stored hash verifies false, never panics or bypasses the check.
	Verify(hash, pw string) bool
}

// BcryptHasher implements PasswordHasher. bcrypt embeds a random salt in
// its output, so hashing the same password twice yields different strings.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	// CompareHashAndPassword runs in constant time relative to the
	// password and errors on malformed hashes, which we treat as a
	// mismatch.
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
