// Package auth holds the credential primitives used by the user service.
//
// Passwords are never stored or compared as plain strings. bcrypt salts each
// hash, embeds salt and cost in the output, and compares in constant time,
// so the users.password column only ever holds strings like:
//
//	$2a$12$<22-char salt><31-char hash>
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/todolist/internal/apperror"
)

// DefaultCost is the bcrypt work factor used in production (~250ms per hash).
const DefaultCost = 12

// MaxPasswordBytes is bcrypt's input limit. Longer inputs would be silently
// truncated, so they are rejected instead.
const MaxPasswordBytes = 72

// ErrPasswordMismatch is returned by Verify when the password is wrong.
var ErrPasswordMismatch = errors.New("auth: password does not match")

// PasswordHasher hashes and verifies passwords with bcrypt.
//
// The cost is a field so tests can use bcrypt.MinCost (4) and stay fast.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher using DefaultCost.
func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{cost: DefaultCost}
}

// NewPasswordHasherWithCost returns a hasher with a custom cost. Costs below
// bcrypt.MinCost are raised to it. Do not go below DefaultCost in production.
func NewPasswordHasherWithCost(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns the bcrypt hash of plaintext.
func (p *PasswordHasher) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxPasswordBytes {
		return "", apperror.ValidationFailed("password",
			fmt.Sprintf("password must be %d bytes or fewer", MaxPasswordBytes))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify reports whether plaintext matches hash. A wrong password yields
// ErrPasswordMismatch; a malformed hash yields a different error.
//
// bcrypt only looks at the first MaxPasswordBytes bytes, so a longer input
// could match a hash made from its prefix. Hash never accepts such an input,
// so a longer plaintext is always a mismatch.
func (p *PasswordHasher) Verify(hash, plaintext string) error {
	if len(plaintext) > MaxPasswordBytes {
		return ErrPasswordMismatch
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return fmt.Errorf("auth: comparing password hash: %w", err)
}
