package credential

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// TypePassword is the only supported credential type.
const TypePassword = "password"

// Supports reports whether credentialType can be verified.
func Supports(credentialType string) bool {
	return credentialType == TypePassword
}

// Verify compares a presented secret against a stored bcrypt hash. An empty or
// unparsable hash never verifies.
func Verify(secret, storedHash string) bool {
	if storedHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(secret)) == nil
}

// Hash returns a bcrypt hash of secret at the given cost. Costs outside the
// bcrypt range fall back to bcrypt.DefaultCost.
func Hash(secret string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(h), nil
}
