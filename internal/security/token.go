package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// TokenSigner generates cryptographically secure opaque tokens.
type TokenSigner interface {
	Generate(ctx context.Context, subject string) (string, error)
}

// HashToken returns the hex SHA-256 digest of a raw token. Sessions store the
// digest, never the raw token handed to the client.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
