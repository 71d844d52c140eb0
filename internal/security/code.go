package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateNumericCode returns a zero-padded random numeric code of the given
// length, used for emailed two-factor challenges.
func GenerateNumericCode(length int) (string, error) {
	max := big.NewInt(1)
	for range length {
		max.Mul(max, big.NewInt(10))
	}

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%0*d", length, n), nil
}
