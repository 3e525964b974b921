package random

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Alphabet is the set of symbols short codes are drawn from.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// NewRandomString generates a random string of the given length drawn
// uniformly from Alphabet using crypto/rand.
func NewRandomString(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid length: %d", length)
	}

	max := big.NewInt(int64(len(Alphabet)))
	result := make([]byte, length)

	for i := range result {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		result[i] = Alphabet[n.Int64()]
	}

	return string(result), nil
}
