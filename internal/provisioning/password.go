package provisioning

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// DefaultPasswordLength is the length of generated admin passwords.
const DefaultPasswordLength = 16

// passwordAlphabet covers ASCII letters, digits and punctuation.
const passwordAlphabet = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"0123456789" +
	"!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// GeneratePassword produces a cryptographically random credential string of
// the given length. Lengths below one fall back to DefaultPasswordLength.
func GeneratePassword(length int) (string, error) {
	if length < 1 {
		length = DefaultPasswordLength
	}
	max := big.NewInt(int64(len(passwordAlphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("provisioning: generate password: %w", err)
		}
		buf[i] = passwordAlphabet[n.Int64()]
	}
	return string(buf), nil
}
