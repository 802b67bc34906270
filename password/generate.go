package password

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// Character classes for generated temporary passwords. Similar-looking
// characters (0/O/o, 1/l/I/i) are excluded so passwords survive being read
// out of an email; symbols are deliberately absent.
const (
	generateUpper  = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	generateLower  = "abcdefghjkmnpqrstuvwxyz"
	generateDigits = "23456789"
)

// Generate produces a random temporary password of the given length drawn
// from uppercase letters, lowercase letters, and digits. Lengths below 8
// are rejected.
func Generate(length int) (string, error) {
	if length < 8 {
		return "", errors.New("generated passwords must be at least 8 characters")
	}

	charset := generateUpper + generateLower + generateDigits
	out := make([]byte, length)
	max := big.NewInt(int64(len(charset)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = charset[n.Int64()]
	}
	return string(out), nil
}
