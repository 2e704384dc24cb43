// Package token generates opaque confirmation tokens.
package token

import "math/rand"

const (
	alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// Length is the number of characters in a confirmation token.
	Length = 25
)

// New returns a confirmation token: Length characters drawn uniformly from
// the 62-symbol alphanumeric alphabet. Tokens only gate the pending->confirmed
// transition, so a non-cryptographic source is used.
func New() string {
	buf := make([]byte, Length)
	for i := range buf {
		buf[i] = alphabet[rand.Intn(len(alphabet))]
	}
	return string(buf)
}
