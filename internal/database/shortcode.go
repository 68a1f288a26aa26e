package database

import (
	"strings"

	"github.com/google/uuid"
)

// ShortCodeLength is the number of characters in a configuration short code.
const ShortCodeLength = 8

// crockfordAlphabet omits I, L, O and U to keep codes unambiguous when read aloud.
const crockfordAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// NewShortCode returns a random 8-character Crockford base32 code drawn from
// the random bytes of a version 4 UUID.
func NewShortCode() string {
	u := uuid.New()
	// bytes 11..15 carry no version or variant bits
	var v uint64
	for _, b := range u[11:16] {
		v = v<<8 | uint64(b)
	}
	out := make([]byte, ShortCodeLength)
	for i := ShortCodeLength - 1; i >= 0; i-- {
		out[i] = crockfordAlphabet[v&31]
		v >>= 5
	}
	return string(out)
}

// NormalizeShortCode uppercases a code and maps the commonly confused
// characters O, I and L to their digits.
func NormalizeShortCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	code = strings.NewReplacer("O", "0", "I", "1", "L", "1", "-", "").Replace(code)
	return code
}

// IsShortCode reports whether s looks like a short code rather than an ID.
func IsShortCode(s string) bool {
	s = NormalizeShortCode(s)
	if len(s) != ShortCodeLength {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune(crockfordAlphabet, r) {
			return false
		}
	}
	return true
}
