package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

var nonASCII = runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })

// Primary returns the hex SHA-256 of content with every non-ASCII character
// removed. Invalid UTF-8 bytes decode as U+FFFD and are removed too.
func Primary(content string) string {
	ascii, _, err := transform.String(runes.Remove(nonASCII), content)
	if err != nil {
		ascii = stripASCII(content)
	}
	return hash([]byte(ascii))
}

// Legacy returns the hex SHA-256 of content's raw bytes. It reports false when
// content is not valid UTF-8, which the older scheme could not encode.
func Legacy(content string) (string, bool) {
	if !utf8.ValidString(content) {
		return "", false
	}
	return hash([]byte(content)), true
}

func hash(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func stripASCII(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] <= unicode.MaxASCII {
			out = append(out, s[i])
		}
	}
	return string(out)
}
