// internal/codec/codec.go
//
// Reversible message <-> token transform used in share links.
//
// A token is the unpadded URL-safe base64 form of the message's UTF-8 bytes,
// so it can sit unescaped in a URL path segment ("/<token>"): the alphabet is
// A–Z a–z 0–9 '-' '_' and never contains '+', '/' or '='.
//
// Decoding is strict: anything that encode could not have produced (foreign
// characters, padding, impossible lengths, non-canonical trailing bits,
// invalid UTF-8) is rejected with ok=false rather than an error.

package codec

import (
	"encoding/base64"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/robalobadob/scratcher/internal/words"
)

// ErrEmptyMessage is the cause of every EncodingError.
var ErrEmptyMessage = errors.New("message cannot be empty")

// EncodingError reports a message that cannot be turned into a token.
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string { return "encode message: " + e.Err.Error() }
func (e *EncodingError) Unwrap() error { return e.Err }

var enc = base64.RawURLEncoding.Strict()

// Encode returns the token for message.
func Encode(message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", &EncodingError{Err: ErrEmptyMessage}
	}
	return enc.EncodeToString([]byte(message)), nil
}

// Decode returns the message behind token, or ok=false if token is malformed.
func Decode(token string) (msg string, ok bool) {
	if token == "" || !isTokenAlphabet(token) {
		return "", false
	}
	b, err := enc.DecodeString(token)
	if err != nil || !utf8.Valid(b) {
		return "", false
	}
	return string(b), true
}

// IsValid reports whether token decodes to a non-blank message.
func IsValid(token string) bool {
	msg, ok := Decode(token)
	return ok && strings.TrimSpace(msg) != ""
}

// WordCount returns the number of words in the decoded message, 0 if the
// token is invalid.
func WordCount(token string) int {
	msg, ok := Decode(token)
	if !ok {
		return 0
	}
	return len(words.Split(msg))
}

// isTokenAlphabet reports whether s only uses the URL-safe base64 alphabet.
// The stdlib decoder silently skips '\r' and '\n', so they are rejected here.
func isTokenAlphabet(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
