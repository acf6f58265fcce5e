// internal/words/words.go
//
// Word handling for secret messages.
//
// Responsibilities:
//   - Split a message into its ordered, whitespace-delimited words.
//   - Reduce a word sequence to its distinct words (first occurrence wins).
//   - Validate a message before a share link is generated for it.
//
// Word order is significant everywhere: the game unlocks words in the order
// they appear in the message.

package words

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	DefaultMinWords  = 3
	DefaultMaxLength = 200
)

var (
	ErrEmpty       = errors.New("message is empty")
	ErrTooFewWords = errors.New("message has too few words")
	ErrTooLong     = errors.New("message is too long")
)

// Rules bounds the messages accepted for link generation.
type Rules struct {
	MinWords  int // minimum number of words (default 3)
	MaxLength int // maximum length in characters (default 200)
}

// DefaultRules returns the link rules used when none are configured.
func DefaultRules() Rules {
	return Rules{MinWords: DefaultMinWords, MaxLength: DefaultMaxLength}
}

// Split returns the whitespace-delimited words of msg in order.
func Split(msg string) []string {
	return strings.Fields(msg)
}

// Distinct returns the first occurrence of every word, preserving order.
func Distinct(list []string) []string {
	seen := toSet(nil)
	out := make([]string, 0, len(list))
	for _, w := range list {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// Contains reports whether w is present in list.
func Contains(list []string, w string) bool {
	for _, x := range list {
		if x == w {
			return true
		}
	}
	return false
}

// ValidateLink checks msg against r. Zero-valued fields of r fall back to
// the defaults.
func ValidateLink(msg string, r Rules) error {
	if r.MinWords <= 0 {
		r.MinWords = DefaultMinWords
	}
	if r.MaxLength <= 0 {
		r.MaxLength = DefaultMaxLength
	}

	msg = strings.TrimSpace(msg)
	if msg == "" {
		return ErrEmpty
	}
	if n := utf8.RuneCountInString(msg); n > r.MaxLength {
		return fmt.Errorf("%w: %d characters (max %d)", ErrTooLong, n, r.MaxLength)
	}
	if n := len(Split(msg)); n < r.MinWords {
		return fmt.Errorf("%w: %d (min %d)", ErrTooFewWords, n, r.MinWords)
	}
	return nil
}

// toSet converts a list of strings into a lookup set.
func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}
