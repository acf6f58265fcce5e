package progress

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/robalobadob/scratcher/internal/words"
)

// Record tracks which words of a message have been unlocked.
//
// CollectedWords is append-only and duplicate-free; once IsComplete is set
// the record no longer changes until it is reset.
type Record struct {
	Token          string   `json:"token"`
	CollectedWords []string `json:"collectedWords"`
	TotalWords     int      `json:"totalWords"`
	IsComplete     bool     `json:"isComplete"`
}

// clone returns a deep copy so callers never share the word slice.
func (r Record) clone() Record {
	r.CollectedWords = append([]string{}, r.CollectedWords...)
	return r
}

// Has reports whether word has been collected.
func (r Record) Has(word string) bool {
	return words.Contains(r.CollectedWords, word)
}

// Remaining is the number of words still to collect.
func (r Record) Remaining() int {
	if n := r.TotalWords - len(r.CollectedWords); n > 0 {
		return n
	}
	return 0
}

var errBadShape = errors.New("progress record has an unexpected shape")

// wireRecord accepts older payloads: "encodedMessage" was the token field
// and totalWords may be missing.
type wireRecord struct {
	Token          string    `json:"token"`
	EncodedMessage string    `json:"encodedMessage"`
	CollectedWords *[]string `json:"collectedWords"`
	TotalWords     *int      `json:"totalWords"`
	IsComplete     bool      `json:"isComplete"`
}

// decodeRecord parses and validates a stored record.
func decodeRecord(data []byte) (Record, error) {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return Record{}, fmt.Errorf("%w: %v", errBadShape, err)
	}
	if w.CollectedWords == nil {
		return Record{}, fmt.Errorf("%w: collectedWords missing", errBadShape)
	}
	rec := Record{
		Token:          w.Token,
		CollectedWords: words.Distinct(*w.CollectedWords),
		IsComplete:     w.IsComplete,
	}
	if rec.Token == "" {
		rec.Token = w.EncodedMessage
	}
	if w.TotalWords != nil {
		if *w.TotalWords < 0 {
			return Record{}, fmt.Errorf("%w: negative totalWords", errBadShape)
		}
		rec.TotalWords = *w.TotalWords
	}
	return rec, nil
}

func encodeRecord(r Record) ([]byte, error) {
	if r.CollectedWords == nil {
		r.CollectedWords = []string{}
	}
	return json.Marshal(r)
}
