// internal/progress/tracker.go
//
// Progress tracker: the read-modify-write layer over a store.Store.
//
// Responsibilities:
//   - Load, create and update the Record for a token, namespaced by a stable
//     key prefix and the owning player.
//   - Keep storage failures away from the game: unreadable or mis-shaped
//     records count as "no record", failed writes are logged and the record
//     is kept in memory so play continues (last write wins).

package progress

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/scratcher/internal/store"
)

// KeyPrefix namespaces every persisted record.
const KeyPrefix = "valentine_scratcher_"

// ErrStorageUnavailable wraps every read or write failure of the store.
var ErrStorageUnavailable = errors.New("progress storage unavailable")

// Tracker persists progress records for one owner.
type Tracker struct {
	st    store.Store
	owner string

	mu sync.Mutex
	// pending holds records the store failed to persist; nil marks a
	// failed delete.
	pending map[string]*Record
	lastErr error
}

// NewTracker returns a tracker writing to st. owner scopes the keys; empty
// means unscoped.
func NewTracker(st store.Store, owner string) *Tracker {
	return &Tracker{st: st, owner: owner, pending: make(map[string]*Record)}
}

// Key is the storage key of token's record.
func (t *Tracker) Key(token string) string {
	if t.owner == "" {
		return KeyPrefix + token
	}
	return KeyPrefix + t.owner + ":" + token
}

// Err returns the most recent storage failure, or nil if the last storage
// operation succeeded. It is informational only.
func (t *Tracker) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastErr
}

// GetOrCreate loads token's record, creating and persisting an empty one if
// none exists. A stored record whose TotalWords differs is updated to
// totalWords; its collected words are kept.
func (t *Tracker) GetOrCreate(ctx context.Context, token string, totalWords int) Record {
	rec, ok := t.load(ctx, token)
	if !ok {
		rec = Record{Token: token, CollectedWords: []string{}, TotalWords: totalWords}
		t.save(ctx, rec)
		return rec.clone()
	}
	if rec.TotalWords != totalWords {
		log.Info().Str("token", token).Int("from", rec.TotalWords).Int("to", totalWords).Msg("progress total changed")
		rec.TotalWords = totalWords
		t.save(ctx, rec)
	}
	return rec.clone()
}

// AddWord returns rec with word appended and persists it. rec itself is not
// modified. Words already collected, empty words and complete records are
// returned unchanged.
func (t *Tracker) AddWord(ctx context.Context, rec Record, word string) Record {
	next := rec.clone()
	if word == "" || next.IsComplete || next.Has(word) {
		return next
	}
	next.CollectedWords = append(next.CollectedWords, word)
	next.IsComplete = len(next.CollectedWords) >= next.TotalWords
	t.save(ctx, next)
	return next.clone()
}

// Reset deletes token's record. Resetting a missing record is a no-op.
func (t *Tracker) Reset(ctx context.Context, token string) {
	key := t.Key(token)
	err := t.st.Delete(ctx, key)

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.pending[key] = nil
		t.fail(key, "delete", err)
		return
	}
	delete(t.pending, key)
	t.lastErr = nil
}

func (t *Tracker) load(ctx context.Context, token string) (Record, bool) {
	key := t.Key(token)

	t.mu.Lock()
	if p, ok := t.pending[key]; ok {
		t.mu.Unlock()
		if p == nil {
			return Record{}, false
		}
		return p.clone(), true
	}
	t.mu.Unlock()

	data, err := t.st.Load(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return Record{}, false
	}
	if err != nil {
		t.mu.Lock()
		t.fail(key, "load", err)
		t.mu.Unlock()
		return Record{}, false
	}
	rec, err := decodeRecord(data)
	if err == nil && rec.Token != "" && rec.Token != token {
		err = fmt.Errorf("%w: record is for another token", errBadShape)
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("discarding unreadable progress record")
		return Record{}, false
	}
	rec.Token = token
	return rec, true
}

func (t *Tracker) save(ctx context.Context, rec Record) {
	key := t.Key(rec.Token)
	data, err := encodeRecord(rec)
	if err == nil {
		err = t.st.Save(ctx, key, data)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		c := rec.clone()
		t.pending[key] = &c
		t.fail(key, "save", err)
		return
	}
	delete(t.pending, key)
	t.lastErr = nil
}

// fail records and logs a storage failure. t.mu must be held.
func (t *Tracker) fail(key, op string, err error) {
	t.lastErr = fmt.Errorf("%w: %s %s: %v", ErrStorageUnavailable, op, key, err)
	log.Warn().Err(t.lastErr).Msg("progress storage degraded to memory")
}
