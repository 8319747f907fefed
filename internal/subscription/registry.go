// Package subscription tracks which match each recipient follows and the last
// state they were told about.
package subscription

import (
	"errors"
	"sort"
	"sync"
)

var ErrEmptyRecipient = errors.New("recipient is empty")

// Entry is a point-in-time copy of one recipient's subscription.
type Entry struct {
	Recipient       string `json:"recipient"`
	MatchID         string `json:"matchId"`
	LastFingerprint string `json:"lastFingerprint,omitempty"`
	Misses          int    `json:"misses,omitempty"`
}

type record struct {
	matchID     string
	fingerprint string
	hasPrint    bool
	misses      int
}

// Registry is an in-memory recipient → subscription map. Each recipient follows
// at most one match. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	records map[string]*record
}

func New() *Registry {
	return &Registry{records: make(map[string]*record)}
}

// Subscribe points recipient at matchID, replacing any prior subscription.
// Switching to a different match forgets the stored fingerprint so the first
// observation of the new match is always delivered.
func (r *Registry) Subscribe(recipient, matchID string) error {
	if recipient == "" {
		return ErrEmptyRecipient
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[recipient]; ok && rec.matchID == matchID {
		return nil
	}
	r.records[recipient] = &record{matchID: matchID}
	return nil
}

// Unsubscribe removes the subscription and its fingerprint. It reports whether one existed.
func (r *Registry) Unsubscribe(recipient string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[recipient]; !ok {
		return false
	}
	delete(r.records, recipient)
	return true
}

// UnsubscribeIf removes the subscription only while it still points at matchID.
func (r *Registry) UnsubscribeIf(recipient, matchID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[recipient]
	if !ok || rec.matchID != matchID {
		return false
	}
	delete(r.records, recipient)
	return true
}

func (r *Registry) Get(recipient string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[recipient]
	if !ok {
		return "", false
	}
	return rec.matchID, true
}

// RecordFingerprint stores fp for a subscribed recipient. It is a no-op otherwise.
func (r *Registry) RecordFingerprint(recipient, fp string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[recipient]; ok {
		rec.fingerprint = fp
		rec.hasPrint = true
	}
}

func (r *Registry) LastFingerprint(recipient string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[recipient]
	if !ok || !rec.hasPrint {
		return "", false
	}
	return rec.fingerprint, true
}

// Advance stores fp and returns true when recipient still follows matchID and
// fp differs from the last stored fingerprint. It also clears the miss counter.
func (r *Registry) Advance(recipient, matchID, fp string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[recipient]
	if !ok || rec.matchID != matchID {
		return false
	}
	rec.misses = 0
	if rec.hasPrint && rec.fingerprint == fp {
		return false
	}
	rec.fingerprint = fp
	rec.hasPrint = true
	return true
}

// MarkMissed counts one more tick in which matchID was not live and returns the total.
// It returns 0 when recipient no longer follows matchID.
func (r *Registry) MarkMissed(recipient, matchID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[recipient]
	if !ok || rec.matchID != matchID {
		return 0
	}
	rec.misses++
	return rec.misses
}

// Snapshot copies all subscriptions, sorted by recipient.
func (r *Registry) Snapshot() []Entry {
	r.mu.RLock()
	out := make([]Entry, 0, len(r.records))
	for recipient, rec := range r.records {
		out = append(out, Entry{
			Recipient:       recipient,
			MatchID:         rec.matchID,
			LastFingerprint: rec.fingerprint,
			Misses:          rec.misses,
		})
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Recipient < out[j].Recipient })
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
