// Package journal implements the bounded-retention activity log shared by
// the ledger and the chronolock registry (spec.md §4.C). Entries are keyed
// by a 64-bit monotonic counter rather than wall time, so bursts of writes
// within the same clock tick never collide.
package journal

import (
	"time"

	"github.com/crnlicp/chronolock/pkg/storage"
	"github.com/crnlicp/chronolock/pkg/types"
)

// MaxEntries is the hard cap on retained journal entries. Inserting past
// this cap evicts the single oldest entry first.
const MaxEntries = 10000

// MaxDetailLen truncates JournalEntry.Details to keep entries small and
// uniform on disk.
const MaxDetailLen = 100

// Journal appends activity records to a storage.Store and trims the oldest
// entry once the bucket would exceed MaxEntries.
type Journal struct {
	store storage.Store
}

// New wraps a store with journal semantics.
func New(store storage.Store) *Journal {
	return &Journal{store: store}
}

// Record appends one entry, truncating details to MaxDetailLen and
// evicting the oldest entry if the journal is at capacity. It never
// returns an error to callers beyond a storage failure — journal writes on
// failure operations are best-effort per spec.md §7 and must not themselves
// abort the caller's handler.
func (j *Journal) Record(eventType, details string) error {
	if len(details) > MaxDetailLen {
		details = details[:MaxDetailLen]
	}
	n, err := j.store.JournalCount()
	if err != nil {
		return err
	}
	if n >= MaxEntries {
		if err := j.store.JournalEvictOldest(); err != nil {
			return err
		}
	}
	key, err := j.store.NextJournalKey()
	if err != nil {
		return err
	}
	entry := types.JournalEntry{
		Key:       key,
		Timestamp: time.Now(),
		EventType: eventType,
		Details:   details,
	}
	return j.store.JournalInsert(entry)
}

// RecordDenial journals an authorization failure. Denials are journaled
// unconditionally, even though they change no other state.
func (j *Journal) RecordDenial(eventType, caller types.Principal, reason string) error {
	return j.Record(eventType, "denied caller="+caller.Text+" reason="+reason)
}

// Page returns up to limit entries (hard-capped at 100) starting at offset
// in key order, matching the pagination contract of spec.md §4.E.3 reused
// here for journal queries.
func (j *Journal) Page(offset, limit int) ([]types.JournalEntry, error) {
	if limit > 100 {
		limit = 100
	}
	if limit <= 0 {
		return nil, nil
	}
	return j.store.JournalPage(offset, limit)
}

// RangeByTime returns entries whose timestamp falls within [from, to]
// inclusive on both ends.
func (j *Journal) RangeByTime(from, to time.Time) ([]types.JournalEntry, error) {
	return j.store.JournalRangeByTime(from, to)
}
