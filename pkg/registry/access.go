package registry

import (
	"fmt"
	"time"

	"github.com/crnlicp/chronolock/pkg/storage"
	"github.com/crnlicp/chronolock/pkg/types"
)

// unlockTimeHex renders a unix-seconds unlock time as the 16-lowercase-hex
// form used throughout the derivation-id and user_tag encodings.
func unlockTimeHex(unlockTime int64) string {
	return fmt.Sprintf("%016x", uint64(unlockTime))
}

// Eligible implements spec.md §4.E.2: now >= lock.UnlockTime AND some
// user_keys entry tags either "public" or "<user_text>:<unlock_time_hex>".
func Eligible(user types.Principal, lock types.Chronolock, now time.Time) bool {
	if now.Before(time.Unix(lock.UnlockTime, 0)) {
		return false
	}
	personal := user.Text + ":" + unlockTimeHex(lock.UnlockTime)
	for _, entry := range lock.UserKeys {
		if entry.UserTag == "public" || entry.UserTag == personal {
			return true
		}
	}
	return false
}

// AccessibleCount returns the number of chronolocks user is currently
// eligible to access (spec.md §8 scenario 5).
func (r *Registry) AccessibleCount(user types.Principal, now time.Time) (int, error) {
	count := 0
	err := r.forEachChronolock(func(lock types.Chronolock) {
		if Eligible(user, lock, now) {
			count++
		}
	})
	return count, err
}

// AccessiblePage returns up to limit chronolocks user is currently
// eligible to access, starting at offset within the filtered set, in id
// order (spec.md §4.E.2/§4.E.3 combined: get_user_accessible_chronolocks_paginated).
func (r *Registry) AccessiblePage(user types.Principal, now time.Time, offset, limit int) ([]types.Chronolock, error) {
	if limit > 100 {
		limit = 100
	}
	if limit <= 0 {
		return nil, nil
	}

	var matched []types.Chronolock
	err := r.forEachChronolock(func(lock types.Chronolock) {
		if Eligible(user, lock, now) {
			matched = append(matched, lock)
		}
	})
	if err != nil {
		return nil, err
	}
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

// forEachChronolock walks every chronolock in id order, a fixed-size page
// at a time, so a large registry never requires materializing it all at
// once for a predicate scan.
func (r *Registry) forEachChronolock(fn func(types.Chronolock)) error {
	const batch = 100
	offset := 0
	for {
		var page []types.Chronolock
		err := r.store.View(func(tx storage.Tx) error {
			var err error
			page, err = tx.ListChronolocksPage(offset, batch)
			return err
		})
		if err != nil {
			return err
		}
		if len(page) == 0 {
			return nil
		}
		for _, lock := range page {
			fn(lock)
		}
		offset += len(page)
	}
}
