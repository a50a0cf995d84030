package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/crnlicp/chronolock/pkg/types"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketBalances       = []byte("balances")
	bucketAllowances     = []byte("allowances")
	bucketReferralC2A    = []byte("referral_code_to_account")
	bucketReferralA2C    = []byte("referral_account_to_code")
	bucketClaimed        = []byte("claimed_referrals")
	bucketTxEvents       = []byte("tx_events")
	bucketChronolocks    = []byte("chronolocks")
	bucketOwnerIndex     = []byte("owner_index")
	bucketMediaObjects   = []byte("media_objects")
	bucketJournal        = []byte("journal")
	bucketCells          = []byte("cells")

	cellMetadata   = []byte("metadata")
	cellAdminState = []byte("admin_state")
	cellIDCounter  = []byte("id_counter")
	cellJournalKey = []byte("journal_next_key")
)

// BoltStore implements Store using bbolt, one bucket per logical map plus
// a "cells" bucket for the scalar singletons (metadata, admin state, id
// counter, journal key cursor).
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (creating if absent) the database file under dataDir.
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "chronolock.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		buckets := [][]byte{
			bucketBalances, bucketAllowances, bucketReferralC2A, bucketReferralA2C,
			bucketClaimed, bucketTxEvents, bucketChronolocks, bucketOwnerIndex,
			bucketMediaObjects, bucketJournal, bucketCells,
		}
		for _, b := range buckets {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error { return s.db.Close() }

// ResetAll wipes every bucket and recreates them empty, for
// admin_reset_stable_storage.
func (s *BoltStore) ResetAll() error {
	buckets := [][]byte{
		bucketBalances, bucketAllowances, bucketReferralC2A, bucketReferralA2C,
		bucketClaimed, bucketTxEvents, bucketChronolocks, bucketOwnerIndex,
		bucketMediaObjects, bucketJournal, bucketCells,
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, b := range buckets {
			if err := tx.DeleteBucket(b); err != nil && err != bolt.ErrBucketNotFound {
				return err
			}
			if _, err := tx.CreateBucket(b); err != nil {
				return err
			}
		}
		return nil
	})
}

// boltTx adapts one *bolt.Tx to the Tx interface for the duration of a
// WithTx/View call.
type boltTx struct {
	tx *bolt.Tx
}

func (s *BoltStore) WithTx(fn func(Tx) error) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return fn(&boltTx{tx: tx})
	})
}

func (s *BoltStore) View(fn func(Tx) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		return fn(&boltTx{tx: tx})
	})
}

func putJSON(b *bolt.Bucket, key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Put(key, data)
}

func getJSON(b *bolt.Bucket, key []byte, v interface{}) (bool, error) {
	data := b.Get(key)
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	return true, nil
}

// --- Balances ---

func (t *boltTx) GetBalance(accountKey string) (types.Amount, bool, error) {
	b := t.tx.Bucket(bucketBalances)
	var amt types.Amount
	ok, err := getJSON(b, []byte(accountKey), &amt)
	if !ok || err != nil {
		return types.ZeroAmount(), ok, err
	}
	return amt, true, nil
}

func (t *boltTx) SetBalance(accountKey string, amount types.Amount) error {
	b := t.tx.Bucket(bucketBalances)
	return putJSON(b, []byte(accountKey), amount)
}

func (t *boltTx) AccountExists(accountKey string) (bool, error) {
	b := t.tx.Bucket(bucketBalances)
	return b.Get([]byte(accountKey)) != nil, nil
}

// --- Allowances ---

func (t *boltTx) GetAllowance(key string) (types.Allowance, bool, error) {
	b := t.tx.Bucket(bucketAllowances)
	var a types.Allowance
	ok, err := getJSON(b, []byte(key), &a)
	return a, ok, err
}

func (t *boltTx) SetAllowance(key string, a types.Allowance) error {
	b := t.tx.Bucket(bucketAllowances)
	return putJSON(b, []byte(key), a)
}

func (t *boltTx) DeleteAllowance(key string) error {
	b := t.tx.Bucket(bucketAllowances)
	return b.Delete([]byte(key))
}

// --- Metadata / admin cells ---

func (t *boltTx) GetMetadata() (types.TokenMetadata, error) {
	b := t.tx.Bucket(bucketCells)
	var m types.TokenMetadata
	if _, err := getJSON(b, cellMetadata, &m); err != nil {
		return types.TokenMetadata{}, err
	}
	return m, nil
}

func (t *boltTx) SetMetadata(m types.TokenMetadata) error {
	b := t.tx.Bucket(bucketCells)
	return putJSON(b, cellMetadata, m)
}

func (t *boltTx) GetAdminState() (types.AdminState, error) {
	b := t.tx.Bucket(bucketCells)
	var a types.AdminState
	if _, err := getJSON(b, cellAdminState, &a); err != nil {
		return types.AdminState{}, err
	}
	if a.Trusted == nil {
		a.Trusted = map[string]bool{}
	}
	return a, nil
}

func (t *boltTx) SetAdminState(a types.AdminState) error {
	b := t.tx.Bucket(bucketCells)
	return putJSON(b, cellAdminState, a)
}

// --- Referrals ---

func (t *boltTx) ReferralAccountForCode(code string) (string, bool, error) {
	b := t.tx.Bucket(bucketReferralC2A)
	v := b.Get([]byte(code))
	if v == nil {
		return "", false, nil
	}
	return string(v), true, nil
}

func (t *boltTx) ReferralCodeForAccount(accountKey string) (string, bool, error) {
	b := t.tx.Bucket(bucketReferralA2C)
	v := b.Get([]byte(accountKey))
	if v == nil {
		return "", false, nil
	}
	return string(v), true, nil
}

func (t *boltTx) ReferralCodeExists(code string) (bool, error) {
	b := t.tx.Bucket(bucketReferralC2A)
	return b.Get([]byte(code)) != nil, nil
}

func (t *boltTx) SetReferral(accountKey, code string) error {
	if err := t.tx.Bucket(bucketReferralC2A).Put([]byte(code), []byte(accountKey)); err != nil {
		return err
	}
	return t.tx.Bucket(bucketReferralA2C).Put([]byte(accountKey), []byte(code))
}

func (t *boltTx) HasClaimedReferral(accountKey string) (bool, error) {
	b := t.tx.Bucket(bucketClaimed)
	return b.Get([]byte(accountKey)) != nil, nil
}

func (t *boltTx) MarkClaimedReferral(accountKey string) error {
	b := t.tx.Bucket(bucketClaimed)
	return b.Put([]byte(accountKey), []byte{1})
}

// --- Transaction events ---

func (t *boltTx) InsertTxEvent(ev types.TransactionEvent) error {
	b := t.tx.Bucket(bucketTxEvents)
	return putJSON(b, ev.ID[:], ev)
}

// --- Chronolocks ---

func (t *boltTx) GetChronolock(id string) (types.Chronolock, bool, error) {
	b := t.tx.Bucket(bucketChronolocks)
	var c types.Chronolock
	ok, err := getJSON(b, []byte(id), &c)
	return c, ok, err
}

func (t *boltTx) PutChronolock(c types.Chronolock) error {
	b := t.tx.Bucket(bucketChronolocks)
	return putJSON(b, []byte(c.ID), c)
}

func (t *boltTx) DeleteChronolock(id string) error {
	b := t.tx.Bucket(bucketChronolocks)
	return b.Delete([]byte(id))
}

func (t *boltTx) CountChronolocks() (int, error) {
	b := t.tx.Bucket(bucketChronolocks)
	return b.Stats().KeyN, nil
}

// ListChronolocksPage walks the bucket in key byte order and returns the
// offset..offset+limit window. Ids are "<unix-seconds>-<counter>" compared
// as strings, so this is not strict creation order (e.g. "T-10" sorts
// before "T-2").
func (t *boltTx) ListChronolocksPage(offset, limit int) ([]types.Chronolock, error) {
	if limit <= 0 {
		return nil, nil
	}
	b := t.tx.Bucket(bucketChronolocks)
	var out []types.Chronolock
	i := 0
	c := b.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		if i < offset {
			i++
			continue
		}
		if len(out) >= limit {
			break
		}
		var lock types.Chronolock
		if err := json.Unmarshal(v, &lock); err != nil {
			return nil, err
		}
		out = append(out, lock)
		i++
	}
	return out, nil
}

// --- Owner index ---

func (t *boltTx) GetOwnerIndex(ownerText string) ([]string, error) {
	b := t.tx.Bucket(bucketOwnerIndex)
	var ids []string
	if _, err := getJSON(b, []byte(ownerText), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (t *boltTx) SetOwnerIndex(ownerText string, ids []string) error {
	b := t.tx.Bucket(bucketOwnerIndex)
	if len(ids) == 0 {
		return b.Delete([]byte(ownerText))
	}
	return putJSON(b, []byte(ownerText), ids)
}

// --- Media objects ---

func (t *boltTx) GetMediaObject(id string) (types.MediaObject, bool, error) {
	b := t.tx.Bucket(bucketMediaObjects)
	var m types.MediaObject
	ok, err := getJSON(b, []byte(id), &m)
	return m, ok, err
}

func (t *boltTx) PutMediaObject(m types.MediaObject) error {
	b := t.tx.Bucket(bucketMediaObjects)
	return putJSON(b, []byte(m.ID), m)
}

func (t *boltTx) DeleteMediaObject(id string) error {
	b := t.tx.Bucket(bucketMediaObjects)
	return b.Delete([]byte(id))
}

func (t *boltTx) ListMediaObjects() ([]types.MediaObject, error) {
	b := t.tx.Bucket(bucketMediaObjects)
	var out []types.MediaObject
	err := b.ForEach(func(k, v []byte) error {
		var m types.MediaObject
		if err := json.Unmarshal(v, &m); err != nil {
			return err
		}
		out = append(out, m)
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

// --- ID counter ---

func (t *boltTx) GetIDCounter() (int64, uint64, error) {
	b := t.tx.Bucket(bucketCells)
	data := b.Get(cellIDCounter)
	if data == nil || len(data) != 16 {
		return 0, 0, nil
	}
	ts := int64(binary.BigEndian.Uint64(data[:8]))
	ctr := binary.BigEndian.Uint64(data[8:])
	return ts, ctr, nil
}

func (t *boltTx) SetIDCounter(timestamp int64, counter uint64) error {
	b := t.tx.Bucket(bucketCells)
	buf := make([]byte, 16)
	binary.BigEndian.PutUint64(buf[:8], uint64(timestamp))
	binary.BigEndian.PutUint64(buf[8:], counter)
	return b.Put(cellIDCounter, buf)
}

// --- Journal (outside WithTx per spec.md §5) ---

func journalKeyBytes(k uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, k)
	return buf
}

func (s *BoltStore) NextJournalKey() (uint64, error) {
	var next uint64
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCells)
		data := b.Get(cellJournalKey)
		var cur uint64
		if len(data) == 8 {
			cur = binary.BigEndian.Uint64(data)
		}
		next = cur + 1
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, next)
		return b.Put(cellJournalKey, buf)
	})
	return next, err
}

func (s *BoltStore) JournalCount() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketJournal).Stats().KeyN
		return nil
	})
	return n, err
}

func (s *BoltStore) JournalEvictOldest() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketJournal)
		c := b.Cursor()
		k, _ := c.First()
		if k == nil {
			return nil
		}
		return b.Delete(k)
	})
}

func (s *BoltStore) JournalInsert(entry types.JournalEntry) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketJournal)
		return putJSON(b, journalKeyBytes(entry.Key), entry)
	})
}

func (s *BoltStore) JournalPage(offset, limit int) ([]types.JournalEntry, error) {
	if limit > 100 {
		limit = 100
	}
	if limit <= 0 {
		return nil, nil
	}
	var out []types.JournalEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketJournal)
		c := b.Cursor()
		i := 0
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if i < offset {
				i++
				continue
			}
			if len(out) >= limit {
				break
			}
			var e types.JournalEntry
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}
			out = append(out, e)
			i++
		}
		return nil
	})
	return out, err
}

func (s *BoltStore) JournalRangeByTime(from, to time.Time) ([]types.JournalEntry, error) {
	var out []types.JournalEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketJournal)
		return b.ForEach(func(k, v []byte) error {
			var e types.JournalEntry
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}
			if (e.Timestamp.Equal(from) || e.Timestamp.After(from)) &&
				(e.Timestamp.Equal(to) || e.Timestamp.Before(to)) {
				out = append(out, e)
			}
			return nil
		})
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, err
}
