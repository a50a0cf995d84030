package storage_test

import (
	"testing"
	"time"

	"github.com/crnlicp/chronolock/pkg/storage"
	"github.com/crnlicp/chronolock/pkg/types"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *storage.BoltStore {
	t.Helper()
	dir := t.TempDir()
	s, err := storage.NewBoltStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBalanceRoundTrip(t *testing.T) {
	s := newTestStore(t)

	err := s.WithTx(func(tx storage.Tx) error {
		return tx.SetBalance("acct-1", types.NewAmount(500))
	})
	require.NoError(t, err)

	err = s.View(func(tx storage.Tx) error {
		amt, ok, err := tx.GetBalance("acct-1")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "500", amt.String())
		return nil
	})
	require.NoError(t, err)
}

func TestChronolockPaginationOrderAndCap(t *testing.T) {
	s := newTestStore(t)

	err := s.WithTx(func(tx storage.Tx) error {
		for _, id := range []string{"1700000000-0", "1700000000-1", "1700000001-0"} {
			if err := tx.PutChronolock(types.Chronolock{ID: id}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	var page []types.Chronolock
	err = s.View(func(tx storage.Tx) error {
		var err error
		page, err = tx.ListChronolocksPage(1, 2)
		return err
	})
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, "1700000000-1", page[0].ID)
	require.Equal(t, "1700000001-0", page[1].ID)
}

func TestJournalEvictOldestRemovesEntry(t *testing.T) {
	s := newTestStore(t)

	key, err := s.NextJournalKey()
	require.NoError(t, err)
	require.Equal(t, uint64(1), key)

	require.NoError(t, s.JournalInsert(types.JournalEntry{Key: key, Timestamp: time.Now(), EventType: "test"}))

	n, err := s.JournalCount()
	require.NoError(t, err)
	require.Equal(t, 1, n)

	require.NoError(t, s.JournalEvictOldest())
	n, err = s.JournalCount()
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestResetAllClearsEverything(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.WithTx(func(tx storage.Tx) error {
		return tx.SetBalance("acct-1", types.NewAmount(10))
	}))
	require.NoError(t, s.ResetAll())
	err := s.View(func(tx storage.Tx) error {
		_, ok, err := tx.GetBalance("acct-1")
		require.NoError(t, err)
		require.False(t, ok)
		return nil
	})
	require.NoError(t, err)
}
