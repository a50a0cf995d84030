package idgen_test

import (
	"testing"

	"github.com/crnlicp/chronolock/pkg/idgen"
	"github.com/crnlicp/chronolock/pkg/storage"
	"github.com/stretchr/testify/require"
)

type fixedRandom struct{ seq [][]byte }

func (f *fixedRandom) RandomBytes(n int) ([]byte, error) {
	b := f.seq[0]
	f.seq = f.seq[1:]
	return b, nil
}

func newStore(t *testing.T) storage.Store {
	t.Helper()
	s, err := storage.NewBoltStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestUniqueIDCounterResetsOnNewTimestamp(t *testing.T) {
	g := idgen.New(newStore(t), nil)

	id1, err := g.UniqueID(1000)
	require.NoError(t, err)
	require.Equal(t, "1000-0", id1)

	id2, err := g.UniqueID(1000)
	require.NoError(t, err)
	require.Equal(t, "1000-1", id2)

	id3, err := g.UniqueID(1001)
	require.NoError(t, err)
	require.Equal(t, "1001-0", id3)
}

func TestReferralCodeRedrawsOnCollision(t *testing.T) {
	store := newStore(t)
	existing := make([]byte, 12)
	for i := range existing {
		existing[i] = 'A'
	}
	require.NoError(t, store.WithTx(func(tx storage.Tx) error {
		return tx.SetReferral("some-account", string(existing))
	}))

	// Zero bytes map to charset[0] ('A'), so the first draw reproduces the
	// stored code and is re-drawn; the second draw maps to "BBBBBBBBBBBB".
	colliding := make([]byte, 12)
	fresh := make([]byte, 12)
	for i := range fresh {
		fresh[i] = 1
	}
	rnd := &fixedRandom{seq: [][]byte{colliding, fresh}}
	g := idgen.New(store, rnd)

	code, err := g.ReferralCode()
	require.NoError(t, err)
	require.NotEqual(t, string(existing), code)
	require.Len(t, code, 12)
}

func TestTransactionIDsDifferAcrossCalls(t *testing.T) {
	g := idgen.New(newStore(t), nil)
	a, err := g.TransactionID(1)
	require.NoError(t, err)
	b, err := g.TransactionID(1)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
