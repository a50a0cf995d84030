package registry_test

import (
	"testing"
	"time"

	"github.com/crnlicp/chronolock/pkg/idgen"
	"github.com/crnlicp/chronolock/pkg/journal"
	"github.com/crnlicp/chronolock/pkg/registry"
	"github.com/crnlicp/chronolock/pkg/storage"
	"github.com/crnlicp/chronolock/pkg/types"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T) (*registry.Registry, storage.Store, types.Principal) {
	t.Helper()
	store, err := storage.NewBoltStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	admin := types.Principal{Text: "admin"}
	require.NoError(t, store.WithTx(func(tx storage.Tx) error {
		return tx.SetAdminState(types.AdminState{Admin: admin, Trusted: map[string]bool{"alice": true, "bob": true}})
	}))

	j := journal.New(store)
	ids := idgen.New(store, nil)
	return registry.New(store, j, ids, admin), store, admin
}

func TestCreateUpdateTransferBurn(t *testing.T) {
	reg, _, _ := newRegistry(t)
	alice := types.Principal{Text: "alice"}
	bob := types.Principal{Text: "bob"}

	lock, err := reg.Create(registry.CreateArgs{
		Caller: alice, Title: "gift", UnlockTime: 1000,
		UserKeys: []types.UserKeyEntry{{UserTag: "public"}},
		Now:      time.Unix(1, 0),
	})
	require.NoError(t, err)
	require.Equal(t, alice, lock.Owner)

	bal, err := reg.BalanceOf(alice)
	require.NoError(t, err)
	require.Equal(t, uint64(1), bal)

	newTitle := "renamed"
	require.NoError(t, reg.Update(registry.UpdateArgs{Caller: alice, ID: lock.ID, Title: &newTitle}))

	require.NoError(t, reg.Transfer(alice, lock.ID, bob))
	owner, err := reg.OwnerOf(lock.ID)
	require.NoError(t, err)
	require.Equal(t, bob, owner)

	aliceBal, _ := reg.BalanceOf(alice)
	bobBal, _ := reg.BalanceOf(bob)
	require.Equal(t, uint64(0), aliceBal)
	require.Equal(t, uint64(1), bobBal)

	err = reg.Transfer(alice, lock.ID, bob)
	require.Equal(t, types.ErrUnauthorizedCaller, types.KindOf(err))

	require.NoError(t, reg.Burn(bob, lock.ID))
	_, err = reg.Get(lock.ID)
	require.Equal(t, types.ErrTokenNotFound, types.KindOf(err))
}

func TestCreateRejectsOversizedMetadata(t *testing.T) {
	reg, _, _ := newRegistry(t)
	alice := types.Principal{Text: "alice"}

	_, err := reg.Create(registry.CreateArgs{
		Caller: alice, Title: "big", UnlockTime: 1,
		EncryptedMetadata: make([]byte, registry.DefaultMaxMetadataSize+1),
		Now:               time.Unix(1, 0),
	})
	require.Equal(t, types.ErrMetadataTooLarge, types.KindOf(err))
}

func TestAccessibleChronolocksBeforeAndAfterUnlock(t *testing.T) {
	reg, _, _ := newRegistry(t)
	alice := types.Principal{Text: "alice"}
	bob := types.Principal{Text: "bob"}

	unlockTime := int64(2000)
	_, err := reg.Create(registry.CreateArgs{
		Caller: alice, Title: "public-drop", UnlockTime: unlockTime,
		UserKeys: []types.UserKeyEntry{{UserTag: "public"}},
		Now:      time.Unix(1, 0),
	})
	require.NoError(t, err)

	before := time.Unix(unlockTime-1, 0)
	count, err := reg.AccessibleCount(bob, before)
	require.NoError(t, err)
	require.Equal(t, 0, count)

	at := time.Unix(unlockTime, 0)
	count, err = reg.AccessibleCount(bob, at)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestAccessibleChronolockPerUserTagOnlyGrantsThatUser(t *testing.T) {
	reg, _, _ := newRegistry(t)
	alice := types.Principal{Text: "alice"}
	bob := types.Principal{Text: "bob"}
	unlockTime := int64(3000)

	personalTag := bob.Text + ":" + "0000000000000bb8" // 3000 in hex, 16 chars
	_, err := reg.Create(registry.CreateArgs{
		Caller: alice, Title: "bob-only", UnlockTime: unlockTime,
		UserKeys: []types.UserKeyEntry{{UserTag: personalTag}},
		Now:      time.Unix(1, 0),
	})
	require.NoError(t, err)

	at := time.Unix(unlockTime, 0)
	bobCount, err := reg.AccessibleCount(bob, at)
	require.NoError(t, err)
	require.Equal(t, 1, bobCount)

	aliceCount, err := reg.AccessibleCount(alice, at)
	require.NoError(t, err)
	require.Equal(t, 0, aliceCount)
}
