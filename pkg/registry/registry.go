/*
Package registry implements the chronolock (time-locked NFT) registry:
create/update/transfer/burn, the owner index kept in lockstep with each
chronolock's owner field, and a minimal ICRC-7-style query surface.
*/
package registry

import (
	"strconv"
	"time"

	"github.com/crnlicp/chronolock/pkg/idgen"
	"github.com/crnlicp/chronolock/pkg/journal"
	"github.com/crnlicp/chronolock/pkg/principal"
	"github.com/crnlicp/chronolock/pkg/storage"
	"github.com/crnlicp/chronolock/pkg/types"
)

// DefaultMaxMetadataSize is the out-of-the-box cap on EncryptedMetadata,
// admin-adjustable via SetMaxMetadataSize.
const DefaultMaxMetadataSize = 1024

// Registry is the chronolock state machine.
type Registry struct {
	store           storage.Store
	journal         *journal.Journal
	ids             *idgen.Generator
	admin           types.Principal
	maxMetadataSize int
}

// New constructs a Registry scoped to admin for admin-only operations
// (SetMaxMetadataSize).
func New(store storage.Store, j *journal.Journal, ids *idgen.Generator, admin types.Principal) *Registry {
	return &Registry{store: store, journal: j, ids: ids, admin: admin, maxMetadataSize: DefaultMaxMetadataSize}
}

// CreateArgs is the argument set for Create.
type CreateArgs struct {
	Caller            types.Principal
	Title             string
	UnlockTime        int64
	UserKeys          []types.UserKeyEntry
	EncryptedMetadata []byte
	Now               time.Time
}

// Create mints a new chronolock owned by the caller (spec.md §4.E.1).
func (r *Registry) Create(args CreateArgs) (types.Chronolock, error) {
	if len(args.EncryptedMetadata) > r.maxMetadataSize {
		return types.Chronolock{}, types.NewError(types.ErrMetadataTooLarge, "")
	}

	id, err := r.ids.UniqueID(args.Now.Unix())
	if err != nil {
		return types.Chronolock{}, err
	}

	lock := types.Chronolock{
		ID:                id,
		Owner:             args.Caller,
		Title:             args.Title,
		UnlockTime:        args.UnlockTime,
		CreatedAt:         args.Now.Unix(),
		UserKeys:          args.UserKeys,
		EncryptedMetadata: args.EncryptedMetadata,
	}

	err = r.store.WithTx(func(tx storage.Tx) error {
		admin, err := tx.GetAdminState()
		if err != nil {
			return err
		}
		if err := principal.RequireAuthenticated(args.Caller, admin); err != nil {
			_ = r.journal.RecordDenial("chronolock_create", args.Caller, string(types.KindOf(err)))
			return err
		}
		if err := tx.PutChronolock(lock); err != nil {
			return err
		}
		ids, err := tx.GetOwnerIndex(args.Caller.Text)
		if err != nil {
			return err
		}
		ids = append(ids, lock.ID)
		return tx.SetOwnerIndex(args.Caller.Text, ids)
	})
	if err != nil {
		return types.Chronolock{}, err
	}

	_ = r.journal.Record("chronolock_create", "id="+lock.ID+" owner="+args.Caller.Text)
	return lock, nil
}

// UpdateArgs is the argument set for Update; nil fields are left unchanged.
type UpdateArgs struct {
	Caller            types.Principal
	ID                string
	Title             *string
	UnlockTime        *int64
	UserKeys          []types.UserKeyEntry // nil = unchanged
	EncryptedMetadata []byte                // nil = unchanged
}

// Update rewrites the provided fields of an existing chronolock. Must be
// called by the owner (spec.md §4.E.1).
func (r *Registry) Update(args UpdateArgs) error {
	err := r.store.WithTx(func(tx storage.Tx) error {
		lock, ok, err := tx.GetChronolock(args.ID)
		if err != nil {
			return err
		}
		if !ok {
			return types.NewError(types.ErrTokenNotFound, args.ID)
		}
		if err := principal.RequireOwner(args.Caller, types.Account{Owner: lock.Owner}); err != nil {
			_ = r.journal.RecordDenial("chronolock_update", args.Caller, string(types.KindOf(err)))
			return err
		}

		if args.Title != nil {
			lock.Title = *args.Title
		}
		if args.UnlockTime != nil {
			lock.UnlockTime = *args.UnlockTime
		}
		if args.UserKeys != nil {
			lock.UserKeys = args.UserKeys
		}
		if args.EncryptedMetadata != nil {
			if len(args.EncryptedMetadata) > r.maxMetadataSize {
				return types.NewError(types.ErrMetadataTooLarge, "")
			}
			lock.EncryptedMetadata = args.EncryptedMetadata
		}
		return tx.PutChronolock(lock)
	})
	if err != nil {
		return err
	}
	_ = r.journal.Record("chronolock_update", "id="+args.ID)
	return nil
}

// Transfer moves a chronolock to a new owner, rewriting the owner index
// for both accounts. A transfer to self is a no-op on the index (spec.md
// §4.E.1).
func (r *Registry) Transfer(caller types.Principal, id string, to types.Principal) error {
	moved := false
	err := r.store.WithTx(func(tx storage.Tx) error {
		lock, ok, err := tx.GetChronolock(id)
		if err != nil {
			return err
		}
		if !ok {
			return types.NewError(types.ErrTokenNotFound, id)
		}
		if err := principal.RequireOwner(caller, types.Account{Owner: lock.Owner}); err != nil {
			_ = r.journal.RecordDenial("chronolock_transfer", caller, string(types.KindOf(err)))
			return err
		}
		if lock.Owner.Equal(to) {
			return nil
		}

		fromIDs, err := tx.GetOwnerIndex(caller.Text)
		if err != nil {
			return err
		}
		fromIDs = removeID(fromIDs, id)
		if err := tx.SetOwnerIndex(caller.Text, fromIDs); err != nil {
			return err
		}

		toIDs, err := tx.GetOwnerIndex(to.Text)
		if err != nil {
			return err
		}
		toIDs = append(toIDs, id)
		if err := tx.SetOwnerIndex(to.Text, toIDs); err != nil {
			return err
		}

		lock.Owner = to
		if err := tx.PutChronolock(lock); err != nil {
			return err
		}
		moved = true
		return nil
	})
	if err != nil || !moved {
		return err
	}
	_ = r.journal.Record("chronolock_transfer", "id="+id+" to="+to.Text)
	return nil
}

// Burn deletes a chronolock. Must be called by the owner.
func (r *Registry) Burn(caller types.Principal, id string) error {
	err := r.store.WithTx(func(tx storage.Tx) error {
		lock, ok, err := tx.GetChronolock(id)
		if err != nil {
			return err
		}
		if !ok {
			return types.NewError(types.ErrTokenNotFound, id)
		}
		if err := principal.RequireOwner(caller, types.Account{Owner: lock.Owner}); err != nil {
			_ = r.journal.RecordDenial("chronolock_burn", caller, string(types.KindOf(err)))
			return err
		}
		ids, err := tx.GetOwnerIndex(caller.Text)
		if err != nil {
			return err
		}
		if err := tx.SetOwnerIndex(caller.Text, removeID(ids, id)); err != nil {
			return err
		}
		return tx.DeleteChronolock(id)
	})
	if err != nil {
		return err
	}
	_ = r.journal.Record("chronolock_burn", "id="+id)
	return nil
}

func removeID(ids []string, target string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

// SetMaxMetadataSize is an admin-only configuration change.
func (r *Registry) SetMaxMetadataSize(caller types.Principal, size int) error {
	if err := principal.RequireAdmin(caller, types.AdminState{Admin: r.admin}); err != nil {
		_ = r.journal.RecordDenial("set_max_metadata_size", caller, string(types.KindOf(err)))
		return err
	}
	r.maxMetadataSize = size
	_ = r.journal.Record("set_max_metadata_size", "size="+strconv.Itoa(size))
	return nil
}

// Get returns one chronolock by id.
func (r *Registry) Get(id string) (types.Chronolock, error) {
	var lock types.Chronolock
	var ok bool
	err := r.store.View(func(tx storage.Tx) error {
		var err error
		lock, ok, err = tx.GetChronolock(id)
		return err
	})
	if err != nil {
		return types.Chronolock{}, err
	}
	if !ok {
		return types.Chronolock{}, types.NewError(types.ErrTokenNotFound, id)
	}
	return lock, nil
}

// OwnerOf returns the owner of a chronolock.
func (r *Registry) OwnerOf(id string) (types.Principal, error) {
	lock, err := r.Get(id)
	if err != nil {
		return types.Principal{}, err
	}
	return lock.Owner, nil
}

// BalanceOf returns the number of chronolocks owned by p (ICRC-7 `balance_of`).
func (r *Registry) BalanceOf(p types.Principal) (uint64, error) {
	var ids []string
	err := r.store.View(func(tx storage.Tx) error {
		var err error
		ids, err = tx.GetOwnerIndex(p.Text)
		return err
	})
	return uint64(len(ids)), err
}

// OwnerOfMany is the ICRC-7 batch counterpart to OwnerOf, restored from
// the original chronolock_canister's ICRC-7 surface.
func (r *Registry) OwnerOfMany(ids []string) ([]types.Principal, error) {
	out := make([]types.Principal, len(ids))
	err := r.store.View(func(tx storage.Tx) error {
		for i, id := range ids {
			lock, ok, err := tx.GetChronolock(id)
			if err != nil {
				return err
			}
			if ok {
				out[i] = lock.Owner
			}
		}
		return nil
	})
	return out, err
}

// BalanceOfMany is the ICRC-7 batch counterpart to BalanceOf.
func (r *Registry) BalanceOfMany(principals []types.Principal) ([]uint64, error) {
	out := make([]uint64, len(principals))
	err := r.store.View(func(tx storage.Tx) error {
		for i, p := range principals {
			ids, err := tx.GetOwnerIndex(p.Text)
			if err != nil {
				return err
			}
			out[i] = uint64(len(ids))
		}
		return nil
	})
	return out, err
}

// TotalSupply is the ICRC-7 `total_supply`: the number of chronolocks
// currently minted.
func (r *Registry) TotalSupply() (uint64, error) {
	var n int
	err := r.store.View(func(tx storage.Tx) error {
		var err error
		n, err = tx.CountChronolocks()
		return err
	})
	return uint64(n), err
}

// Page returns up to limit chronolocks starting at offset, in id order
// (spec.md §4.E.3).
func (r *Registry) Page(offset, limit int) ([]types.Chronolock, error) {
	if limit > 100 {
		limit = 100
	}
	if limit <= 0 {
		return nil, nil
	}
	var out []types.Chronolock
	err := r.store.View(func(tx storage.Tx) error {
		var err error
		out, err = tx.ListChronolocksPage(offset, limit)
		return err
	})
	return out, err
}
