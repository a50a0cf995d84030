// Package storage provides the bbolt-backed persistent store shared by the
// ledger and the chronolock registry: named ordered maps plus a handful of
// scalar cells, with an atomic batch boundary per request (spec.md §4.A).
package storage

import (
	"time"

	"github.com/crnlicp/chronolock/pkg/types"
)

// Tx is the set of reads/writes available inside one atomic WithTx call.
// Every ledger/registry operation that touches more than one logical map
// does so through a single Tx so that either all of its writes persist or
// none do.
type Tx interface {
	// Balances (keyed by Account.Key()).
	GetBalance(accountKey string) (types.Amount, bool, error)
	SetBalance(accountKey string, amount types.Amount) error
	AccountExists(accountKey string) (bool, error)

	// Allowances (keyed by AllowanceKey.Key()).
	GetAllowance(key string) (types.Allowance, bool, error)
	SetAllowance(key string, a types.Allowance) error
	DeleteAllowance(key string) error

	// Token metadata singleton.
	GetMetadata() (types.TokenMetadata, error)
	SetMetadata(types.TokenMetadata) error

	// Admin singleton.
	GetAdminState() (types.AdminState, error)
	SetAdminState(types.AdminState) error

	// Referral bijection + claim set.
	ReferralAccountForCode(code string) (accountKey string, ok bool, err error)
	ReferralCodeForAccount(accountKey string) (code string, ok bool, err error)
	ReferralCodeExists(code string) (bool, error)
	SetReferral(accountKey, code string) error
	HasClaimedReferral(accountKey string) (bool, error)
	MarkClaimedReferral(accountKey string) error

	// Transaction journal (ledger activity, distinct from the audit
	// Journal in pkg/journal).
	InsertTxEvent(types.TransactionEvent) error

	// Chronolocks.
	GetChronolock(id string) (types.Chronolock, bool, error)
	PutChronolock(types.Chronolock) error
	DeleteChronolock(id string) error
	ListChronolocksPage(offset, limit int) ([]types.Chronolock, error)
	CountChronolocks() (int, error)

	// Owner index: principal text -> ordered chronolock ids.
	GetOwnerIndex(ownerText string) ([]string, error)
	SetOwnerIndex(ownerText string, ids []string) error

	// Media objects (chunked uploads).
	GetMediaObject(id string) (types.MediaObject, bool, error)
	PutMediaObject(types.MediaObject) error
	DeleteMediaObject(id string) error
	ListMediaObjects() ([]types.MediaObject, error)

	// ID generation counters: the (timestamp, counter) pair behind
	// pkg/idgen's unique-id scheme.
	GetIDCounter() (timestamp int64, counter uint64, err error)
	SetIDCounter(timestamp int64, counter uint64) error
}

// Store is the top-level persistent store. WithTx/View are the atomic
// batch boundaries; the Journal* methods are intentionally outside that
// boundary (see pkg/journal) since spec.md §5 allows the journal insert to
// be lost independently of the state it describes.
type Store interface {
	WithTx(fn func(Tx) error) error
	View(fn func(Tx) error) error

	NextJournalKey() (uint64, error)
	JournalCount() (int, error)
	JournalEvictOldest() error
	JournalInsert(types.JournalEntry) error
	JournalPage(offset, limit int) ([]types.JournalEntry, error)
	JournalRangeByTime(from, to time.Time) ([]types.JournalEntry, error)

	// ResetAll wipes every bucket for admin_reset_stable_storage.
	ResetAll() error

	Close() error
}
