// Package types defines the core data structures shared by the ledger and
// the chronolock registry: accounts, balances, the token metadata
// singleton, transaction events, chronolocks, media objects, and the
// journal entry shape. Both services persist these through pkg/storage and
// exchange them over pkg/api; nothing in this package talks to bbolt or
// HTTP directly.
package types

import (
	"encoding/hex"
	"time"
)

// Principal is an opaque caller identity issued by the request transport.
// It is represented as raw bytes (the IC-style principal encoding) plus a
// cached textual form, since both the byte layout and the text suffix
// matter for classification (see pkg/principal).
type Principal struct {
	Bytes []byte
	Text  string
}

func (p Principal) IsZero() bool { return len(p.Bytes) == 0 && p.Text == "" }

func (p Principal) Equal(o Principal) bool {
	return p.Text == o.Text
}

// AnonymousPrincipal is the zero-value caller identity.
func AnonymousPrincipal() Principal { return Principal{} }

// Subaccount is a 32-byte tag that lets a single owner segregate funds
// across pools. A nil/zero subaccount addresses the owner's default
// account.
type Subaccount [32]byte

// Reserved pool subaccount tags. These MUST NOT change across versions —
// they are baked into any balance snapshot taken before an upgrade.
var (
	SubaccountCommunity   Subaccount
	SubaccountTeamVesting Subaccount
	SubaccountReserve     Subaccount
	SubaccountDappFunds   Subaccount
)

func init() {
	// Reserved tags are "[n;32]" — every byte set to n, not just the first.
	fill := func(s *Subaccount, n byte) {
		for i := range s {
			s[i] = n
		}
	}
	fill(&SubaccountCommunity, 1)
	fill(&SubaccountTeamVesting, 2)
	fill(&SubaccountReserve, 3)
	fill(&SubaccountDappFunds, 4)
}

// PoolName identifies one of the four well-known pool accounts by name.
type PoolName string

const (
	PoolCommunity   PoolName = "community"
	PoolTeamVesting PoolName = "team_vesting"
	PoolReserve     PoolName = "reserve"
	PoolDappFunds   PoolName = "dapp_funds"
)

// SubaccountForPool resolves a pool name to its reserved subaccount tag,
// failing with ErrInvalidAccount for an unknown name.
func SubaccountForPool(name PoolName) (Subaccount, error) {
	switch name {
	case PoolCommunity:
		return SubaccountCommunity, nil
	case PoolTeamVesting:
		return SubaccountTeamVesting, nil
	case PoolReserve:
		return SubaccountReserve, nil
	case PoolDappFunds:
		return SubaccountDappFunds, nil
	default:
		return Subaccount{}, NewError(ErrInvalidAccount, string(name))
	}
}

// Account addresses a balance: an owner principal plus an optional
// subaccount tag. Two accounts are equal iff both fields are equal.
type Account struct {
	Owner      Principal
	Subaccount *Subaccount
}

// Key renders a stable, lexicographically sortable storage key.
func (a Account) Key() string {
	sub := ""
	if a.Subaccount != nil {
		sub = hex.EncodeToString(a.Subaccount[:])
	}
	return a.Owner.Text + "|" + sub
}

func (a Account) Equal(b Account) bool { return a.Key() == b.Key() }

// TokenMetadata is the ledger's singleton configuration and running totals.
type TokenMetadata struct {
	Name             string
	Symbol           string
	Decimals         uint8
	TotalSupply      Amount
	TotalBurned      Amount
	TransferFee      Amount
	VestingStartTime int64 // unix seconds
	VestingDuration  int64 // seconds
}

// VestingUnlockTime is the instant at which the team_vesting pool becomes
// transferable.
func (m TokenMetadata) VestingUnlockTime() time.Time {
	return time.Unix(m.VestingStartTime+m.VestingDuration, 0)
}

// AllowanceKey addresses a pre-authorized spend limit.
type AllowanceKey struct {
	Owner   Account
	Spender Account
}

func (k AllowanceKey) Key() string { return k.Owner.Key() + ">" + k.Spender.Key() }

// Allowance is the stored value for an AllowanceKey.
type Allowance struct {
	Amount    Amount
	ExpiresAt *int64 // unix nanoseconds, nil = no expiry
}

// Expired reports whether the allowance is no longer honored at now.
func (a Allowance) Expired(now time.Time) bool {
	if a.ExpiresAt == nil {
		return false
	}
	return now.UnixNano() > *a.ExpiresAt
}

// TransactionKind classifies a TransactionEvent.
type TransactionKind string

const (
	TxTransfer     TransactionKind = "Transfer"
	TxTransferFrom TransactionKind = "TransferFrom"
	TxApproval     TransactionKind = "Approval"
	TxMint         TransactionKind = "Mint"
)

// TransactionEvent is one entry in the ledger's transaction journal.
type TransactionEvent struct {
	ID        [32]byte
	Timestamp time.Time
	Kind      TransactionKind
	From      Account
	To        *Account
	Spender   *Account
	Amount    Amount
	Fee       *Amount
}

// UserKeyEntry is one wrapped-key entry attached to a chronolock. Tag is
// either the literal "public" or "<principal_text>:<unlock_time_hex>".
type UserKeyEntry struct {
	UserTag    string
	WrappedKey []byte
}

// Chronolock is a time-locked NFT whose payload stays encrypted until
// UnlockTime.
type Chronolock struct {
	ID                string
	Owner             Principal
	Title             string
	UnlockTime        int64 // unix seconds
	CreatedAt         int64 // unix seconds
	UserKeys          []UserKeyEntry
	EncryptedMetadata []byte
}

// MediaObject is a (possibly still-assembling) chunked upload.
type MediaObject struct {
	ID          string
	TotalChunks uint32
	Chunks      map[uint32][]byte
	Finalized   bool
	CreatedAt   time.Time
}

// AdminState is the process-wide authorization singleton.
type AdminState struct {
	Admin        Principal
	Trusted      map[string]bool // keyed by Principal.Text
	BypassActive bool
}

// JournalEntry is one append-only activity-log record.
type JournalEntry struct {
	Key       uint64
	Timestamp time.Time
	EventType string
	Details   string // truncated to 100 chars by the journal package
}
