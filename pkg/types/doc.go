/*
Package types defines the core data structures shared by the ledger and the
chronolock registry.

# Core Types

Accounts & Balances:
  - Principal: opaque caller identity
  - Account: (owner, optional subaccount) balance address
  - Amount: checked 128-bit unsigned quantity
  - AllowanceKey / Allowance: pre-authorized spend limits

Ledger:
  - TokenMetadata: singleton name/symbol/decimals/supply/fee/vesting config
  - TransactionEvent: one entry in the ledger's transaction journal

Chronolock Registry:
  - Chronolock: time-locked NFT with owner, unlock time, wrapped user keys
  - MediaObject: chunked upload, finalized once every chunk index is written

Shared:
  - AdminState: admin principal, trusted set, bypass flag
  - JournalEntry: one append-only activity-log record

# Thread Safety

Values in this package carry no synchronization of their own; pkg/storage
and the ledger/registry packages are responsible for serializing access.

# See Also

  - pkg/storage for persistence
  - pkg/principal for caller classification
  - pkg/ledger and pkg/registry for the operations on these types
*/
package types
