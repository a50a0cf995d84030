/*
Package storage provides bbolt-backed persistence for the ledger and
chronolock registry: balances, allowances, the referral bijection, the
transaction event log, chronolocks, the owner index, media objects, and
the admin/metadata/id-counter singleton cells.

# Architecture

One bbolt database file per process, one bucket per logical map, plus a
"cells" bucket for scalar singletons:

	balances                  Account.Key() -> Amount
	allowances                AllowanceKey.Key() -> Allowance
	referral_code_to_account  code -> Account.Key()
	referral_account_to_code  Account.Key() -> code
	claimed_referrals         Account.Key() -> marker
	tx_events                 TransactionEvent.ID -> TransactionEvent
	chronolocks               Chronolock.ID -> Chronolock
	owner_index               Principal.Text -> []Chronolock.ID
	media_objects             MediaObject.ID -> MediaObject
	journal                   monotonic counter -> JournalEntry
	cells                     metadata | admin_state | id_counter | journal_next_key

# Transaction model

WithTx wraps a bbolt write transaction; View wraps a read transaction.
Every ledger/registry operation that mutates more than one bucket does so
inside a single WithTx call, so either all of its writes commit or none
do — bbolt's own atomicity is the "atomic batch boundary per request"
required by spec.md §4.A. Journal inserts are deliberately outside that
boundary (see pkg/journal and spec.md §5: a lost journal entry after a
crash between state commit and journal insert is acceptable, the balance
change is authoritative).

Iteration uses bbolt cursors, which walk keys in byte order — satisfying
the "iteration must be in key order" and "range queries inclusive on both
ends" requirements without extra sorting, except where a map value is a
slice (owner index, referral bijection) that does not need ordered scans.

# See Also

  - pkg/types for the entity definitions persisted here
  - pkg/journal for the append-only activity log built on top of this
    package's Journal* methods
  - pkg/ledger and pkg/registry for the operations that drive WithTx
*/
package storage
