/*
Package ledger implements the fungible balance/allowance state machine:
transfers with fee-splitting, approvals and transfer_from, new-account
registration with the referral bijection, the vesting-locked team pool,
and the admin treasury operations.

# Handler shape

Every exported method is one request handler. Each acquires the Ledger's
mutex for the duration of its storage.Tx work, modeling the
single-threaded-per-replica scheduling guarantee: a handler that needs a
value from the randomness oracle (a new transaction id, a referral code)
releases the mutex around that one call and re-validates any state it
depends on before committing, exactly as a suspend/resume boundary would
require.

# Fee split

transfer and transfer_from charge transfer_fee from the sender and split
it 20% burned / 10% to the community pool / 70% to dapp_funds, with the
integer-division remainder retained in the burn share so the three parts
always sum to exactly the fee. See feesplit.go.

# Pool bootstrap

New places the entire configured total_supply under the community pool
except a 10% carve-out to team_vesting, so the vesting gate has a
non-zero balance to exercise from construction.

# See Also

  - pkg/storage for the Tx/Store interfaces this package drives
  - pkg/principal for the authentication/authorization guards
  - pkg/journal for the denial-on-failure audit trail
  - pkg/idgen for the transaction-id and referral-code minting rules
*/
package ledger
