/*
Package registry implements the chronolock (time-locked NFT) registry of
spec.md §4.E: create/update/transfer/burn, the owner-index invariant
(P5: id ∈ OwnerIndex[p] ⇔ Chronolock[id].owner = p), the access-eligibility
predicate driving paginated discovery, and a minimal ICRC-7-style query
surface including the batch reads restored from the original chronolock
canister's ICRC-7 surface.

# See Also

  - pkg/storage for the Tx methods this package drives
  - pkg/principal for ownership/authentication guards
  - pkg/ibe for the key-derivation client a chronolock's payload is
    encrypted toward
*/
package registry
