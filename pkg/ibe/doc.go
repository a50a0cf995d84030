/*
Package ibe implements the time-gated key-derivation client of spec.md
§4.G/§6: it binds a caller, an unlock instant, and an optional audience
into a deterministic derivation id and forwards it to an external
threshold key-derivation service. The client never holds or re-derives
key material itself — it only computes the derivation-id binding and
enforces the time gate before making the call.

# See Also

  - pkg/ibe/mockservice for a local ExternalService test double
  - pkg/registry for the chronolock access-eligibility predicate this
    client's derivation ids are designed to unlock
*/
package ibe
