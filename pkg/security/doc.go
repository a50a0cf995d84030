/*
Package security provides the AES-256-GCM encryption primitive used by
the IBE mock service; the ledger and registry do not use it.

SecretsManager wraps a 32-byte key and exposes EncryptSecret/DecryptSecret,
a nonce-prepended AEAD seal/open pair. pkg/ibe/mockservice uses it to
produce the deterministic "encrypted key" blobs returned by its
DeriveKey RPC, playing the role of the real key-derivation service's
transport encryption without implementing actual IBE math.

DeriveServiceMasterKey hashes arbitrary seed material (a configured
passphrase, typically) into a usable 32-byte key, for callers that want
a stable key without managing raw key bytes directly.

# See Also

  - pkg/ibe/mockservice for the consumer of this package
  - pkg/config for how the service master key is configured
*/
package security
