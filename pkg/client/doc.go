/*
Package client provides a Go client library for the chronolock HTTP API.

The client package wraps pkg/api's JSON routes with a convenient,
idiomatic Go interface: connection reuse, caller identity, response
envelope decoding, and typed methods for a subset of the routes:
register_user, claim_referral, transfer, balance_of and metadata;
chronolock create, get, transfer, burn and page; media start, put_chunk,
finish and get; the IBE public key and time-decryption key. There are no
methods for approve, transfer_from, the admin operations, chronolock
update, owner_of or accessible pages, user-key derivation, or
media_get_chunk.

# Architecture

	┌──────────────────── APPLICATION CODE ──────────────────────┐
	│                                                              │
	│  import "github.com/crnlicp/chronolock/pkg/client"          │
	│                                                              │
	│  c := client.NewClient("http://localhost:8080", "alice")    │
	│  balance, err := c.BalanceOf(ctx, "alice", "")               │
	│                                                              │
	└──────────────────┬───────────────────────────────────────┘
	                   │
	┌──────────────────▼──── pkg/client ─────────────────────────┐
	│                                                              │
	│  ┌──────────────────────────────────────────────┐          │
	│  │           Client Wrapper                      │          │
	│  │  - Typed per-operation methods                │          │
	│  │  - Envelope decoding -> types.Error            │          │
	│  │  - X-Principal header injection                │          │
	│  └──────────────────┬───────────────────────────┘          │
	│                     │                                        │
	│  ┌──────────────────▼───────────────────────────┐          │
	│  │         net/http.Client                       │          │
	│  │  - JSON request/response bodies                │          │
	│  │  - Connection reuse                            │          │
	│  └──────────────────┬───────────────────────────┘          │
	└─────────────────────┼────────────────────────────────────┘
	                      │ HTTP
	                      ▼
	                pkg/api.Server

# Usage

Creating a client:

	c := client.NewClient("http://localhost:8080", "alice-principal-text")

Registering and transferring:

	welcome, code, err := c.RegisterUser(ctx, "")
	if err != nil {
	    log.Fatal(err)
	}
	accepted, err := c.Transfer(ctx, "bob-principal-text", "", "1000000")

Creating and reading a chronolock:

	lock, err := c.ChronolockCreate(ctx, "capsule", unlockTime.Unix(), encryptedBlob)
	got, err := c.ChronolockGet(ctx, lock["id"].(string))

Uploading media in chunks:

	id, err := c.MediaStart(ctx, uint32(len(chunks)))
	for i, chunk := range chunks {
	    err = c.MediaPutChunk(ctx, id, uint32(i), chunk)
	}
	err = c.MediaFinish(ctx, id)
	data, err := c.MediaGet(ctx, id)

Requesting a time-locked decryption key:

	key, err := c.GetTimeDecryptionKey(ctx, unlockTimeHex, transportPubKey)

# Error Handling

Every method returns a *types.Error carrying the server's ErrorKind when
the response envelope has an "err" field:

	_, err := c.Transfer(ctx, to, "", amount)
	if err != nil {
	    switch types.KindOf(err) {
	    case types.ErrInsufficientBalance:
	        // not enough funds
	    case types.ErrNotAuthenticated:
	        // caller has no principal set
	    default:
	        log.Fatal(err)
	    }
	}

Network and decoding failures (connection refused, malformed JSON) are
returned as plain wrapped errors, not *types.Error, so a type assertion
distinguishes domain rejections from transport failures.

# Caller Identity

WithPrincipal returns a client bound to a different caller while sharing
the same underlying http.Client and connection pool, useful for test
harnesses that exercise several principals against one server:

	admin := client.NewClient(addr, "admin-principal")
	alice := admin.WithPrincipal("alice-principal")

# Thread Safety

The client is safe for concurrent use; it holds no mutable state besides
the configured base URL and principal, both set once at construction (or
at WithPrincipal) and never mutated afterward.

# Integration Points

This package integrates with:

  - pkg/api: consumes its JSON routes and envelope convention
  - pkg/types: Error/ErrorKind for structured failures

# See Also

  - pkg/api for server-side route definitions
  - pkg/types for the Amount/Error wire conventions this client encodes against
*/
package client
