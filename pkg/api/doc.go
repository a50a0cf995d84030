/*
Package api implements the HTTP+JSON transport in front of the ledger,
chronolock registry, media store, and IBE key-derivation client.

The api package is the single external interface for this module: every
operation named in spec.md §4 is a POST or GET route on one chi.Router,
returning a tagged-union JSON body instead of relying on HTTP status codes
to carry the result (spec.md §6/§7).

# Architecture

	┌──────────────────── CLIENT ──────────────────────┐
	│                                                    │
	│  HTTP + JSON, optional X-Principal header          │
	└─────────────────────┬──────────────────────────────┘
	                      │
	┌─────────────────────▼──── chronolock process ─────┐
	│                                                      │
	│  ┌────────────────────────────────────────────┐    │
	│  │           chi.Router (pkg/api)              │    │
	│  │  - Recoverer, PrincipalMiddleware            │    │
	│  │  - requestMetricsMiddleware                  │    │
	│  │  - one route per named operation             │    │
	│  └──────────────────┬───────────────────────────┘    │
	│                     │                                 │
	│     ┌───────────────┼────────────────┬─────────────┐ │
	│     ▼                ▼                ▼             ▼ │
	│  pkg/ledger      pkg/registry      pkg/media     pkg/ibe │
	└──────────────────────────────────────────────────────┘

# Response envelope

Every handler writes one of:

	{"ok": <value>}
	{"err": {"kind": "InsufficientBalance", "detail": "..."}}

kind is always one of the types.ErrorKind values from spec.md §7; the HTTP
status (errStatus) is a convenience for clients that want coarse-grained
branching, but kind is authoritative. GET /media/{id} is the one
exception: it is a raw-bytes endpoint (200/404/405, Content-Type:
application/octet-stream) per spec.md §4.F/§6, not a JSON envelope.

# Routes

Ledger (pkg/ledger.Ledger):

	POST /register_user, /claim_referral, /transfer, /approve, /transfer_from
	GET  /balance_of, /metadata
	POST /admin_mint, /admin_transfer, /set_transfer_fee, /set_admin_bypass
	POST /add_trusted_principal, /remove_trusted_principal
	POST /admin_reset_stable_storage

Chronolock registry (pkg/registry.Registry):

	POST /chronolock_create, /chronolock_update, /chronolock_transfer, /chronolock_burn
	GET  /chronolock_get, /chronolock_owner_of, /chronolock_balance_of
	POST /chronolock_owner_of_many, /chronolock_balance_of_many
	GET  /chronolock_total_supply, /chronolock_page
	POST /set_max_metadata_size
	GET  /user_accessible_chronolocks_count, /user_accessible_chronolocks_page

Media store (pkg/media.Store):

	POST /media_start, /media_put_chunk, /media_finish
	GET  /media_get_chunk
	GET  /media/{id}   (raw bytes, spec.md §4.F HTTP surface)

IBE key-derivation client (pkg/ibe.Client):

	POST /ibe_public_key, /get_time_decryption_key, /get_user_time_decryption_key

# Caller resolution

PrincipalMiddleware (interceptor.go) resolves the caller principal for
every request from the X-Principal header, defaulting to the anonymous
principal when absent, and stores it on the request context. Handlers
read it back with CallerFromContext rather than touching the header
directly — this is the one place spec.md §4.B's "request transport
resolves the caller" collaborator boundary is realized. A production
deployment terminating mTLS upstream would populate this header from the
verified client certificate's identity; it is accepted directly here for
test harnesses and reverse-proxy setups.

# Usage

	srv := api.NewServer(l, reg, mediaStore, ibeClient)
	if err := srv.Start(":8080"); err != nil {
	    log.Fatal(err)
	}

# Wire encoding conventions

Amount is wire-encoded as a base-10 decimal string (amountFromString),
never as a JSON number, since it is a 128-bit value outside float64's
exact range. []byte fields (wrapped keys, transport public keys,
encrypted metadata) use encoding/json's built-in base64 encoding for
[]byte, so no custom marshaling is needed. A Principal is wire-encoded as
its plain text form; accountFromWire/principalFromText/subaccountFromHex
centralize every conversion so the wire shape is defined in exactly one
place.

# Integration Points

This package integrates with:

  - pkg/ledger, pkg/registry, pkg/media, pkg/ibe: the four domain services
  - pkg/principal: CallerFromContext feeds every authorization check
  - pkg/metrics: chronolock_api_requests_total / _request_duration_seconds,
    plus per-domain counters (chronolock_ledger_transfers_total,
    chronolock_registry_operations_total, chronolock_ibe_derivation_requests_total)
  - HealthServer (health.go): separate /health, /ready, /metrics mux, run
    on its own listener so liveness checks don't share a port with the
    domain API

# See Also

  - pkg/ledger, pkg/registry, pkg/media, pkg/ibe for the wrapped services
  - pkg/metrics for the metrics this package feeds
*/
package api
