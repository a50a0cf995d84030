/*
Package metrics provides Prometheus metrics collection and exposition for
the chronolock ledger, registry, media, and key-derivation services.

The metrics package defines and registers every metric using the
Prometheus client library, providing observability into supply/burn
state, chronolock counts, upload activity, derivation-request latency,
and API throughput. Metrics are exposed via an HTTP endpoint for scraping
by Prometheus servers.

# Architecture

	┌──────────────────── METRICS SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │          Prometheus Registry                │          │
	│  │  - Global DefaultRegistry                   │          │
	│  │  - MustRegister at package init             │          │
	│  │  - Automatic Go runtime metrics             │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │              Metric Types                   │          │
	│  │                                              │          │
	│  │  Gauge: Instant values (total supply)       │          │
	│  │  Counter: Monotonic increases (transfers)   │          │
	│  │  Histogram: Distributions (latency)         │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Metric Categories                 │          │
	│  │                                              │          │
	│  │  Ledger: Supply, burn, transfers, referrals │          │
	│  │  Registry: Chronolock count, operations     │          │
	│  │  Media: Active uploads, bytes stored        │          │
	│  │  IBE: Derivation requests, duration         │          │
	│  │  API: Request count, duration               │          │
	│  │  Journal: Entries, evictions                │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │          HTTP Metrics Endpoint              │          │
	│  │  - Path: /metrics                           │          │
	│  │  - Format: Prometheus text exposition       │          │
	│  │  - Handler: promhttp.Handler()              │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Core Components

Metric Registry:
  - Global Prometheus DefaultRegistry
  - All metrics registered at package init
  - Thread-safe for concurrent updates

Collector:
  - Polls Ledger/Registry/storage.Store on a 15s ticker
  - Feeds gauges that are cheap to recompute but not worth updating at
    every write site (total supply, chronolock count, active uploads)

Timer Helper:
  - Convenience wrapper for timing operations
  - Start timer, observe duration to histogram, optionally with labels

# Metrics Catalog

Ledger Metrics:

chronolock_ledger_total_supply:
  - Type: Gauge
  - Description: Current total token supply

chronolock_ledger_total_burned:
  - Type: Gauge
  - Description: Cumulative amount burned via the transfer fee split

chronolock_ledger_transfers_total{outcome}:
  - Type: Counter
  - Description: Total transfers by outcome ("ok", error kind)

chronolock_ledger_transfer_duration_seconds:
  - Type: Histogram
  - Description: Time to apply a transfer, including the tx-id suspension point

chronolock_ledger_registrations_total{outcome}:
  - Type: Counter
  - Description: Total register_user calls by outcome

chronolock_ledger_referrals_claimed_total:
  - Type: Counter
  - Description: Total referral codes claimed

Registry Metrics:

chronolock_registry_chronolocks_total:
  - Type: Gauge
  - Description: Total chronolocks currently registered

chronolock_registry_operations_total{operation, outcome}:
  - Type: Counter
  - Description: create/update/transfer/burn calls by outcome

Media Metrics:

chronolock_media_uploads_active:
  - Type: Gauge
  - Description: Number of in-progress (unfinished) uploads

chronolock_media_uploads_reaped_total:
  - Type: Counter
  - Description: Total unfinished uploads deleted by the reaper

chronolock_media_bytes_stored:
  - Type: Gauge
  - Description: Total bytes across finalized media objects

IBE Metrics:

chronolock_ibe_derivation_requests_total{kind, outcome}:
  - Type: Counter
  - Description: Key-derivation requests by kind ("time", "user") and outcome

chronolock_ibe_derivation_duration_seconds{kind}:
  - Type: Histogram
  - Description: Time to service a derivation request, including the external call

API Metrics:

chronolock_api_requests_total{method, status}:
  - Type: Counter
  - Description: Total API requests by method and status

chronolock_api_request_duration_seconds{method}:
  - Type: Histogram
  - Description: API request duration in seconds

Journal Metrics:

chronolock_journal_entries_total:
  - Type: Counter
  - Description: Total journal entries recorded, including later-evicted ones

chronolock_journal_evictions_total:
  - Type: Counter
  - Description: Total entries evicted for exceeding the retention cap

# Usage

	import "github.com/crnlicp/chronolock/pkg/metrics"

	metrics.TotalSupply.Set(1_000_000_00000000)
	metrics.TransfersTotal.WithLabelValues("ok").Inc()

	timer := metrics.NewTimer()
	// ... apply transfer ...
	timer.ObserveDuration(metrics.TransferDuration)

	http.Handle("/metrics", metrics.Handler())

# Integration Points

This package integrates with:

  - pkg/ledger: transfer/registration counters and duration histograms
  - pkg/registry: chronolock operation counters
  - pkg/media: upload gauges, reaper counter
  - pkg/ibe: derivation request counters and duration
  - pkg/api: request counters and duration, health/readiness handlers
  - Prometheus: scrapes /metrics

# Design Patterns

Package Init Registration:
  - All metrics registered in init(); MustRegister panics on duplicate
    registration, so a second import of this package never silently
    double-counts.

Label Discipline:
  - Labels are bounded enums (outcome, operation, kind, method) — never
    account keys, chronolock ids, or other unbounded values.

# See Also

  - Prometheus client library: https://github.com/prometheus/client_golang
  - Histogram best practices: https://prometheus.io/docs/practices/histograms/
*/
package metrics
