package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Ledger metrics
	TotalSupply = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chronolock_ledger_total_supply",
			Help: "Current total token supply",
		},
	)

	TotalBurned = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chronolock_ledger_total_burned",
			Help: "Cumulative amount burned via the transfer fee split",
		},
	)

	TransfersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronolock_ledger_transfers_total",
			Help: "Total number of ledger transfers by outcome",
		},
		[]string{"outcome"},
	)

	TransferDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chronolock_ledger_transfer_duration_seconds",
			Help:    "Time taken to apply a transfer, including the transaction-id suspension point",
			Buckets: prometheus.DefBuckets,
		},
	)

	RegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronolock_ledger_registrations_total",
			Help: "Total number of register_user calls by outcome",
		},
		[]string{"outcome"},
	)

	ReferralsClaimedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chronolock_ledger_referrals_claimed_total",
			Help: "Total number of referral codes claimed",
		},
	)

	// Registry metrics
	ChronolocksTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chronolock_registry_chronolocks_total",
			Help: "Total number of chronolocks currently registered",
		},
	)

	ChronolockOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronolock_registry_operations_total",
			Help: "Total number of chronolock operations by kind and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// Media metrics
	MediaUploadsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chronolock_media_uploads_active",
			Help: "Number of in-progress (unfinished) media uploads",
		},
	)

	MediaUploadsReapedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chronolock_media_uploads_reaped_total",
			Help: "Total number of unfinished uploads deleted by the reaper",
		},
	)

	MediaBytesStored = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chronolock_media_bytes_stored",
			Help: "Total bytes stored across finalized media objects",
		},
	)

	// IBE key-derivation metrics
	DerivationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronolock_ibe_derivation_requests_total",
			Help: "Total number of key-derivation requests by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	DerivationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chronolock_ibe_derivation_duration_seconds",
			Help:    "Time taken to service a key-derivation request, including the external call",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	// API metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronolock_api_requests_total",
			Help: "Total number of API requests by method and status",
		},
		[]string{"method", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chronolock_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// Journal metrics
	JournalEntriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chronolock_journal_entries_total",
			Help: "Total number of journal entries recorded, including evicted ones",
		},
	)

	JournalEvictionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chronolock_journal_evictions_total",
			Help: "Total number of journal entries evicted for exceeding the retention cap",
		},
	)
)

func init() {
	prometheus.MustRegister(TotalSupply)
	prometheus.MustRegister(TotalBurned)
	prometheus.MustRegister(TransfersTotal)
	prometheus.MustRegister(TransferDuration)
	prometheus.MustRegister(RegistrationsTotal)
	prometheus.MustRegister(ReferralsClaimedTotal)

	prometheus.MustRegister(ChronolocksTotal)
	prometheus.MustRegister(ChronolockOperationsTotal)

	prometheus.MustRegister(MediaUploadsActive)
	prometheus.MustRegister(MediaUploadsReapedTotal)
	prometheus.MustRegister(MediaBytesStored)

	prometheus.MustRegister(DerivationRequestsTotal)
	prometheus.MustRegister(DerivationDuration)

	prometheus.MustRegister(APIRequestsTotal)
	prometheus.MustRegister(APIRequestDuration)

	prometheus.MustRegister(JournalEntriesTotal)
	prometheus.MustRegister(JournalEvictionsTotal)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since timer started
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
