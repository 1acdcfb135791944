package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	TransactionsRecorded *prometheus.CounterVec
	RecordDuration       prometheus.Histogram
	TransactionAmount    *prometheus.HistogramVec
	LedgerErrors         *prometheus.CounterVec
	RetryAttempts        prometheus.Counter
	SnapshotsServed      prometheus.Counter

	// Account metrics
	AccountsCreated prometheus.Counter
	AuthAttempts    *prometheus.CounterVec

	// Outbox metrics
	EventsPublished *prometheus.CounterVec
	EventsFailed    prometheus.Counter

	// Reconciliation metrics
	ReconciliationDiscrepancies prometheus.Gauge

	// Rate limiting metrics
	RateLimitHits prometheus.Counter
}

// New creates and registers all ledger metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		TransactionsRecorded: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dooonda_transactions_recorded_total",
				Help: "Total number of committed wallet transactions by type",
			},
			[]string{"type"},
		),
		RecordDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "dooonda_record_transaction_duration_seconds",
			Help:    "Duration of RecordTransaction including lock wait and retries",
			Buckets: prometheus.DefBuckets,
		}),
		TransactionAmount: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dooonda_transaction_amount",
				Help:    "Committed transaction amounts",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
			},
			[]string{"type"},
		),
		LedgerErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dooonda_ledger_errors_total",
				Help: "Ledger operation errors by operation and category",
			},
			[]string{"op", "category"},
		),
		RetryAttempts: f.NewCounter(prometheus.CounterOpts{
			Name: "dooonda_ledger_retries_total",
			Help: "Retried attempts after serialization failures or deadlocks",
		}),
		SnapshotsServed: f.NewCounter(prometheus.CounterOpts{
			Name: "dooonda_wallet_snapshots_total",
			Help: "Total number of wallet snapshots served",
		}),

		AccountsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "dooonda_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		AuthAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dooonda_auth_attempts_total",
				Help: "Login attempts by outcome",
			},
			[]string{"status"},
		),

		EventsPublished: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dooonda_outbox_events_published_total",
				Help: "Outbox events published by event type",
			},
			[]string{"event_type"},
		),
		EventsFailed: f.NewCounter(prometheus.CounterOpts{
			Name: "dooonda_outbox_events_failed_total",
			Help: "Outbox events that failed to publish",
		}),

		ReconciliationDiscrepancies: f.NewGauge(prometheus.GaugeOpts{
			Name: "dooonda_reconciliation_discrepancies",
			Help: "Wallets whose balance disagreed with their transactions at the last report",
		}),

		RateLimitHits: f.NewCounter(prometheus.CounterOpts{
			Name: "dooonda_rate_limit_hits_total",
			Help: "Requests rejected by the rate limiter",
		}),
	}
}
