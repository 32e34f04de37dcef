// Package metrics exposes prometheus observers for the processing pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ledgerworks/payengine-backend/internal/model"
)

var (
	engineTransactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "payengine",
		Subsystem: "engine",
		Name:      "transactions_total",
		Help:      "Count of transactions fed to the ledger engine.",
	}, []string{"kind", "status"})

	engineTransactionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "payengine",
		Subsystem: "engine",
		Name:      "transaction_duration_seconds",
		Help:      "Duration of applying a single transaction.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind", "status"})

	engineRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "payengine",
		Subsystem: "engine",
		Name:      "runs_total",
		Help:      "Count of processing runs.",
	}, []string{"status"})

	engineRunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "payengine",
		Subsystem: "engine",
		Name:      "run_duration_seconds",
		Help:      "Duration of processing one input stream.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"status"})

	engineRunSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "payengine",
		Subsystem: "engine",
		Name:      "run_transactions",
		Help:      "Number of transactions processed per run.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 12), // 1..~4M
	})
)

// Engine implements the engine.Metrics interface.
type Engine struct{}

// NewEngine returns the engine metrics observer.
func NewEngine() *Engine {
	return &Engine{}
}

// ObserveTransaction records the outcome of applying one transaction.
func (m Engine) ObserveTransaction(kind model.TxKind, err error, started time.Time) {
	status := "applied"
	if err != nil {
		status = "rejected"
	}
	engineTransactionsTotal.WithLabelValues(string(kind), status).Inc()
	engineTransactionDuration.WithLabelValues(string(kind), status).
		Observe(time.Since(started).Seconds())
}

// ObserveRun records the outcome of one full processing run.
func (m Engine) ObserveRun(err error, transactions int, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	engineRunsTotal.WithLabelValues(status).Inc()
	engineRunDuration.WithLabelValues(status).Observe(time.Since(started).Seconds())
	engineRunSize.Observe(float64(transactions))
}
