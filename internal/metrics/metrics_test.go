package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ledgerworks/payengine-backend/internal/model"
)

func delta(t *testing.T, collector prometheus.Collector, observe func()) float64 {
	t.Helper()

	before := testutil.ToFloat64(collector)
	observe()
	after := testutil.ToFloat64(collector)
	return after - before
}

func TestEngineRecordsTransactions(t *testing.T) {
	m := NewEngine()
	start := time.Now().Add(-time.Millisecond)

	if inc := delta(t, engineTransactionsTotal.WithLabelValues("deposit", "applied"), func() {
		m.ObserveTransaction(model.Deposit, nil, start)
	}); inc != 1 {
		t.Fatalf("expected applied deposit counter increment, got %v", inc)
	}

	if inc := delta(t, engineTransactionsTotal.WithLabelValues("dispute", "rejected"), func() {
		m.ObserveTransaction(model.Dispute, errors.New("unknown tx"), start)
	}); inc != 1 {
		t.Fatalf("expected rejected dispute counter increment, got %v", inc)
	}
}

func TestEngineRecordsRuns(t *testing.T) {
	m := NewEngine()
	start := time.Now().Add(-time.Second)

	if inc := delta(t, engineRunsTotal.WithLabelValues("success"), func() {
		m.ObserveRun(nil, 100, start)
	}); inc != 1 {
		t.Fatalf("expected success run counter increment, got %v", inc)
	}

	if inc := delta(t, engineRunsTotal.WithLabelValues("error"), func() {
		m.ObserveRun(errors.New("boom"), 3, start)
	}); inc != 1 {
		t.Fatalf("expected error run counter increment, got %v", inc)
	}
}

func TestSourceRecordsRows(t *testing.T) {
	m := NewSource()

	if inc := delta(t, sourceRowsTotal.WithLabelValues("ok"), func() {
		m.ObserveRow(nil)
	}); inc != 1 {
		t.Fatalf("expected ok row counter increment, got %v", inc)
	}

	if inc := delta(t, sourceRowsTotal.WithLabelValues("malformed"), func() {
		m.ObserveRow(errors.New("bad decimal"))
	}); inc != 1 {
		t.Fatalf("expected malformed row counter increment, got %v", inc)
	}
}
