package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var sourceRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "payengine",
	Subsystem: "source",
	Name:      "rows_total",
	Help:      "Count of input rows seen by the normalizer.",
}, []string{"status"})

// Source implements the source.Metrics interface.
type Source struct{}

// NewSource returns the normalizer metrics observer.
func NewSource() *Source {
	return &Source{}
}

// ObserveRow records the outcome of normalizing one input row.
func (m Source) ObserveRow(err error) {
	status := "ok"
	if err != nil {
		status = "malformed"
	}
	sourceRowsTotal.WithLabelValues(status).Inc()
}
