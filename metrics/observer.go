// Package metrics adapts the book's observer hook to Prometheus. The hook
// runs under the book lock, so the adapter only touches lock-free client
// primitives: a counter increment and a histogram observation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vela/domain/book"
)

type Observer struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	affected   *prometheus.CounterVec
}

func NewObserver(namespace string) *Observer {
	registry := prometheus.NewRegistry()

	o := &Observer{
		registry: registry,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "book_operations_total",
			Help:      "Book operations by outcome",
		}, []string{"op"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "book_operation_seconds",
			Help:      "Book operation latency",
			Buckets:   prometheus.ExponentialBuckets(100e-9, 4, 12),
		}, []string{"op"}),
		affected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "book_orders_affected_total",
			Help:      "Orders (or trades, for MatchOrders) affected per operation",
		}, []string{"op"}),
	}
	registry.MustRegister(o.operations, o.latency, o.affected)
	return o
}

// Hook returns the callback to install with Book.SetObserver.
func (o *Observer) Hook() book.Observer {
	return func(op string, start, end time.Time, affected int) {
		o.operations.WithLabelValues(op).Inc()
		o.latency.WithLabelValues(op).Observe(end.Sub(start).Seconds())
		if affected > 0 {
			o.affected.WithLabelValues(op).Add(float64(affected))
		}
	}
}

// Handler serves the registry for scraping.
func (o *Observer) Handler() http.Handler {
	return promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{})
}
