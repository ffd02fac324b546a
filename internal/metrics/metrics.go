package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the fulfillment and stock counters exposed on /metrics.
type Metrics struct {
	transitionsTotal  *prometheus.CounterVec
	dispatchesTotal   prometheus.Counter
	stockEntriesTotal prometheus.Counter
	dispatchDuration  prometheus.Histogram
}

func New() *Metrics {
	return newWithRegisterer(prometheus.DefaultRegisterer)
}

func newWithRegisterer(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &Metrics{
		transitionsTotal: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "stockroom_order_transitions_total",
			Help: "Total number of order status transitions applied",
		}, []string{"from", "to"}),
		dispatchesTotal: registerCounter(registerer, prometheus.CounterOpts{
			Name: "stockroom_order_dispatches_total",
			Help: "Total number of orders dispatched",
		}),
		stockEntriesTotal: registerCounter(registerer, prometheus.CounterOpts{
			Name: "stockroom_stock_entries_total",
			Help: "Total number of stock entries registered",
		}),
		dispatchDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "stockroom_dispatch_duration_seconds",
			Help:    "Duration of the atomic dispatch transaction in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Nil receivers are tolerated so tests can run services without a registry.

func (m *Metrics) ObserveTransition(from, to string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(from, to).Inc()
}

func (m *Metrics) ObserveDispatch(d time.Duration) {
	if m == nil {
		return
	}
	m.dispatchesTotal.Inc()
	m.dispatchDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveStockEntry() {
	if m == nil {
		return
	}
	m.stockEntriesTotal.Inc()
}

func registerCounter(r prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	c := prometheus.NewCounter(opts)
	if err := r.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector.(prometheus.Counter)
		}
		panic(fmt.Sprintf("register counter %s: %v", opts.Name, err))
	}
	return c
}

func registerCounterVec(r prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(opts, labels)
	if err := r.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector.(*prometheus.CounterVec)
		}
		panic(fmt.Sprintf("register counter vec %s: %v", opts.Name, err))
	}
	return c
}

func registerHistogram(r prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	h := prometheus.NewHistogram(opts)
	if err := r.Register(h); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector.(prometheus.Histogram)
		}
		panic(fmt.Sprintf("register histogram %s: %v", opts.Name, err))
	}
	return h
}
