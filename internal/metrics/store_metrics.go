package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics содержит метрики магазина: каталог, оформление счетов, outbox.
type StoreMetrics struct {
	// Счётчики операций каталога
	productsCreated prometheus.Counter
	productsUpdated prometheus.Counter
	productsRemoved prometheus.Counter

	// Счётчики оформления счетов
	invoicesCreated  prometheus.Counter
	invoicesRejected *prometheus.CounterVec
	stockConflicts   prometheus.Counter

	// Гистограммы времени выполнения
	invoiceDuration prometheus.Histogram
	queryDuration   *prometheus.HistogramVec

	// Outbox
	outboxPublished prometheus.Counter
	outboxRetries   prometheus.Counter
	outboxBacklog   prometheus.Gauge
}

// NewStoreMetrics создаёт новый экземпляр метрик магазина.
func NewStoreMetrics() *StoreMetrics {
	return newStoreMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newStoreMetricsWithRegisterer(registerer prometheus.Registerer) *StoreMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &StoreMetrics{
		productsCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "store_products_created_total",
			Help: "Total number of products created",
		}),
		productsUpdated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "store_products_updated_total",
			Help: "Total number of products updated",
		}),
		productsRemoved: registerCounter(registerer, prometheus.CounterOpts{
			Name: "store_products_removed_total",
			Help: "Total number of products soft deleted",
		}),
		invoicesCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "store_invoices_created_total",
			Help: "Total number of invoices created successfully",
		}),
		invoicesRejected: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "store_invoices_rejected_total",
			Help: "Total number of invoice placements rejected",
		}, []string{"reason"}),
		stockConflicts: registerCounter(registerer, prometheus.CounterOpts{
			Name: "store_stock_conflicts_total",
			Help: "Total number of concurrent stock decrement conflicts",
		}),
		invoiceDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "store_invoice_duration_seconds",
			Help:    "Duration of invoice placement in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		queryDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "store_query_duration_seconds",
			Help:    "Duration of catalog and invoice read queries in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"query"}),
		outboxPublished: registerCounter(registerer, prometheus.CounterOpts{
			Name: "store_outbox_published_total",
			Help: "Total number of outbox events published",
		}),
		outboxRetries: registerCounter(registerer, prometheus.CounterOpts{
			Name: "store_outbox_retries_total",
			Help: "Total number of outbox publish retries",
		}),
		outboxBacklog: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "store_outbox_backlog",
			Help: "Number of pending outbox messages",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordProductCreated увеличивает счётчик созданных товаров.
func (m *StoreMetrics) RecordProductCreated() {
	m.productsCreated.Inc()
}

// RecordProductUpdated увеличивает счётчик обновлённых товаров.
func (m *StoreMetrics) RecordProductUpdated() {
	m.productsUpdated.Inc()
}

// RecordProductRemoved увеличивает счётчик мягко удалённых товаров.
func (m *StoreMetrics) RecordProductRemoved() {
	m.productsRemoved.Inc()
}

// RecordInvoiceCreated увеличивает счётчик успешно оформленных счетов.
func (m *StoreMetrics) RecordInvoiceCreated() {
	m.invoicesCreated.Inc()
}

// RecordInvoiceRejected увеличивает счётчик отклонённых оформлений с причиной.
func (m *StoreMetrics) RecordInvoiceRejected(reason string) {
	m.invoicesRejected.WithLabelValues(reason).Inc()
}

// RecordStockConflict увеличивает счётчик конкурентных конфликтов списания.
func (m *StoreMetrics) RecordStockConflict() {
	m.stockConflicts.Inc()
}

// RecordInvoiceDuration записывает время оформления счёта.
func (m *StoreMetrics) RecordInvoiceDuration(duration time.Duration) {
	m.invoiceDuration.Observe(duration.Seconds())
}

// RecordQueryDuration записывает время выполнения читающего запроса.
func (m *StoreMetrics) RecordQueryDuration(query string, duration time.Duration) {
	m.queryDuration.WithLabelValues(query).Observe(duration.Seconds())
}

// RecordOutboxPublished увеличивает счётчик опубликованных событий.
func (m *StoreMetrics) RecordOutboxPublished() {
	m.outboxPublished.Inc()
}

// RecordOutboxRetry увеличивает счётчик повторных попыток публикации.
func (m *StoreMetrics) RecordOutboxRetry() {
	m.outboxRetries.Inc()
}

// SetOutboxBacklog выставляет размер backlog outbox.
func (m *StoreMetrics) SetOutboxBacklog(pending int) {
	m.outboxBacklog.Set(float64(pending))
}
