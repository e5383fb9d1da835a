// internal/utils/metrics/collector.go
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricType представляет тип метрики
type MetricType string

const (
	RPCRequestCounterType  MetricType = "rpc_requests"
	RPCRequestDurationType MetricType = "rpc_request_duration"
	DecodedAccountsType    MetricType = "pyth_accounts_decoded"
	MappingPagesType       MetricType = "pyth_mapping_pages"
)

const namespace = "price_report"

// Collector управляет набором метрик одного запуска отчёта.
// Все методы безопасны для nil-получателя, чтобы метрики можно было не подключать.
type Collector struct {
	registry *prometheus.Registry
	metrics  sync.Map
}

// NewCollector создает коллектор с собственным реестром.
func NewCollector() *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}
	c.initializeMetrics()
	return c
}

func (c *Collector) initializeMetrics() {
	metricsMap := map[MetricType]prometheus.Collector{
		RPCRequestCounterType: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rpc_requests_total",
				Help:      "Total number of ledger RPC requests",
			},
			[]string{"method", "result"},
		),
		RPCRequestDurationType: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rpc_request_duration_seconds",
				Help:      "Ledger RPC request latency in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
			},
			[]string{"method"},
		),
		DecodedAccountsType: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pyth_accounts_decoded_total",
				Help:      "Pyth accounts decoded, by account kind",
			},
			[]string{"kind"},
		),
		MappingPagesType: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pyth_mapping_pages_total",
				Help:      "Pyth mapping pages walked",
			},
		),
	}

	for metricType, metric := range metricsMap {
		c.metrics.Store(metricType, metric)
		c.registry.MustRegister(metric)
	}
}

// Registry возвращает реестр для экспорта.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// RecordRPC записывает результат и длительность одного RPC-запроса.
func (c *Collector) RecordRPC(method string, duration time.Duration, err error) {
	if c == nil {
		return
	}

	result := "success"
	if err != nil {
		result = "failure"
	}

	if counter, ok := c.metrics.Load(RPCRequestCounterType); ok {
		if counterVec, ok := counter.(*prometheus.CounterVec); ok {
			counterVec.WithLabelValues(method, result).Inc()
		}
	}

	if durationMetric, ok := c.metrics.Load(RPCRequestDurationType); ok {
		if histVec, ok := durationMetric.(*prometheus.HistogramVec); ok {
			histVec.WithLabelValues(method).Observe(duration.Seconds())
		}
	}
}

// RecordDecoded увеличивает счётчик декодированных аккаунтов данного вида.
func (c *Collector) RecordDecoded(kind string) {
	if c == nil {
		return
	}
	if counter, ok := c.metrics.Load(DecodedAccountsType); ok {
		if counterVec, ok := counter.(*prometheus.CounterVec); ok {
			counterVec.WithLabelValues(kind).Inc()
		}
	}
}

// RecordMappingPage отмечает пройденную страницу mapping.
func (c *Collector) RecordMappingPage() {
	if c == nil {
		return
	}
	if counter, ok := c.metrics.Load(MappingPagesType); ok {
		if ctr, ok := counter.(prometheus.Counter); ok {
			ctr.Inc()
		}
	}
}

// Reset сбрасывает все метрики (полезно для тестирования)
func (c *Collector) Reset() {
	if c == nil {
		return
	}
	c.metrics.Range(func(_, value interface{}) bool {
		switch m := value.(type) {
		case *prometheus.CounterVec:
			m.Reset()
		case *prometheus.HistogramVec:
			m.Reset()
		}
		return true
	})
}

// WriteTextfile сохраняет метрики в формате textfile-коллектора node_exporter.
func (c *Collector) WriteTextfile(path string) error {
	if c == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, c.registry)
}
