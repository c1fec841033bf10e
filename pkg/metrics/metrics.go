package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge

	EncountersCreatedTotal prometheus.Counter
	ImportRowsTotal        *prometheus.CounterVec
	ExportsTotal           *prometheus.CounterVec

	DBConnections prometheus.Gauge

	AuditEntriesTotal  prometheus.Counter
	AuditBufferDropped prometheus.Counter
}

func NewCollector(serviceName string) *Collector {
	return NewCollectorWith(prometheus.DefaultRegisterer, serviceName)
}

// NewCollectorWith registers against the given registerer. Use a fresh
// registry when several collectors must coexist in one process.
func NewCollectorWith(reg prometheus.Registerer, serviceName string) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "path", "status"}),

		InFlightGauge: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		EncountersCreatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "captura",
			Name:      "encounters_created_total",
			Help:      "Total encounter records created via forms or import.",
		}),

		ImportRowsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "captura",
			Name:      "import_rows_total",
			Help:      "Bulk import rows processed, by kind and outcome.",
		}, []string{"kind", "outcome"}),

		ExportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "reportes",
			Name:      "exports_total",
			Help:      "Report downloads, by format.",
		}, []string{"format"}),

		DBConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: serviceName,
			Subsystem: "db",
			Name:      "open_connections",
			Help:      "Current number of open database connections.",
		}),

		AuditEntriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "audit",
			Name:      "entries_total",
			Help:      "Total audit log entries written.",
		}),

		AuditBufferDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "audit",
			Name:      "buffer_dropped_total",
			Help:      "Audit entries dropped due to full buffer. Alert if non-zero.",
		}),
	}
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
