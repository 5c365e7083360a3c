// Package metrics exposes Prometheus collectors for the import pipeline.
//
// Collector implements core.Observer, so the importer reports batch and run
// outcomes without depending on Prometheus itself. Collectors live in a
// private registry served by Handler.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/employees/internal/core"
)

const namespace = "employees"

// Collector records import pipeline metrics.
type Collector struct {
	reg *prometheus.Registry

	imports       *prometheus.CounterVec   // employees_imports_total{result}
	batches       *prometheus.CounterVec   // employees_import_batches_total{status}
	rows          *prometheus.CounterVec   // employees_import_rows_total{kind}
	bytesRead     prometheus.Counter       // employees_import_bytes_total
	batchDuration *prometheus.HistogramVec // employees_import_batch_duration_seconds{status}
	importDur     prometheus.Histogram     // employees_import_duration_seconds
}

var _ core.Observer = (*Collector)(nil)

// New builds a Collector with Go runtime and process collectors registered.
func New() (*Collector, error) {
	c := &Collector{
		reg: prometheus.NewRegistry(),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "CSV import runs, partitioned by result (ok, aborted).",
		}, []string{"result"}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_batches_total",
			Help:      "Import batches, partitioned by status (committed, rolled_back).",
		}, []string{"status"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_rows_total",
			Help:      "Import rows, partitioned by kind (read, committed, skipped).",
		}, []string{"kind"}),
		bytesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_bytes_total",
			Help:      "Decoded bytes consumed by imports.",
		}),
		batchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_batch_duration_seconds",
			Help:      "Time spent writing one batch, partitioned by status.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"status"}),
		importDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_duration_seconds",
			Help:      "Wall time of one import run.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 14),
		}),
	}

	for name, col := range map[string]prometheus.Collector{
		"imports":         c.imports,
		"batches":         c.batches,
		"rows":            c.rows,
		"bytes":           c.bytesRead,
		"batch duration":  c.batchDuration,
		"import duration": c.importDur,
		"go":              collectors.NewGoCollector(),
		"process":         collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := c.reg.Register(col); err != nil {
			return nil, fmt.Errorf("metrics: register %s: %w", name, err)
		}
	}
	return c, nil
}

// BatchDone implements core.Observer.
func (c *Collector) BatchDone(res core.BatchResult) {
	status := string(res.Status)
	c.batches.WithLabelValues(status).Inc()
	c.batchDuration.WithLabelValues(status).Observe(res.Duration.Seconds())
	if res.Status == core.BatchCommitted {
		c.rows.WithLabelValues("committed").Add(float64(res.Rows))
	}
}

// ImportDone implements core.Observer.
func (c *Collector) ImportDone(report *core.ImportReport, err error) {
	result := "ok"
	if err != nil {
		result = "aborted"
	}
	c.imports.WithLabelValues(result).Inc()
	if report == nil {
		return
	}
	c.rows.WithLabelValues("read").Add(float64(report.Rows))
	c.rows.WithLabelValues("skipped").Add(float64(report.SkippedRows))
	c.bytesRead.Add(float64(report.BytesRead))
	c.importDur.Observe(report.Duration.Seconds())
}

// RegisterLimiter exports the import limiter's slot usage as gauges.
func (c *Collector) RegisterLimiter(status func() core.LimiterStatus) error {
	active := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "imports_active",
		Help:      "Imports currently holding a limiter slot.",
	}, func() float64 { return float64(status().Active) })
	capacity := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "imports_max_concurrent",
		Help:      "Configured number of concurrent import slots.",
	}, func() float64 { return float64(status().MaxConcurrent) })

	if err := c.reg.Register(active); err != nil {
		return fmt.Errorf("metrics: register active imports: %w", err)
	}
	if err := c.reg.Register(capacity); err != nil {
		return fmt.Errorf("metrics: register import capacity: %w", err)
	}
	return nil
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{Registry: c.reg})
}
