// Package metrics exports ledger activity as Prometheus series.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hamudi896/LagerAppENV/internal/core/domain"
	"github.com/hamudi896/LagerAppENV/internal/port"
)

const namespace = "lagerapp"

var _ port.LedgerMetrics = (*Recorder)(nil)

type Recorder struct {
	registry *prometheus.Registry

	adjustments      *prometheus.CounterVec
	dashboardSeconds prometheus.Histogram
	dashboardItems   prometheus.Gauge
	exports          *prometheus.CounterVec
	exportBytes      prometheus.Histogram
}

// New registers the ledger series, plus Go runtime and process collectors, on
// a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		adjustments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_adjustments_total",
			Help:      "Stock adjustments by mode and outcome.",
		}, []string{"mode", "outcome"}),
		dashboardSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dashboard_build_seconds",
			Help:      "Time spent building the dashboard matrix.",
			Buckets:   prometheus.DefBuckets,
		}),
		dashboardItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dashboard_items",
			Help:      "Item rows in the last dashboard matrix.",
		}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dashboard_exports_total",
			Help:      "Spreadsheet exports by outcome.",
		}, []string{"outcome"}),
		exportBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dashboard_export_bytes",
			Help:      "Size of exported spreadsheets.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		}),
	}
	reg.MustRegister(
		r.adjustments,
		r.dashboardSeconds,
		r.dashboardItems,
		r.exports,
		r.exportBytes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Recorder) StockAdjusted(mode domain.AdjustMode, err error) {
	r.adjustments.WithLabelValues(string(mode), outcome(err)).Inc()
}

func (r *Recorder) DashboardBuilt(took time.Duration, items int) {
	r.dashboardSeconds.Observe(took.Seconds())
	r.dashboardItems.Set(float64(items))
}

func (r *Recorder) ReportExported(bytes int, err error) {
	r.exports.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		r.exportBytes.Observe(float64(bytes))
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidReference):
		return "invalid_reference"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	default:
		return "error"
	}
}
