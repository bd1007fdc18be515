package service

import (
	"log/slog"
	"time"

	"github.com/hamudi896/LagerAppENV/internal/port"
)

type options struct {
	logger      *slog.Logger
	metrics     port.LedgerMetrics
	idempotency port.IdempotencyRepository
	archive     port.ReportArchive
	labels      ExportLabels
	now         func() time.Time
}

// Option configures the services in this package. Options a service has no
// use for are ignored.
type Option func(*options)

func newOptions(opts []Option) options {
	o := options{
		logger:  slog.Default(),
		metrics: port.NopMetrics{},
		labels:  DefaultExportLabels(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithMetrics(metrics port.LedgerMetrics) Option {
	return func(o *options) {
		if metrics != nil {
			o.metrics = metrics
		}
	}
}

// WithIdempotency enables request deduplication in LedgerService.ApplyOnce.
func WithIdempotency(repo port.IdempotencyRepository) Option {
	return func(o *options) {
		o.idempotency = repo
	}
}

// WithArchive sets where Exporter.Archive stores documents.
func WithArchive(archive port.ReportArchive) Option {
	return func(o *options) {
		o.archive = archive
	}
}

func WithExportLabels(labels ExportLabels) Option {
	return func(o *options) {
		o.labels = labels.withDefaults()
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
