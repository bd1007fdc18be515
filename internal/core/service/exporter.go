package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hamudi896/LagerAppENV/internal/core/domain"
	"github.com/hamudi896/LagerAppENV/internal/port"
)

// ExportLabels names the fixed columns, the sheet and the download.
type ExportLabels struct {
	Category string
	Item     string
	Sheet    string
	FileName string
}

func DefaultExportLabels() ExportLabels {
	return ExportLabels{
		Category: "Warengruppe",
		Item:     "Artikel",
		Sheet:    "Bestände",
		FileName: "dashboard_bestande",
	}
}

func (l ExportLabels) withDefaults() ExportLabels {
	d := DefaultExportLabels()
	if l.Category == "" {
		l.Category = d.Category
	}
	if l.Item == "" {
		l.Item = d.Item
	}
	if l.Sheet == "" {
		l.Sheet = d.Sheet
	}
	if l.FileName == "" {
		l.FileName = d.FileName
	}
	return l
}

// Exporter turns the dashboard matrix into a spreadsheet document.
type Exporter struct {
	aggregator *Aggregator
	encoder    port.SheetEncoder
	archive    port.ReportArchive
	labels     ExportLabels
	metrics    port.LedgerMetrics
	logger     *slog.Logger
	now        func() time.Time
}

func NewExporter(aggregator *Aggregator, encoder port.SheetEncoder, opts ...Option) *Exporter {
	o := newOptions(opts)
	return &Exporter{
		aggregator: aggregator,
		encoder:    encoder,
		archive:    o.archive,
		labels:     o.labels,
		metrics:    o.metrics,
		logger:     o.logger,
		now:        o.now,
	}
}

// Flatten lays the matrix out as one row per (category, item) with one column
// per location, in matrix order.
func (e *Exporter) Flatten(m domain.DashboardMatrix) domain.Table {
	header := make([]string, 0, 2+len(m.Locations))
	header = append(header, e.labels.Category, e.labels.Item)
	for _, l := range m.Locations {
		header = append(header, l.Name)
	}

	t := domain.Table{Sheet: e.labels.Sheet, Header: header, Rows: []domain.TableRow{}}
	for _, c := range m.Categories {
		for _, it := range c.Items {
			qs := make([]int64, len(it.Quantities))
			copy(qs, it.Quantities)
			t.Rows = append(t.Rows, domain.TableRow{
				Category:   c.Category.Name,
				Item:       it.Item.Name,
				Quantities: qs,
			})
		}
	}
	return t
}

// Table flattens a fresh snapshot. Items are listed even when no location
// exists yet.
func (e *Exporter) Table(ctx context.Context) (domain.Table, error) {
	m, err := e.aggregator.collect(ctx, false)
	if err != nil {
		return domain.Table{}, err
	}
	return e.Flatten(m), nil
}

// Export returns the spreadsheet bytes of a fresh snapshot.
func (e *Exporter) Export(ctx context.Context) ([]byte, error) {
	t, err := e.Table(ctx)
	if err != nil {
		e.metrics.ReportExported(0, err)
		return nil, fmt.Errorf("export dashboard: %w", err)
	}
	data, err := e.encoder.Encode(t)
	e.metrics.ReportExported(len(data), err)
	if err != nil {
		return nil, fmt.Errorf("encode dashboard: %w", err)
	}
	e.logger.Debug("dashboard exported", "rows", len(t.Rows), "bytes", len(data))
	return data, nil
}

// FileName is the suggested download name, extension included.
func (e *Exporter) FileName() string {
	return e.labels.FileName + e.encoder.Extension()
}

func (e *Exporter) ContentType() string {
	return e.encoder.ContentType()
}

// Archive exports and stores the document under a timestamped key, returning
// its location in the archive.
func (e *Exporter) Archive(ctx context.Context) (string, error) {
	if e.archive == nil {
		return "", fmt.Errorf("no report archive configured: %w", domain.ErrInvalidInput)
	}
	data, err := e.Export(ctx)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("exports/%s_%s%s",
		strings.ReplaceAll(e.labels.FileName, " ", "_"),
		e.now().UTC().Format("20060102T150405Z"),
		e.encoder.Extension(),
	)
	where, err := e.archive.Store(ctx, key, data, e.encoder.ContentType())
	if err != nil {
		e.logger.Error("archive export failed", "key", key, "error", err)
		return "", fmt.Errorf("archive export: %w", err)
	}
	e.logger.Info("dashboard archived", "key", key, "location", where)
	return where, nil
}
