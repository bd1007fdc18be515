package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/hamudi896/LagerAppENV/internal/core/domain"
	"github.com/hamudi896/LagerAppENV/internal/port"
)

// Aggregator builds the dashboard matrix. Every call reads the store afresh;
// the result is a point-in-time snapshot.
type Aggregator struct {
	store   port.EntityStore
	metrics port.LedgerMetrics
	logger  *slog.Logger
	now     func() time.Time
}

func NewAggregator(store port.EntityStore, opts ...Option) *Aggregator {
	o := newOptions(opts)
	return &Aggregator{
		store:   store,
		metrics: o.metrics,
		logger:  o.logger,
		now:     o.now,
	}
}

// Build returns the complete Category x Item x Location matrix with an
// explicit 0 for every pair without a stock record. With no categories, no
// items or no locations the matrix is empty.
func (a *Aggregator) Build(ctx context.Context) (domain.DashboardMatrix, error) {
	start := a.now()
	m, err := a.collect(ctx, true)
	if err != nil {
		return domain.DashboardMatrix{}, err
	}
	took := a.now().Sub(start)
	a.metrics.DashboardBuilt(took, m.ItemCount())
	a.logger.Debug("dashboard built", "items", m.ItemCount(), "locations", len(m.Locations), "took", took)
	return m, nil
}

// collect gathers the matrix. With requireLocations unset, items are kept even
// when no location exists, which is what the export needs.
func (a *Aggregator) collect(ctx context.Context, requireLocations bool) (domain.DashboardMatrix, error) {
	cats, err := a.store.ListCategories(ctx)
	if err != nil {
		return domain.DashboardMatrix{}, err
	}
	items, err := a.store.ListItems(ctx)
	if err != nil {
		return domain.DashboardMatrix{}, err
	}
	locs, err := a.store.ListLocations(ctx)
	if err != nil {
		return domain.DashboardMatrix{}, err
	}
	if len(cats) == 0 || len(items) == 0 || (requireLocations && len(locs) == 0) {
		return domain.DashboardMatrix{}, nil
	}

	records, err := a.store.ListStock(ctx)
	if err != nil {
		return domain.DashboardMatrix{}, err
	}
	q := newQuantityIndex(records)

	m := domain.DashboardMatrix{
		Locations:  locs,
		Categories: make([]domain.MatrixCategory, 0, len(cats)),
	}
	for _, c := range cats {
		mc := domain.MatrixCategory{Category: c, Items: []domain.MatrixItem{}}
		for _, it := range items {
			if it.CategoryID != c.ID {
				continue
			}
			row := domain.MatrixItem{Item: it, Quantities: make([]int64, len(locs))}
			for i, l := range locs {
				if qty, ok := q.lookup(l.ID, it.ID); ok {
					row.Quantities[i] = qty
				}
			}
			mc.Items = append(mc.Items, row)
		}
		m.Categories = append(m.Categories, mc)
	}
	return m, nil
}

type stockKey struct {
	locationID int64
	itemID     int64
}

type quantityIndex map[stockKey]int64

func newQuantityIndex(records []domain.Stock) quantityIndex {
	q := make(quantityIndex, len(records))
	for _, r := range records {
		q[stockKey{r.LocationID, r.ItemID}] = r.Quantity
	}
	return q
}

// lookup reports ok=false when the pair has no stock record.
func (q quantityIndex) lookup(locationID, itemID int64) (int64, bool) {
	qty, ok := q[stockKey{locationID, itemID}]
	return qty, ok
}
