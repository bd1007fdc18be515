package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hamudi896/LagerAppENV/internal/core/domain"
	"github.com/hamudi896/LagerAppENV/internal/port"
)

const idempotencyKeyPrefix = "stock-request:"

// LedgerService applies quantity changes to stock records.
type LedgerService struct {
	store       port.EntityStore
	idempotency port.IdempotencyRepository
	metrics     port.LedgerMetrics
	logger      *slog.Logger
}

func NewLedgerService(store port.EntityStore, opts ...Option) *LedgerService {
	o := newOptions(opts)
	return &LedgerService{
		store:       store,
		idempotency: o.idempotency,
		metrics:     o.metrics,
		logger:      o.logger,
	}
}

// AdjustBounded adds delta to the stock of item at location and floors the
// result at zero. It returns the stored quantity.
func (s *LedgerService) AdjustBounded(ctx context.Context, locationID, itemID, delta int64) (int64, error) {
	return s.Apply(ctx, domain.AdjustBounded, locationID, itemID, delta)
}

// AddUnbounded adds delta to the stock of item at location without a floor.
func (s *LedgerService) AddUnbounded(ctx context.Context, locationID, itemID, delta int64) (int64, error) {
	return s.Apply(ctx, domain.AdjustUnbounded, locationID, itemID, delta)
}

// Apply runs one adjustment in the given mode. A zero delta is valid and
// returns the current quantity.
func (s *LedgerService) Apply(ctx context.Context, mode domain.AdjustMode, locationID, itemID, delta int64) (int64, error) {
	if !mode.Valid() {
		return 0, fmt.Errorf("adjust mode %q: %w", mode, domain.ErrInvalidInput)
	}

	stock, err := s.store.ApplyStockDelta(ctx, locationID, itemID, delta, mode)
	s.metrics.StockAdjusted(mode, err)
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidReference) && !errors.Is(err, domain.ErrInvalidInput) {
			s.logger.Error("stock adjustment failed",
				"mode", string(mode), "location_id", locationID, "item_id", itemID, "error", err)
		}
		return 0, fmt.Errorf("%s adjustment: %w", mode, err)
	}

	s.logger.Debug("stock adjusted",
		"mode", string(mode),
		"location_id", locationID,
		"item_id", itemID,
		"delta", delta,
		"quantity", stock.Quantity,
		"version", stock.Version,
	)
	return stock.Quantity, nil
}

// ApplyOnce is Apply guarded by a request id: a second call carrying an id
// that was already applied fails with domain.ErrDuplicateRequest. Without an
// idempotency repository or with an empty id it behaves like Apply.
func (s *LedgerService) ApplyOnce(ctx context.Context, requestID string, mode domain.AdjustMode, locationID, itemID, delta int64) (int64, error) {
	if s.idempotency == nil || requestID == "" {
		return s.Apply(ctx, mode, locationID, itemID, delta)
	}

	key := idempotencyKeyPrefix + requestID
	ok, err := s.idempotency.SetIdempotency(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("idempotency check failed: %w", err)
	}
	if !ok {
		return 0, domain.ErrDuplicateRequest
	}

	qty, err := s.Apply(ctx, mode, locationID, itemID, delta)
	if err != nil {
		// Rollback: the request never took effect, let a corrected retry through.
		if releaseErr := s.idempotency.ReleaseIdempotency(ctx, key); releaseErr != nil {
			s.logger.Error("release idempotency key failed", "key", key, "error", releaseErr)
		}
		return 0, err
	}
	return qty, nil
}

// Quantity returns the stock of item at location, 0 when no record exists.
func (s *LedgerService) Quantity(ctx context.Context, locationID, itemID int64) (int64, error) {
	stock, found, err := s.store.GetStock(ctx, locationID, itemID)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	return stock.Quantity, nil
}

// LocationStock maps every known item id to its quantity at the location.
func (s *LedgerService) LocationStock(ctx context.Context, locationID int64) (map[int64]int64, error) {
	if _, err := s.store.GetLocation(ctx, locationID); err != nil {
		return nil, err
	}
	items, err := s.store.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.store.ListStockByLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}

	out := make(map[int64]int64, len(items))
	for _, it := range items {
		out[it.ID] = 0
	}
	for _, r := range records {
		if _, ok := out[r.ItemID]; ok {
			out[r.ItemID] = r.Quantity
		}
	}
	return out, nil
}

// LocationSheet lists the stock of one location grouped by category, every
// category and item included.
func (s *LedgerService) LocationSheet(ctx context.Context, locationID int64) (domain.LocationSheet, error) {
	loc, err := s.store.GetLocation(ctx, locationID)
	if err != nil {
		return domain.LocationSheet{}, err
	}
	quantities, err := s.LocationStock(ctx, locationID)
	if err != nil {
		return domain.LocationSheet{}, err
	}
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return domain.LocationSheet{}, err
	}
	items, err := s.store.ListItems(ctx)
	if err != nil {
		return domain.LocationSheet{}, err
	}

	sheet := domain.LocationSheet{Location: loc, Groups: make([]domain.LocationSheetGroup, 0, len(cats))}
	for _, c := range cats {
		group := domain.LocationSheetGroup{Category: c.Name, Items: []domain.ItemQuantity{}}
		for _, it := range items {
			if it.CategoryID == c.ID {
				group.Items = append(group.Items, domain.ItemQuantity{Item: it, Quantity: quantities[it.ID]})
			}
		}
		sheet.Groups = append(sheet.Groups, group)
	}
	return sheet, nil
}
