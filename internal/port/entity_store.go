package port

import (
	"context"

	"github.com/hamudi896/LagerAppENV/internal/core/domain"
)

// EntityStore is the durable home of every location, category, item and stock
// record. Listings are ordered by id. Missing ids surface as domain.ErrNotFound,
// missing foreign-key targets as domain.ErrInvalidReference.
type EntityStore interface {
	CreateLocation(ctx context.Context, name string) (domain.Location, error)
	GetLocation(ctx context.Context, id int64) (domain.Location, error)
	ListLocations(ctx context.Context) ([]domain.Location, error)

	CreateCategory(ctx context.Context, name string) (domain.Category, error)
	GetCategory(ctx context.Context, id int64) (domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	UpdateCategory(ctx context.Context, category domain.Category) error
	// DeleteCategory removes the category. With cascade unset it fails with
	// domain.ErrConflict while items still reference it; with cascade set the
	// referencing items and their stock go with it.
	DeleteCategory(ctx context.Context, id int64, cascade bool) error
	CountItemsInCategory(ctx context.Context, id int64) (int, error)

	CreateItem(ctx context.Context, name string, categoryID int64) (domain.Item, error)
	GetItem(ctx context.Context, id int64) (domain.Item, error)
	ListItems(ctx context.Context) ([]domain.Item, error)
	ListItemsByCategory(ctx context.Context, categoryID int64) ([]domain.Item, error)
	UpdateItem(ctx context.Context, item domain.Item) error
	// DeleteItem removes the item and every stock record that references it.
	DeleteItem(ctx context.Context, id int64) error

	// GetStock reports found=false when no record exists for the pair.
	GetStock(ctx context.Context, locationID, itemID int64) (stock domain.Stock, found bool, err error)
	ListStockByLocation(ctx context.Context, locationID int64) ([]domain.Stock, error)
	ListStock(ctx context.Context) ([]domain.Stock, error)

	// ApplyStockDelta runs the read-modify-write cycle for one (location, item)
	// pair as a single critical section: both references are checked, a missing
	// record starts at 0, mode decides whether the result is floored, and the
	// stored record is returned.
	ApplyStockDelta(ctx context.Context, locationID, itemID, delta int64, mode domain.AdjustMode) (domain.Stock, error)

	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
