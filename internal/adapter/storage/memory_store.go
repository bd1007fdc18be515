package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hamudi896/LagerAppENV/internal/core/domain"
	"github.com/hamudi896/LagerAppENV/internal/port"
)

var _ port.EntityStore = (*MemoryStore)(nil)

type stockKey struct {
	locationID int64
	itemID     int64
}

// MemoryStore keeps everything in maps behind one lock. Stock changes hold
// the write lock for the whole read-modify-write cycle.
type MemoryStore struct {
	mu sync.RWMutex

	nextLocationID int64
	nextCategoryID int64
	nextItemID     int64

	locations  map[int64]domain.Location
	categories map[int64]domain.Category
	items      map[int64]domain.Item
	stock      map[stockKey]domain.Stock

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		locations:  make(map[int64]domain.Location),
		categories: make(map[int64]domain.Category),
		items:      make(map[int64]domain.Item),
		stock:      make(map[stockKey]domain.Stock),
		now:        time.Now,
	}
}

func (s *MemoryStore) CreateLocation(_ context.Context, name string) (domain.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextLocationID++
	loc := domain.Location{ID: s.nextLocationID, Name: name}
	s.locations[loc.ID] = loc
	return loc, nil
}

func (s *MemoryStore) GetLocation(_ context.Context, id int64) (domain.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if loc, ok := s.locations[id]; ok {
		return loc, nil
	}
	return domain.Location{}, fmt.Errorf("location %d: %w", id, domain.ErrNotFound)
}

func (s *MemoryStore) ListLocations(_ context.Context) ([]domain.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Location, 0, len(s.locations))
	for _, l := range s.locations {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) CreateCategory(_ context.Context, name string) (domain.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextCategoryID++
	cat := domain.Category{ID: s.nextCategoryID, Name: name}
	s.categories[cat.ID] = cat
	return cat, nil
}

func (s *MemoryStore) GetCategory(_ context.Context, id int64) (domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if cat, ok := s.categories[id]; ok {
		return cat, nil
	}
	return domain.Category{}, fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
}

func (s *MemoryStore) ListCategories(_ context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) UpdateCategory(_ context.Context, category domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[category.ID]; !ok {
		return fmt.Errorf("category %d: %w", category.ID, domain.ErrNotFound)
	}
	s.categories[category.ID] = category
	return nil
}

func (s *MemoryStore) DeleteCategory(_ context.Context, id int64, cascade bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
	}
	var dependents []int64
	for _, it := range s.items {
		if it.CategoryID == id {
			dependents = append(dependents, it.ID)
		}
	}
	if len(dependents) > 0 && !cascade {
		return fmt.Errorf("category %d is referenced by %d items: %w", id, len(dependents), domain.ErrConflict)
	}
	for _, itemID := range dependents {
		s.deleteItemLocked(itemID)
	}
	delete(s.categories, id)
	return nil
}

func (s *MemoryStore) CountItemsInCategory(_ context.Context, id int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.categories[id]; !ok {
		return 0, fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
	}
	n := 0
	for _, it := range s.items {
		if it.CategoryID == id {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) CreateItem(_ context.Context, name string, categoryID int64) (domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[categoryID]; !ok {
		return domain.Item{}, fmt.Errorf("category %d: %w", categoryID, domain.ErrInvalidReference)
	}
	s.nextItemID++
	item := domain.Item{ID: s.nextItemID, Name: name, CategoryID: categoryID}
	s.items[item.ID] = item
	return item, nil
}

func (s *MemoryStore) GetItem(_ context.Context, id int64) (domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if it, ok := s.items[id]; ok {
		return it, nil
	}
	return domain.Item{}, fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
}

func (s *MemoryStore) ListItems(_ context.Context) ([]domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Item, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) ListItemsByCategory(ctx context.Context, categoryID int64) ([]domain.Item, error) {
	all, err := s.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Item, 0, len(all))
	for _, it := range all {
		if it.CategoryID == categoryID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *MemoryStore) UpdateItem(_ context.Context, item domain.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[item.ID]; !ok {
		return fmt.Errorf("item %d: %w", item.ID, domain.ErrNotFound)
	}
	if _, ok := s.categories[item.CategoryID]; !ok {
		return fmt.Errorf("category %d: %w", item.CategoryID, domain.ErrInvalidReference)
	}
	s.items[item.ID] = item
	return nil
}

func (s *MemoryStore) DeleteItem(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
	}
	s.deleteItemLocked(id)
	return nil
}

func (s *MemoryStore) deleteItemLocked(id int64) {
	delete(s.items, id)
	for k := range s.stock {
		if k.itemID == id {
			delete(s.stock, k)
		}
	}
}

func (s *MemoryStore) GetStock(_ context.Context, locationID, itemID int64) (domain.Stock, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.stock[stockKey{locationID, itemID}]
	return st, ok, nil
}

func (s *MemoryStore) ListStockByLocation(ctx context.Context, locationID int64) ([]domain.Stock, error) {
	all, err := s.ListStock(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Stock, 0, len(all))
	for _, st := range all {
		if st.LocationID == locationID {
			out = append(out, st)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListStock(_ context.Context) ([]domain.Stock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Stock, 0, len(s.stock))
	for _, st := range s.stock {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LocationID != out[j].LocationID {
			return out[i].LocationID < out[j].LocationID
		}
		return out[i].ItemID < out[j].ItemID
	})
	return out, nil
}

func (s *MemoryStore) ApplyStockDelta(ctx context.Context, locationID, itemID, delta int64, mode domain.AdjustMode) (domain.Stock, error) {
	if err := ctx.Err(); err != nil {
		return domain.Stock{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.locations[locationID]; !ok {
		return domain.Stock{}, fmt.Errorf("location %d: %w", locationID, domain.ErrInvalidReference)
	}
	if _, ok := s.items[itemID]; !ok {
		return domain.Stock{}, fmt.Errorf("item %d: %w", itemID, domain.ErrInvalidReference)
	}

	key := stockKey{locationID, itemID}
	st, ok := s.stock[key]
	if !ok {
		st = domain.Stock{LocationID: locationID, ItemID: itemID}
	}
	next, err := mode.Apply(st.Quantity, delta)
	if err != nil {
		return domain.Stock{}, err
	}
	st.Quantity = next
	st.Version++
	st.UpdatedAt = s.now().UTC()
	s.stock[key] = st
	return st, nil
}

func (s *MemoryStore) Migrate(context.Context) error { return nil }

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
