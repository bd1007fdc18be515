package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hamudi896/LagerAppENV/internal/core/domain"
	"github.com/hamudi896/LagerAppENV/internal/port"
)

// DeletePolicy decides what happens to items when their category is deleted.
type DeletePolicy string

const (
	DeleteReject  DeletePolicy = "reject"
	DeleteCascade DeletePolicy = "cascade"
)

func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch p := DeletePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case DeleteReject, DeleteCascade:
		return p, nil
	default:
		return "", fmt.Errorf("category delete policy %q: %w", s, domain.ErrInvalidInput)
	}
}

// CatalogService manages locations, categories and items.
type CatalogService struct {
	store  port.EntityStore
	policy DeletePolicy
	logger *slog.Logger
}

// NewCatalogService requires an explicit category delete policy.
func NewCatalogService(store port.EntityStore, policy DeletePolicy, opts ...Option) (*CatalogService, error) {
	policy, err := ParseDeletePolicy(string(policy))
	if err != nil {
		return nil, err
	}
	o := newOptions(opts)
	return &CatalogService{
		store:  store,
		policy: policy,
		logger: o.logger,
	}, nil
}

func (s *CatalogService) Policy() DeletePolicy {
	return s.policy
}

func (s *CatalogService) CreateLocation(ctx context.Context, name string) (domain.Location, error) {
	name, err := cleanName("location", name)
	if err != nil {
		return domain.Location{}, err
	}
	loc, err := s.store.CreateLocation(ctx, name)
	if err != nil {
		return domain.Location{}, fmt.Errorf("create location: %w", err)
	}
	s.logger.Debug("location created", "location_id", loc.ID, "name", loc.Name)
	return loc, nil
}

func (s *CatalogService) GetLocation(ctx context.Context, id int64) (domain.Location, error) {
	return s.store.GetLocation(ctx, id)
}

func (s *CatalogService) ListLocations(ctx context.Context) ([]domain.Location, error) {
	return s.store.ListLocations(ctx)
}

func (s *CatalogService) CreateCategory(ctx context.Context, name string) (domain.Category, error) {
	name, err := cleanName("category", name)
	if err != nil {
		return domain.Category{}, err
	}
	cat, err := s.store.CreateCategory(ctx, name)
	if err != nil {
		return domain.Category{}, fmt.Errorf("create category: %w", err)
	}
	s.logger.Debug("category created", "category_id", cat.ID, "name", cat.Name)
	return cat, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id int64) (domain.Category, error) {
	return s.store.GetCategory(ctx, id)
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *CatalogService) RenameCategory(ctx context.Context, id int64, name string) (domain.Category, error) {
	name, err := cleanName("category", name)
	if err != nil {
		return domain.Category{}, err
	}
	cat, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return domain.Category{}, err
	}
	cat.Name = name
	if err := s.store.UpdateCategory(ctx, cat); err != nil {
		return domain.Category{}, fmt.Errorf("rename category %d: %w", id, err)
	}
	return cat, nil
}

// DeleteCategory applies the configured policy: DeleteReject fails with
// domain.ErrConflict while items reference the category, DeleteCascade
// removes those items and their stock as well.
func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	cascade := s.policy == DeleteCascade
	if err := s.store.DeleteCategory(ctx, id, cascade); err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	s.logger.Debug("category deleted", "category_id", id, "policy", string(s.policy))
	return nil
}

func (s *CatalogService) CreateItem(ctx context.Context, name string, categoryID int64) (domain.Item, error) {
	name, err := cleanName("item", name)
	if err != nil {
		return domain.Item{}, err
	}
	item, err := s.store.CreateItem(ctx, name, categoryID)
	if err != nil {
		return domain.Item{}, fmt.Errorf("create item: %w", err)
	}
	s.logger.Debug("item created", "item_id", item.ID, "category_id", item.CategoryID)
	return item, nil
}

func (s *CatalogService) GetItem(ctx context.Context, id int64) (domain.Item, error) {
	return s.store.GetItem(ctx, id)
}

func (s *CatalogService) ListItems(ctx context.Context) ([]domain.Item, error) {
	return s.store.ListItems(ctx)
}

// ItemsByCategory returns every category with its items, categories without
// items included.
func (s *CatalogService) ItemsByCategory(ctx context.Context) ([]domain.CategoryItems, error) {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.store.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	byCategory := make(map[int64][]domain.Item, len(cats))
	for _, it := range items {
		byCategory[it.CategoryID] = append(byCategory[it.CategoryID], it)
	}
	out := make([]domain.CategoryItems, 0, len(cats))
	for _, c := range cats {
		group := byCategory[c.ID]
		if group == nil {
			group = []domain.Item{}
		}
		out = append(out, domain.CategoryItems{Category: c, Items: group})
	}
	return out, nil
}

// RenameItem sets both the name and the category of an item.
func (s *CatalogService) RenameItem(ctx context.Context, id int64, name string, categoryID int64) (domain.Item, error) {
	name, err := cleanName("item", name)
	if err != nil {
		return domain.Item{}, err
	}
	item := domain.Item{ID: id, Name: name, CategoryID: categoryID}
	if err := s.store.UpdateItem(ctx, item); err != nil {
		return domain.Item{}, fmt.Errorf("rename item %d: %w", id, err)
	}
	return item, nil
}

func (s *CatalogService) DeleteItem(ctx context.Context, id int64) error {
	if err := s.store.DeleteItem(ctx, id); err != nil {
		return fmt.Errorf("delete item %d: %w", id, err)
	}
	s.logger.Debug("item deleted", "item_id", id)
	return nil
}

func cleanName(kind, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%s name is empty: %w", kind, domain.ErrInvalidInput)
	}
	return name, nil
}
