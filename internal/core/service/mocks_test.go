package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hamudi896/LagerAppENV/internal/adapter/storage"
	"github.com/hamudi896/LagerAppENV/internal/core/domain"
)

// Mock IdempotencyRepository
type mockIdempotencyRepo struct {
	idempotencySet map[string]bool
	released       []string
	failSet        bool
	mu             sync.Mutex
}

func newMockIdempotencyRepo() *mockIdempotencyRepo {
	return &mockIdempotencyRepo{
		idempotencySet: make(map[string]bool),
	}
}

func (m *mockIdempotencyRepo) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failSet {
		return false, errors.New("redis down")
	}
	if m.idempotencySet[key] {
		return false, nil
	}
	m.idempotencySet[key] = true
	return true, nil
}

func (m *mockIdempotencyRepo) ReleaseIdempotency(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.idempotencySet, key)
	m.released = append(m.released, key)
	return nil
}

// Mock LedgerMetrics
type mockMetrics struct {
	mu        sync.Mutex
	adjusted  map[domain.AdjustMode]int
	failures  int
	builds    []int
	exports   []int
	exportErr int
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{adjusted: make(map[domain.AdjustMode]int)}
}

func (m *mockMetrics) StockAdjusted(mode domain.AdjustMode, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adjusted[mode]++
	if err != nil {
		m.failures++
	}
}

func (m *mockMetrics) DashboardBuilt(_ time.Duration, items int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.builds = append(m.builds, items)
}

func (m *mockMetrics) ReportExported(bytes int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.exportErr++
		return
	}
	m.exports = append(m.exports, bytes)
}

// Mock SheetEncoder keeps the last table it was given.
type mockEncoder struct {
	last domain.Table
	err  error
}

func (e *mockEncoder) Encode(t domain.Table) ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	e.last = t
	return []byte(fmt.Sprintf("rows:%d", len(t.Rows))), nil
}

func (e *mockEncoder) ContentType() string { return "text/plain" }

func (e *mockEncoder) Extension() string { return ".txt" }

// Mock ReportArchive
type mockArchive struct {
	keys        []string
	contentType string
	err         error
}

func (a *mockArchive) Store(_ context.Context, key string, _ []byte, contentType string) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.keys = append(a.keys, key)
	a.contentType = contentType
	return "mock://" + key, nil
}

// seed holds the ids of the fixture built by newFixture.
type seed struct {
	store          *storage.MemoryStore
	north, south   domain.Location
	drinks, snacks domain.Category
	water, juice   domain.Item
	chips          domain.Item
}

// newFixture creates two locations, two categories and three items.
func newFixture() seed {
	ctx := context.Background()
	s := seed{store: storage.NewMemoryStore()}
	s.north, _ = s.store.CreateLocation(ctx, "Lager Nord")
	s.south, _ = s.store.CreateLocation(ctx, "Filiale Süd")
	s.drinks, _ = s.store.CreateCategory(ctx, "Getränke")
	s.snacks, _ = s.store.CreateCategory(ctx, "Snacks")
	s.water, _ = s.store.CreateItem(ctx, "Wasser", s.drinks.ID)
	s.juice, _ = s.store.CreateItem(ctx, "Saft", s.drinks.ID)
	s.chips, _ = s.store.CreateItem(ctx, "Chips", s.snacks.ID)
	return s
}
