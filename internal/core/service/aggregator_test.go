package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamudi896/LagerAppENV/internal/adapter/storage"
	"github.com/hamudi896/LagerAppENV/internal/core/domain"
)

func TestBuild_CompleteMatrix(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	metrics := newMockMetrics()
	ledger := NewLedgerService(f.store)
	agg := NewAggregator(f.store, WithMetrics(metrics))

	_, err := ledger.AdjustBounded(ctx, f.south.ID, f.juice.ID, 9)
	require.NoError(t, err)

	m, err := agg.Build(ctx)
	require.NoError(t, err)

	assert.Equal(t, []domain.Location{f.north, f.south}, m.Locations)
	assert.Equal(t, 3, m.ItemCount())
	for _, c := range m.Categories {
		for _, it := range c.Items {
			require.Len(t, it.Quantities, 2, it.Item.Name)
		}
	}
	assert.Equal(t, map[string]map[string]map[string]int64{
		"Getränke": {
			"Wasser": {"Lager Nord": 0, "Filiale Süd": 0},
			"Saft":   {"Lager Nord": 0, "Filiale Süd": 9},
		},
		"Snacks": {
			"Chips": {"Lager Nord": 0, "Filiale Süd": 0},
		},
	}, m.Map())

	qty, ok := m.Quantity("Getränke", "Saft", "Filiale Süd")
	assert.True(t, ok)
	assert.Equal(t, int64(9), qty)
	_, ok = m.Quantity("Getränke", "Saft", "Nirgendwo")
	assert.False(t, ok)

	assert.Equal(t, []int{3}, metrics.builds)
}

func TestBuild_EmptyCases(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		setup func(s *storage.MemoryStore)
	}{
		{"nothing", func(s *storage.MemoryStore) {}},
		{"no locations", func(s *storage.MemoryStore) {
			c, _ := s.CreateCategory(ctx, "Getränke")
			_, _ = s.CreateItem(ctx, "Wasser", c.ID)
		}},
		{"no items", func(s *storage.MemoryStore) {
			_, _ = s.CreateLocation(ctx, "Lager")
			_, _ = s.CreateCategory(ctx, "Getränke")
		}},
		{"no categories", func(s *storage.MemoryStore) {
			_, _ = s.CreateLocation(ctx, "Lager")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := storage.NewMemoryStore()
			tt.setup(s)

			m, err := NewAggregator(s).Build(ctx)
			require.NoError(t, err)
			assert.True(t, m.Empty())
			assert.Empty(t, m.Map())
		})
	}
}

func TestBuild_EmptyCategoryKept(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	empty, err := f.store.CreateCategory(ctx, "Leer")
	require.NoError(t, err)

	m, err := NewAggregator(f.store).Build(ctx)
	require.NoError(t, err)
	require.Len(t, m.Categories, 3)
	assert.Equal(t, empty, m.Categories[2].Category)
	assert.Empty(t, m.Categories[2].Items)
}

func TestBuild_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	ledger := NewLedgerService(f.store)
	_, err := ledger.AddUnbounded(ctx, f.north.ID, f.chips.ID, -4)
	require.NoError(t, err)
	agg := NewAggregator(f.store)

	first, err := agg.Build(ctx)
	require.NoError(t, err)
	second, err := agg.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuild_SeesLatestWrites(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	ledger := NewLedgerService(f.store)
	agg := NewAggregator(f.store)

	before, err := agg.Build(ctx)
	require.NoError(t, err)
	_, err = ledger.AdjustBounded(ctx, f.north.ID, f.water.ID, 2)
	require.NoError(t, err)
	after, err := agg.Build(ctx)
	require.NoError(t, err)

	q, _ := before.Quantity("Getränke", "Wasser", "Lager Nord")
	assert.Equal(t, int64(0), q)
	q, _ = after.Quantity("Getränke", "Wasser", "Lager Nord")
	assert.Equal(t, int64(2), q)
}
