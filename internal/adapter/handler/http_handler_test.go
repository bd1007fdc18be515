package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamudi896/LagerAppENV/internal/adapter/spreadsheet"
	"github.com/hamudi896/LagerAppENV/internal/adapter/storage"
	"github.com/hamudi896/LagerAppENV/internal/core/domain"
	"github.com/hamudi896/LagerAppENV/internal/core/service"
)

type fixture struct {
	store      *storage.MemoryStore
	catalog    *service.CatalogService
	ledger     *service.LedgerService
	aggregator *service.Aggregator
	exporter   *service.Exporter
	logger     *slog.Logger
}

func newFixture(t *testing.T, policy service.DeletePolicy, opts ...service.Option) *fixture {
	t.Helper()
	store := storage.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]service.Option{service.WithLogger(logger)}, opts...)
	catalog, err := service.NewCatalogService(store, policy, opts...)
	require.NoError(t, err)
	agg := service.NewAggregator(store)
	return &fixture{
		store:      store,
		catalog:    catalog,
		ledger:     service.NewLedgerService(store, opts...),
		aggregator: agg,
		exporter:   service.NewExporter(agg, spreadsheet.NewExcelEncoder()),
		logger:     logger,
	}
}

func (f *fixture) router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHTTPHandler(f.catalog, f.ledger, f.aggregator, f.exporter, f.logger)
	return h.Router(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("metrics"))
	}))
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthAndMetrics(t *testing.T) {
	r := newFixture(t, service.DeleteReject).router()

	rec := do(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(t, r, http.MethodGet, "/metrics", nil)
	assert.Equal(t, "metrics", rec.Body.String())
}

func TestCatalogRoutes(t *testing.T) {
	r := newFixture(t, service.DeleteReject).router()

	rec := do(t, r, http.MethodPost, "/api/locations", gin.H{"name": "Lager Nord"})
	require.Equal(t, http.StatusCreated, rec.Code)
	loc := decode[domain.Location](t, rec)
	assert.Equal(t, "Lager Nord", loc.Name)

	rec = do(t, r, http.MethodPost, "/api/categories", gin.H{"name": "Getränke"})
	require.Equal(t, http.StatusCreated, rec.Code)
	cat := decode[domain.Category](t, rec)

	rec = do(t, r, http.MethodPost, "/api/items", gin.H{"name": "Wasser", "category_id": cat.ID})
	require.Equal(t, http.StatusCreated, rec.Code)
	item := decode[domain.Item](t, rec)

	rec = do(t, r, http.MethodPut, "/api/categories/"+itoa(cat.ID), gin.H{"name": "Softdrinks"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Softdrinks", decode[domain.Category](t, rec).Name)

	rec = do(t, r, http.MethodGet, "/api/items/grouped", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	groups := decode[[]domain.CategoryItems](t, rec)
	require.Len(t, groups, 1)
	assert.Equal(t, []domain.Item{item}, groups[0].Items)

	rec = do(t, r, http.MethodGet, "/api/locations/"+itoa(loc.ID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, r, http.MethodGet, "/api/locations/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, r, http.MethodGet, "/api/locations/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogRoutes_Errors(t *testing.T) {
	f := newFixture(t, service.DeleteReject)
	r := f.router()
	ctx := context.Background()
	cat, err := f.catalog.CreateCategory(ctx, "Getränke")
	require.NoError(t, err)
	item, err := f.catalog.CreateItem(ctx, "Wasser", cat.ID)
	require.NoError(t, err)

	rec := do(t, r, http.MethodPost, "/api/items", gin.H{"name": "Ghost", "category_id": 999})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/locations", gin.H{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodDelete, "/api/categories/"+itoa(cat.ID), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, r, http.MethodPut, "/api/items/"+itoa(item.ID), gin.H{"name": "Wasser", "category_id": 999})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, r, http.MethodDelete, "/api/items/"+itoa(item.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, r, http.MethodDelete, "/api/items/"+itoa(item.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, r, http.MethodDelete, "/api/categories/"+itoa(cat.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestStockRoutes(t *testing.T) {
	f := newFixture(t, service.DeleteReject)
	r := f.router()
	ctx := context.Background()
	loc, err := f.catalog.CreateLocation(ctx, "Lager")
	require.NoError(t, err)
	cat, err := f.catalog.CreateCategory(ctx, "Getränke")
	require.NoError(t, err)
	item, err := f.catalog.CreateItem(ctx, "Wasser", cat.ID)
	require.NoError(t, err)

	adjust := func(path string, delta int64) *httptest.ResponseRecorder {
		return do(t, r, http.MethodPost, path, gin.H{"location_id": loc.ID, "item_id": item.ID, "adjustment": delta})
	}

	rec := adjust("/api/stock/adjust", 5)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"new_quantity":5}`, rec.Body.String())

	rec = adjust("/api/stock/adjust", -100)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"new_quantity":0}`, rec.Body.String())

	rec = adjust("/api/stock/add", -95)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"new_quantity":-95}`, rec.Body.String())

	// Zero is a valid adjustment
	rec = adjust("/api/stock/add", 0)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"new_quantity":-95}`, rec.Body.String())

	// Missing adjustment is not
	rec = do(t, r, http.MethodPost, "/api/stock/add", gin.H{"location_id": loc.ID, "item_id": item.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodPost, "/api/stock/adjust", gin.H{"location_id": loc.ID, "item_id": 999, "adjustment": 1})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/locations/"+itoa(loc.ID)+"/stock", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]int64{itoa(item.ID): -95}, decode[map[string]int64](t, rec))

	rec = do(t, r, http.MethodGet, "/api/locations/"+itoa(loc.ID)+"/sheet", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sheet := decode[domain.LocationSheet](t, rec)
	require.Len(t, sheet.Groups, 1)
	assert.Equal(t, int64(-95), sheet.Groups[0].Items[0].Quantity)

	rec = do(t, r, http.MethodGet, "/api/locations/999/stock", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStockRoutes_DuplicateRequest(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	f := newFixture(t, service.DeleteReject,
		service.WithIdempotency(storage.NewRedisAdapter(rdb, time.Minute, "test")))
	r := f.router()
	ctx := context.Background()
	loc, err := f.catalog.CreateLocation(ctx, "Lager")
	require.NoError(t, err)
	cat, err := f.catalog.CreateCategory(ctx, "Getränke")
	require.NoError(t, err)
	item, err := f.catalog.CreateItem(ctx, "Wasser", cat.ID)
	require.NoError(t, err)

	body := gin.H{"request_id": "req-1", "location_id": loc.ID, "item_id": item.ID, "adjustment": 4}
	rec := do(t, r, http.MethodPost, "/api/stock/add", body)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, r, http.MethodPost, "/api/stock/add", body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// A failed request releases its id for a corrected retry
	bad := gin.H{"request_id": "req-2", "location_id": loc.ID, "item_id": 999, "adjustment": 1}
	rec = do(t, r, http.MethodPost, "/api/stock/add", bad)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	bad["item_id"] = item.ID
	rec = do(t, r, http.MethodPost, "/api/stock/add", bad)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"new_quantity":5}`, rec.Body.String())
}

func TestDashboardRoutes(t *testing.T) {
	f := newFixture(t, service.DeleteReject)
	r := f.router()
	ctx := context.Background()
	loc, err := f.catalog.CreateLocation(ctx, "Lager")
	require.NoError(t, err)
	cat, err := f.catalog.CreateCategory(ctx, "Getränke")
	require.NoError(t, err)
	item, err := f.catalog.CreateItem(ctx, "Wasser", cat.ID)
	require.NoError(t, err)
	_, err = f.ledger.AdjustBounded(ctx, loc.ID, item.ID, 3)
	require.NoError(t, err)

	rec := do(t, r, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Locations []domain.Location                      `json:"locations"`
		Matrix    map[string]map[string]map[string]int64 `json:"matrix"`
		Rows      []domain.MatrixCategory                `json:"rows"`
	}](t, rec)
	assert.Equal(t, []domain.Location{loc}, body.Locations)
	assert.Equal(t, int64(3), body.Matrix["Getränke"]["Wasser"]["Lager"])
	require.Len(t, body.Rows, 1)

	rec = do(t, r, http.MethodGet, "/api/dashboard/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, spreadsheet.ContentTypeXLSX, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="dashboard_bestande.xlsx"`, rec.Header().Get("Content-Disposition"))
	assert.NotEmpty(t, rec.Body.Bytes())

	// No archive configured
	rec = do(t, r, http.MethodPost, "/api/dashboard/export/archive", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, httpStatus(domain.ErrNotFound))
	assert.Equal(t, http.StatusUnprocessableEntity, httpStatus(domain.ErrInvalidReference))
	assert.Equal(t, http.StatusBadRequest, httpStatus(domain.ErrInvalidInput))
	assert.Equal(t, http.StatusConflict, httpStatus(domain.ErrConflict))
	assert.Equal(t, http.StatusConflict, httpStatus(domain.ErrDuplicateRequest))
	assert.Equal(t, http.StatusInternalServerError, httpStatus(io.ErrUnexpectedEOF))
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
