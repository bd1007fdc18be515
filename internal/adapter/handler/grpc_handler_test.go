package handler

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/hamudi896/LagerAppENV/internal/adapter/handler/rpc"
	"github.com/hamudi896/LagerAppENV/internal/adapter/storage"
	"github.com/hamudi896/LagerAppENV/internal/core/domain"
	"github.com/hamudi896/LagerAppENV/internal/core/service"
)

func startLedgerServer(t *testing.T, f *fixture) *rpc.LedgerClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	rpc.RegisterLedgerServer(srv, NewGRPCHandler(f.ledger, f.aggregator, f.logger))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return rpc.NewLedgerClient(conn)
}

type seeded struct {
	loc  domain.Location
	item domain.Item
}

func seed(t *testing.T, f *fixture) seeded {
	t.Helper()
	ctx := context.Background()
	loc, err := f.catalog.CreateLocation(ctx, "Lager")
	require.NoError(t, err)
	cat, err := f.catalog.CreateCategory(ctx, "Getränke")
	require.NoError(t, err)
	item, err := f.catalog.CreateItem(ctx, "Wasser", cat.ID)
	require.NoError(t, err)
	return seeded{loc: loc, item: item}
}

func TestGRPC_AdjustAndAdd(t *testing.T) {
	f := newFixture(t, service.DeleteReject)
	s := seed(t, f)
	client := startLedgerServer(t, f)
	ctx := context.Background()

	resp, err := client.AddStock(ctx, &rpc.AdjustStockRequest{LocationId: s.loc.ID, ItemId: s.item.ID, Adjustment: 5})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "stock updated", resp.Message)
	assert.Equal(t, int64(5), resp.NewQuantity)

	resp, err = client.AdjustStock(ctx, &rpc.AdjustStockRequest{LocationId: s.loc.ID, ItemId: s.item.ID, Adjustment: -100})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, int64(0), resp.NewQuantity)

	resp, err = client.AddStock(ctx, &rpc.AdjustStockRequest{LocationId: s.loc.ID, ItemId: s.item.ID, Adjustment: -3})
	require.NoError(t, err)
	assert.Equal(t, int64(-3), resp.NewQuantity)

	resp, err = client.AdjustStock(ctx, &rpc.AdjustStockRequest{LocationId: 999, ItemId: s.item.ID, Adjustment: 1})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "unknown location or item", resp.Message)
}

func TestGRPC_DuplicateRequest(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	f := newFixture(t, service.DeleteReject,
		service.WithIdempotency(storage.NewRedisAdapter(rdb, time.Minute, "test")))
	s := seed(t, f)
	client := startLedgerServer(t, f)
	ctx := context.Background()

	req := &rpc.AdjustStockRequest{RequestId: "req-1", LocationId: s.loc.ID, ItemId: s.item.ID, Adjustment: 2}
	resp, err := client.AddStock(ctx, req)
	require.NoError(t, err)
	require.True(t, resp.Success)

	resp, err = client.AddStock(ctx, req)
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "duplicate request", resp.Message)

	qty, err := f.ledger.Quantity(ctx, s.loc.ID, s.item.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), qty)
}

func TestGRPC_LocationStock(t *testing.T) {
	f := newFixture(t, service.DeleteReject)
	s := seed(t, f)
	client := startLedgerServer(t, f)
	ctx := context.Background()

	_, err := f.ledger.AddUnbounded(ctx, s.loc.ID, s.item.ID, 7)
	require.NoError(t, err)

	resp, err := client.LocationStock(ctx, &rpc.LocationStockRequest{LocationId: s.loc.ID})
	require.NoError(t, err)
	assert.Equal(t, map[int64]int64{s.item.ID: 7}, resp.Quantities)

	_, err = client.LocationStock(ctx, &rpc.LocationStockRequest{LocationId: 999})
	require.Error(t, err)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestGRPC_Dashboard(t *testing.T) {
	f := newFixture(t, service.DeleteReject)
	s := seed(t, f)
	client := startLedgerServer(t, f)
	ctx := context.Background()

	_, err := f.ledger.AdjustBounded(ctx, s.loc.ID, s.item.ID, 4)
	require.NoError(t, err)

	resp, err := client.Dashboard(ctx, &rpc.DashboardRequest{})
	require.NoError(t, err)
	assert.Equal(t, []domain.Location{s.loc}, resp.Matrix.Locations)
	qty, ok := resp.Matrix.Quantity("Getränke", "Wasser", "Lager")
	assert.True(t, ok)
	assert.Equal(t, int64(4), qty)
}
