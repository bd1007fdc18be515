package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/hamudi896/LagerAppENV/internal/adapter/storage"
	"github.com/hamudi896/LagerAppENV/internal/core/domain"
	"github.com/hamudi896/LagerAppENV/internal/core/service"
	"github.com/hamudi896/LagerAppENV/internal/port"
)

const (
	redisAddr       = "localhost:6379"
	addRequests     = 100
	adjustRequests  = 150
	dedupRequests   = 40
	duplicatesPerID = 3
)

func main() {
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "lagerapp-stress-*")
	if err != nil {
		log.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	store, err := storage.Open(ctx, storage.DriverSQLite, filepath.Join(dir, "stress.db"), storage.DefaultPoolConfig())
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	// Seed one location and one item
	loc, err := store.CreateLocation(ctx, "Lager Nord")
	if err != nil {
		log.Fatalf("failed to create location: %v", err)
	}
	cat, err := store.CreateCategory(ctx, "Getränke")
	if err != nil {
		log.Fatalf("failed to create category: %v", err)
	}
	item, err := store.CreateItem(ctx, "Wasser", cat.ID)
	if err != nil {
		log.Fatalf("failed to create item: %v", err)
	}

	ledger := service.NewLedgerService(store)

	// Phase 1: unbounded +1 from many goroutines
	start := time.Now()
	addOK, addFail := run(addRequests, func(int) error {
		_, err := ledger.AddUnbounded(ctx, loc.ID, item.ID, 1)
		return err
	})
	afterAdd, _ := ledger.Quantity(ctx, loc.ID, item.ID)

	// Phase 2: more bounded -1 requests than there is stock
	adjustOK, adjustFail := run(adjustRequests, func(int) error {
		_, err := ledger.AdjustBounded(ctx, loc.ID, item.ID, -1)
		return err
	})
	afterAdjust, _ := ledger.Quantity(ctx, loc.ID, item.ID)
	elapsed := time.Since(start)

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Add Requests:      %d (ok %d, failed %d)\n", addRequests, addOK, addFail)
	fmt.Printf("Adjust Requests:   %d (ok %d, failed %d)\n", adjustRequests, adjustOK, adjustFail)
	fmt.Printf("Stock After Add:   %d\n", afterAdd)
	fmt.Printf("Stock After Adj.:  %d\n", afterAdjust)
	fmt.Printf("Duration:          %v\n", elapsed)
	fmt.Println("==========================================")

	if afterAdd == addRequests {
		fmt.Printf("PASS: %d concurrent additions, no lost updates\n", addRequests)
	} else {
		fmt.Printf("FAIL: Expected stock %d after additions, got %d\n", addRequests, afterAdd)
	}
	if afterAdjust == 0 {
		fmt.Println("PASS: Bounded adjustments stopped at 0")
	} else {
		fmt.Printf("FAIL: Expected stock 0, got %d\n", afterAdjust)
	}

	dedupPhase(ctx, store, loc.ID, item.ID)
}

// dedupPhase replays every request id several times against Redis. Skipped
// when no Redis is reachable.
func dedupPhase(ctx context.Context, store port.EntityStore, locationID, itemID int64) {
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		fmt.Printf("SKIP: Deduplication phase, redis unavailable: %v\n", err)
		return
	}

	adapter := storage.NewRedisAdapter(rdb, time.Minute, uuid.NewString())
	ledger := service.NewLedgerService(store, service.WithIdempotency(adapter))
	before, _ := ledger.Quantity(ctx, locationID, itemID)

	ids := make([]string, dedupRequests)
	for i := range ids {
		ids[i] = uuid.NewString()
	}

	var duplicates atomic.Int32
	ok, _ := run(dedupRequests*duplicatesPerID, func(i int) error {
		_, err := ledger.ApplyOnce(ctx, ids[i%dedupRequests], domain.AdjustUnbounded, locationID, itemID, 1)
		if errors.Is(err, domain.ErrDuplicateRequest) {
			duplicates.Add(1)
		}
		return err
	})
	after, _ := ledger.Quantity(ctx, locationID, itemID)

	fmt.Printf("Dedup Requests:    %d (applied %d, duplicates %d)\n", dedupRequests*duplicatesPerID, ok, duplicates.Load())
	if after-before == dedupRequests {
		fmt.Printf("PASS: Each of %d request ids applied once\n", dedupRequests)
	} else {
		fmt.Printf("FAIL: Expected +%d, got %+d\n", dedupRequests, after-before)
	}
}

func run(n int, fn func(i int) error) (int32, int32) {
	var successCount atomic.Int32
	var failCount atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := fn(i); err != nil {
				failCount.Add(1)
				return
			}
			successCount.Add(1)
		}(i)
	}
	wg.Wait()
	return successCount.Load(), failCount.Load()
}
