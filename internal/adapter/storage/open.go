package storage

import (
	"context"
	"fmt"

	"github.com/hamudi896/LagerAppENV/internal/port"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Open connects the named driver and applies the schema.
func Open(ctx context.Context, driver, dsn string, pool PoolConfig) (port.EntityStore, error) {
	var (
		store port.EntityStore
		err   error
	)
	switch driver {
	case DriverMemory:
		store = NewMemoryStore()
	case DriverSQLite, "":
		store, err = OpenSQLite(ctx, dsn)
	case DriverMySQL:
		store, err = OpenMySQL(ctx, dsn, pool)
	case DriverPostgres:
		store, err = OpenPostgres(ctx, dsn, pool)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrate %s: %w", driver, err)
	}
	return store, nil
}
