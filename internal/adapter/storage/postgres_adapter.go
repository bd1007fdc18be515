package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

const defaultPostgresDSN = "postgres://localhost/lagerapp?sslmode=disable"

func NewPostgresStore(db *sql.DB) *SQLStore {
	return newSQLStore(db, postgresDialect)
}

func OpenPostgres(ctx context.Context, dsn string, pool PoolConfig) (*SQLStore, error) {
	if dsn == "" {
		dsn = defaultPostgresDSN
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	pool.apply(db)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewPostgresStore(db), nil
}

// postgresRetryable reports serialization failures and detected deadlocks.
func postgresRetryable(err error) bool {
	var pe *pgconn.PgError
	return errors.As(err, &pe) && (pe.Code == "40001" || pe.Code == "40P01")
}

// postgresOverflow reports numeric_value_out_of_range.
func postgresOverflow(err error) bool {
	var pe *pgconn.PgError
	return errors.As(err, &pe) && pe.Code == "22003"
}
