package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

// PoolConfig tunes the database/sql connection pool.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpenConns:    50,
		MaxIdleConns:    25,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

func (p PoolConfig) apply(db *sql.DB) {
	if p.MaxOpenConns > 0 {
		db.SetMaxOpenConns(p.MaxOpenConns)
	}
	if p.MaxIdleConns > 0 {
		db.SetMaxIdleConns(p.MaxIdleConns)
	}
	if p.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(p.ConnMaxLifetime)
	}
}

// NewMySQLStore wraps an open MySQL pool. The DSN must carry parseTime=true.
func NewMySQLStore(db *sql.DB) *SQLStore {
	return newSQLStore(db, mysqlDialect)
}

// OpenMySQL connects to MySQL, forcing parseTime so DATETIME columns scan into
// time.Time.
func OpenMySQL(ctx context.Context, dsn string, pool PoolConfig) (*SQLStore, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	pool.apply(db)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return NewMySQLStore(db), nil
}

// mysqlRetryable reports deadlocks (1213) and lock wait timeouts (1205).
func mysqlRetryable(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && (me.Number == 1213 || me.Number == 1205)
}

// mysqlOverflow reports BIGINT value out of range (1690).
func mysqlOverflow(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1690
}
