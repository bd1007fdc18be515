package storage

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/hamudi896/LagerAppENV/internal/core/domain"
)

//go:embed schema/sqlite.sql
var sqliteSchema string

//go:embed schema/mysql.sql
var mysqlSchema string

//go:embed schema/postgres.sql
var postgresSchema string

// dialect captures what differs between the SQL engines. Queries are written
// with ? placeholders and rebound per dialect.
type dialect struct {
	name      string
	schema    string
	returning bool   // INSERT ... RETURNING id instead of LastInsertId
	numbered  bool   // $1, $2 ... placeholders
	shareLock string // appended to reference checks inside a stock transaction
	rowLock   string // appended to the read of the current stock row
	upsert    func(mode domain.AdjustMode) string
	retryable func(err error) bool // deadlock or serialization failure
	overflow  func(err error) bool // arithmetic left the BIGINT range
}

var (
	sqliteDialect = dialect{
		name:      "sqlite",
		schema:    sqliteSchema,
		returning: true,
		upsert: func(mode domain.AdjustMode) string {
			return `INSERT INTO stock (location_id, item_id, quantity, version, updated_at)
				VALUES (?, ?, ?, 1, ?)
				ON CONFLICT (location_id, item_id) DO UPDATE
				SET quantity = ` + floorExpr(mode, "MAX", "stock.quantity") + `,
					version = stock.version + 1,
					updated_at = ?`
		},
	}

	mysqlDialect = dialect{
		name:      "mysql",
		schema:    mysqlSchema,
		shareLock: " FOR SHARE",
		rowLock:   " FOR UPDATE",
		retryable: mysqlRetryable,
		overflow:  mysqlOverflow,
		upsert: func(mode domain.AdjustMode) string {
			return `INSERT INTO stock (location_id, item_id, quantity, version, updated_at)
				VALUES (?, ?, ?, 1, ?)
				ON DUPLICATE KEY UPDATE
					quantity = ` + floorExpr(mode, "GREATEST", "quantity") + `,
					version = version + 1,
					updated_at = ?`
		},
	}

	postgresDialect = dialect{
		name:      "postgres",
		schema:    postgresSchema,
		returning: true,
		numbered:  true,
		shareLock: " FOR SHARE",
		rowLock:   " FOR UPDATE",
		retryable: postgresRetryable,
		overflow:  postgresOverflow,
		upsert: func(mode domain.AdjustMode) string {
			return `INSERT INTO stock (location_id, item_id, quantity, version, updated_at)
				VALUES (?, ?, ?, 1, ?)
				ON CONFLICT (location_id, item_id) DO UPDATE
				SET quantity = ` + floorExpr(mode, "GREATEST", "stock.quantity") + `,
					version = stock.version + 1,
					updated_at = ?`
		},
	}
)

// floorExpr is "current + ?" for unbounded adjustments and "fn(current + ?, 0)"
// for bounded ones.
func floorExpr(mode domain.AdjustMode, fn, current string) string {
	if mode == domain.AdjustBounded {
		return fmt.Sprintf("%s(%s + ?, 0)", fn, current)
	}
	return current + " + ?"
}

func (d dialect) canRetry(err error) bool {
	return d.retryable != nil && d.retryable(err)
}

func (d dialect) outOfRange(err error) bool {
	return d.overflow != nil && d.overflow(err)
}

func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// statements splits the schema on semicolons; drivers such as go-sql-driver/mysql
// reject multi-statement Exec calls by default.
func (d dialect) statements() []string {
	var out []string
	for _, stmt := range strings.Split(d.schema, ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			out = append(out, s)
		}
	}
	return out
}
