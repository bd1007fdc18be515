package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hamudi896/LagerAppENV/internal/core/domain"
	"github.com/hamudi896/LagerAppENV/internal/port"
)

var _ port.EntityStore = (*SQLStore)(nil)

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLStore implements port.EntityStore on database/sql. The engine specific
// parts live in its dialect; see OpenSQLite, OpenMySQL and OpenPostgres.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
}

func newSQLStore(db *sql.DB, d dialect) *SQLStore {
	return &SQLStore{db: db, dialect: d, now: time.Now}
}

// DB exposes the underlying pool for tests and tooling.
func (s *SQLStore) DB() *sql.DB { return s.db }

func (s *SQLStore) Dialect() string { return s.dialect.name }

func (s *SQLStore) Migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.statements() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute ddl: %w", err)
		}
	}
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) q(query string) string {
	return s.dialect.rebind(query)
}

func (s *SQLStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLStore) insert(ctx context.Context, q queryer, query string, args ...any) (int64, error) {
	if s.dialect.returning {
		var id int64
		if err := q.QueryRowContext(ctx, s.q(query+" RETURNING id"), args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}
	res, err := q.ExecContext(ctx, s.q(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *SQLStore) exists(ctx context.Context, q queryer, table string, id int64, lock string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, s.q("SELECT 1 FROM "+table+" WHERE id = ?"+lock), id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query %s: %w", table, err)
	}
	return true, nil
}

func (s *SQLStore) CreateLocation(ctx context.Context, name string) (domain.Location, error) {
	id, err := s.insert(ctx, s.db, `INSERT INTO locations (name) VALUES (?)`, name)
	if err != nil {
		return domain.Location{}, fmt.Errorf("insert location: %w", err)
	}
	return domain.Location{ID: id, Name: name}, nil
}

func (s *SQLStore) GetLocation(ctx context.Context, id int64) (domain.Location, error) {
	var loc domain.Location
	err := s.db.QueryRowContext(ctx, s.q(`SELECT id, name FROM locations WHERE id = ?`), id).
		Scan(&loc.ID, &loc.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Location{}, fmt.Errorf("location %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Location{}, fmt.Errorf("query location: %w", err)
	}
	return loc, nil
}

func (s *SQLStore) ListLocations(ctx context.Context) ([]domain.Location, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM locations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}
	defer rows.Close()

	out := []domain.Location{}
	for rows.Next() {
		var loc domain.Location
		if err := rows.Scan(&loc.ID, &loc.Name); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		out = append(out, loc)
	}
	return out, rows.Err()
}

func (s *SQLStore) CreateCategory(ctx context.Context, name string) (domain.Category, error) {
	id, err := s.insert(ctx, s.db, `INSERT INTO categories (name) VALUES (?)`, name)
	if err != nil {
		return domain.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return domain.Category{ID: id, Name: name}, nil
}

func (s *SQLStore) GetCategory(ctx context.Context, id int64) (domain.Category, error) {
	var cat domain.Category
	err := s.db.QueryRowContext(ctx, s.q(`SELECT id, name FROM categories WHERE id = ?`), id).
		Scan(&cat.ID, &cat.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Category{}, fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Category{}, fmt.Errorf("query category: %w", err)
	}
	return cat, nil
}

func (s *SQLStore) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	out := []domain.Category{}
	for rows.Next() {
		var cat domain.Category
		if err := rows.Scan(&cat.ID, &cat.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, cat)
	}
	return out, rows.Err()
}

// UpdateCategory checks existence first: MySQL reports zero affected rows for
// an update that changes nothing.
func (s *SQLStore) UpdateCategory(ctx context.Context, category domain.Category) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		ok, err := s.exists(ctx, tx, "categories", category.ID, "")
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("category %d: %w", category.ID, domain.ErrNotFound)
		}
		if _, err := tx.ExecContext(ctx, s.q(`UPDATE categories SET name = ? WHERE id = ?`),
			category.Name, category.ID); err != nil {
			return fmt.Errorf("update category: %w", err)
		}
		return nil
	})
}

func (s *SQLStore) DeleteCategory(ctx context.Context, id int64, cascade bool) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		ok, err := s.exists(ctx, tx, "categories", id, "")
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("category %d: %w", id, domain.ErrNotFound)
		}

		var n int
		if err := tx.QueryRowContext(ctx, s.q(`SELECT COUNT(*) FROM items WHERE category_id = ?`), id).Scan(&n); err != nil {
			return fmt.Errorf("count items: %w", err)
		}
		if n > 0 && !cascade {
			return fmt.Errorf("category %d is referenced by %d items: %w", id, n, domain.ErrConflict)
		}

		if n > 0 {
			if _, err := tx.ExecContext(ctx, s.q(`
				DELETE FROM stock
				WHERE item_id IN (SELECT id FROM items WHERE category_id = ?)`), id); err != nil {
				return fmt.Errorf("delete stock: %w", err)
			}
			if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM items WHERE category_id = ?`), id); err != nil {
				return fmt.Errorf("delete items: %w", err)
			}
		}
		if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM categories WHERE id = ?`), id); err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return nil
	})
}

func (s *SQLStore) CountItemsInCategory(ctx context.Context, id int64) (int, error) {
	if _, err := s.GetCategory(ctx, id); err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, s.q(`SELECT COUNT(*) FROM items WHERE category_id = ?`), id).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

func (s *SQLStore) CreateItem(ctx context.Context, name string, categoryID int64) (domain.Item, error) {
	var item domain.Item
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		ok, err := s.exists(ctx, tx, "categories", categoryID, s.dialect.shareLock)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("category %d: %w", categoryID, domain.ErrInvalidReference)
		}
		id, err := s.insert(ctx, tx, `INSERT INTO items (name, category_id) VALUES (?, ?)`, name, categoryID)
		if err != nil {
			return fmt.Errorf("insert item: %w", err)
		}
		item = domain.Item{ID: id, Name: name, CategoryID: categoryID}
		return nil
	})
	return item, err
}

func (s *SQLStore) GetItem(ctx context.Context, id int64) (domain.Item, error) {
	var it domain.Item
	err := s.db.QueryRowContext(ctx, s.q(`SELECT id, name, category_id FROM items WHERE id = ?`), id).
		Scan(&it.ID, &it.Name, &it.CategoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Item{}, fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Item{}, fmt.Errorf("query item: %w", err)
	}
	return it, nil
}

func (s *SQLStore) ListItems(ctx context.Context) ([]domain.Item, error) {
	return s.listItems(ctx, `SELECT id, name, category_id FROM items ORDER BY id`)
}

func (s *SQLStore) ListItemsByCategory(ctx context.Context, categoryID int64) ([]domain.Item, error) {
	return s.listItems(ctx, `SELECT id, name, category_id FROM items WHERE category_id = ? ORDER BY id`, categoryID)
}

func (s *SQLStore) listItems(ctx context.Context, query string, args ...any) ([]domain.Item, error) {
	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	out := []domain.Item{}
	for rows.Next() {
		var it domain.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.CategoryID); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateItem(ctx context.Context, item domain.Item) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		ok, err := s.exists(ctx, tx, "items", item.ID, "")
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("item %d: %w", item.ID, domain.ErrNotFound)
		}
		ok, err = s.exists(ctx, tx, "categories", item.CategoryID, s.dialect.shareLock)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("category %d: %w", item.CategoryID, domain.ErrInvalidReference)
		}
		if _, err := tx.ExecContext(ctx, s.q(`UPDATE items SET name = ?, category_id = ? WHERE id = ?`),
			item.Name, item.CategoryID, item.ID); err != nil {
			return fmt.Errorf("update item: %w", err)
		}
		return nil
	})
}

func (s *SQLStore) DeleteItem(ctx context.Context, id int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM stock WHERE item_id = ?`), id); err != nil {
			return fmt.Errorf("delete stock: %w", err)
		}
		res, err := tx.ExecContext(ctx, s.q(`DELETE FROM items WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		return deletedOne(res, "item", id)
	})
}

// deletedOne maps a DELETE by primary key that touched no row to ErrNotFound.
func deletedOne(res sql.Result, kind string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s %d: rows affected: %w", kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, domain.ErrNotFound)
	}
	return nil
}

const stockColumns = `location_id, item_id, quantity, version, updated_at`

func scanStock(row interface{ Scan(...any) error }) (domain.Stock, error) {
	var st domain.Stock
	err := row.Scan(&st.LocationID, &st.ItemID, &st.Quantity, &st.Version, &st.UpdatedAt)
	return st, err
}

func (s *SQLStore) GetStock(ctx context.Context, locationID, itemID int64) (domain.Stock, bool, error) {
	st, err := scanStock(s.db.QueryRowContext(ctx, s.q(`
		SELECT `+stockColumns+`
		FROM stock WHERE location_id = ? AND item_id = ?`), locationID, itemID))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Stock{}, false, nil
	}
	if err != nil {
		return domain.Stock{}, false, fmt.Errorf("query stock: %w", err)
	}
	return st, true, nil
}

func (s *SQLStore) ListStockByLocation(ctx context.Context, locationID int64) ([]domain.Stock, error) {
	return s.listStock(ctx, `SELECT `+stockColumns+` FROM stock WHERE location_id = ? ORDER BY item_id`, locationID)
}

func (s *SQLStore) ListStock(ctx context.Context) ([]domain.Stock, error) {
	return s.listStock(ctx, `SELECT `+stockColumns+` FROM stock ORDER BY location_id, item_id`)
}

func (s *SQLStore) listStock(ctx context.Context, query string, args ...any) ([]domain.Stock, error) {
	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query stock: %w", err)
	}
	defer rows.Close()

	out := []domain.Stock{}
	for rows.Next() {
		st, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

const maxStockAttempts = 3

// lockedQuantity reads the current quantity of a pair, 0 when no row exists,
// and locks the row until the transaction ends.
func (s *SQLStore) lockedQuantity(ctx context.Context, tx *sql.Tx, locationID, itemID int64) (int64, error) {
	var qty int64
	err := tx.QueryRowContext(ctx, s.q(`
		SELECT quantity FROM stock
		WHERE location_id = ? AND item_id = ?`+s.dialect.rowLock), locationID, itemID).Scan(&qty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query stock: %w", err)
	}
	return qty, nil
}

// ApplyStockDelta checks both references, reads the current row under lock,
// upserts the record and reads it back in one transaction, so concurrent
// changes to the same pair serialize. A result outside the int64 range fails
// with domain.ErrInvalidInput and leaves the row untouched. A transaction the
// engine aborted as a deadlock victim is retried.
func (s *SQLStore) ApplyStockDelta(ctx context.Context, locationID, itemID, delta int64, mode domain.AdjustMode) (domain.Stock, error) {
	var (
		st  domain.Stock
		err error
	)
	for attempt := 1; ; attempt++ {
		st, err = s.applyStockDelta(ctx, locationID, itemID, delta, mode)
		if err == nil || attempt == maxStockAttempts || !s.dialect.canRetry(err) {
			return st, err
		}
	}
}

func (s *SQLStore) applyStockDelta(ctx context.Context, locationID, itemID, delta int64, mode domain.AdjustMode) (domain.Stock, error) {
	var st domain.Stock
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		ok, err := s.exists(ctx, tx, "locations", locationID, s.dialect.shareLock)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("location %d: %w", locationID, domain.ErrInvalidReference)
		}
		ok, err = s.exists(ctx, tx, "items", itemID, s.dialect.shareLock)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("item %d: %w", itemID, domain.ErrInvalidReference)
		}

		current, err := s.lockedQuantity(ctx, tx, locationID, itemID)
		if err != nil {
			return err
		}
		next, err := mode.Apply(current, delta)
		if err != nil {
			return err
		}

		// next is only inserted when no row exists; an existing row is
		// recomputed from its own quantity by the upsert.
		now := s.now().UTC()
		if _, err := tx.ExecContext(ctx, s.q(s.dialect.upsert(mode)),
			locationID, itemID, next, now, delta, now,
		); err != nil {
			if s.dialect.outOfRange(err) {
				return fmt.Errorf("upsert stock: %w", domain.ErrInvalidInput)
			}
			return fmt.Errorf("upsert stock: %w", err)
		}

		st, err = scanStock(tx.QueryRowContext(ctx, s.q(`
			SELECT `+stockColumns+`
			FROM stock WHERE location_id = ? AND item_id = ?`), locationID, itemID))
		if err != nil {
			return fmt.Errorf("read stock: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Stock{}, err
	}
	return st, nil
}
