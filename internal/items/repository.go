package items

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/stockroom-app/stockroom/internal/listquery"
	"github.com/stockroom-app/stockroom/internal/platform/httpx"
)

// Repository defines persistence operations for items.
type Repository interface {
	List(ctx context.Context, q listquery.Query) (listquery.Result[Item], error)
	Get(ctx context.Context, id int64) (Item, error)
	Create(ctx context.Context, item Item) (Item, error)
	Update(ctx context.Context, id int64, item Item) error
	SoftDelete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (Stats, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, q listquery.Query) (listquery.Result[Item], error) {
	q = q.Normalize()
	sel, count, err := listquery.Build(q, Spec())
	if err != nil {
		return listquery.Result[Item]{}, err
	}

	countSQL, countArgs, err := count.ToSql()
	if err != nil {
		return listquery.Result[Item]{}, fmt.Errorf("items: build count: %w", err)
	}
	var total int
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return listquery.Result[Item]{}, fmt.Errorf("items: count: %w", err)
	}

	selSQL, selArgs, err := sel.ToSql()
	if err != nil {
		return listquery.Result[Item]{}, fmt.Errorf("items: build select: %w", err)
	}
	rows, err := r.db.Query(ctx, selSQL, selArgs...)
	if err != nil {
		return listquery.Result[Item]{}, fmt.Errorf("items: list: %w", err)
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return listquery.Result[Item]{}, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return listquery.Result[Item]{}, err
	}
	return listquery.Result[Item]{
		Rows:       out,
		Pagination: listquery.NewPagination(q.Page, q.PerPage, total),
	}, nil
}

const itemColumns = `items.id, items.name, items.sku, items.description,
	items.quantity, items.threshold, items.unit_price,
	items.category_id, categories.description,
	items.location_id, locations.description,
	items.supplier_id, items.status_id, item_statuses.description,
	items.is_active, items.created_at, items.updated_at`

const itemJoins = `LEFT JOIN categories ON categories.id = items.category_id
	LEFT JOIN locations ON locations.id = items.location_id
	LEFT JOIN item_statuses ON item_statuses.id = items.status_id`

func scanItem(row pgx.Row) (Item, error) {
	var it Item
	err := row.Scan(
		&it.ID, &it.Name, &it.SKU, &it.Description,
		&it.Quantity, &it.Threshold, &it.UnitPrice,
		&it.CategoryID, &it.CategoryName,
		&it.LocationID, &it.LocationName,
		&it.SupplierID, &it.StatusID, &it.StatusName,
		&it.IsActive, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return Item{}, fmt.Errorf("items: scan: %w", err)
	}
	return it, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items ` + itemJoins + ` WHERE items.id = $1`
	item, err := scanItem(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, httpx.ErrNotFound
		}
		return Item{}, err
	}
	return item, nil
}

func (r *repository) Create(ctx context.Context, item Item) (Item, error) {
	query := `INSERT INTO items (name, sku, description, quantity, threshold, unit_price,
		category_id, location_id, supplier_id, status_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, true, $11, $11) RETURNING id`
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, query,
		item.Name, item.SKU, item.Description, item.Quantity, item.Threshold, item.UnitPrice,
		item.CategoryID, item.LocationID, item.SupplierID, item.StatusID, now,
	).Scan(&item.ID)
	if err != nil {
		return Item{}, mapPgError(err)
	}
	item.IsActive = true
	item.CreatedAt = now
	item.UpdatedAt = now
	return item, nil
}

func (r *repository) Update(ctx context.Context, id int64, item Item) error {
	query := `UPDATE items SET name = $1, sku = $2, description = $3, quantity = $4,
		threshold = $5, unit_price = $6, category_id = $7, location_id = $8,
		supplier_id = $9, status_id = $10, updated_at = $11 WHERE id = $12 AND is_active`
	tag, err := r.db.Exec(ctx, query,
		item.Name, item.SKU, item.Description, item.Quantity, item.Threshold, item.UnitPrice,
		item.CategoryID, item.LocationID, item.SupplierID, item.StatusID, time.Now().UTC(), id,
	)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE items SET is_active = false, updated_at = $1 WHERE id = $2 AND is_active`, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// Stats counts per status concurrently.
func (r *repository) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	g, ctx := errgroup.WithContext(ctx)

	countWhere := func(dst *int, where string, args ...any) func() error {
		return func() error {
			return r.db.QueryRow(ctx, `SELECT COUNT(*) FROM items WHERE is_active`+where, args...).Scan(dst)
		}
	}
	g.Go(countWhere(&stats.Total, ``))
	g.Go(countWhere(&stats.InStock, ` AND status_id = $1`, StatusInStock))
	g.Go(countWhere(&stats.LowStock, ` AND status_id = $1`, StatusLowStock))
	g.Go(countWhere(&stats.OutOfStock, ` AND status_id = $1`, StatusOutOfStock))

	if err := g.Wait(); err != nil {
		return Stats{}, fmt.Errorf("items: stats: %w", err)
	}
	return stats, nil
}

// mapPgError converts SQLSTATE unique violations into the duplicate sentinel.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", httpx.ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}
