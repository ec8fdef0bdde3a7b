package orders

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
	"github.com/stockroom-app/stockroom/internal/platform/db"
	"github.com/stockroom-app/stockroom/internal/platform/httpx"
)

// Repository defines persistence operations for purchase orders.
type Repository interface {
	List(ctx context.Context, q listquery.Query) (listquery.Result[Order], error)
	Get(ctx context.Context, id int64) (Detail, error)
	Create(ctx context.Context, ord Order, lines []Line) (int64, error)
	Edit(ctx context.Context, id int64, ord Order, lines []Line) error
	Cancel(ctx context.Context, id int64) error
	Stats(ctx context.Context) (Stats, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) List(ctx context.Context, q listquery.Query) (listquery.Result[Order], error) {
	q = q.Normalize()
	sel, count, err := listquery.Build(q, Spec())
	if err != nil {
		return listquery.Result[Order]{}, err
	}

	countSQL, countArgs, err := count.ToSql()
	if err != nil {
		return listquery.Result[Order]{}, fmt.Errorf("orders: build count: %w", err)
	}
	var total int
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return listquery.Result[Order]{}, fmt.Errorf("orders: count: %w", err)
	}

	selSQL, selArgs, err := sel.ToSql()
	if err != nil {
		return listquery.Result[Order]{}, fmt.Errorf("orders: build select: %w", err)
	}
	rows, err := r.db.Query(ctx, selSQL, selArgs...)
	if err != nil {
		return listquery.Result[Order]{}, fmt.Errorf("orders: list: %w", err)
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		ord, err := scanOrder(rows)
		if err != nil {
			return listquery.Result[Order]{}, err
		}
		out = append(out, ord)
	}
	if err := rows.Err(); err != nil {
		return listquery.Result[Order]{}, err
	}
	return listquery.Result[Order]{
		Rows:       out,
		Pagination: listquery.NewPagination(q.Page, q.PerPage, total),
	}, nil
}

const orderColumns = `purchase_orders.id,
	purchase_orders.supplier_id, suppliers.name,
	purchase_orders.status_id, order_statuses.description,
	purchase_orders.priority_id, order_priorities.description,
	purchase_orders.order_date, purchase_orders.expected_delivery_date,
	purchase_orders.received_date,
	purchase_orders.is_active, purchase_orders.created_at, purchase_orders.updated_at,
	(SELECT COUNT(*) FROM purchase_order_items poi
		WHERE poi.order_id = purchase_orders.id AND poi.is_active),
	COALESCE((SELECT SUM(poi.quantity * poi.purchase_price)
		FROM purchase_order_items poi
		WHERE poi.order_id = purchase_orders.id AND poi.is_active), 0)`

const orderJoins = `LEFT JOIN suppliers ON suppliers.id = purchase_orders.supplier_id
	LEFT JOIN order_statuses ON order_statuses.id = purchase_orders.status_id
	LEFT JOIN order_priorities ON order_priorities.id = purchase_orders.priority_id`

func scanOrder(row pgx.Row) (Order, error) {
	var ord Order
	err := row.Scan(
		&ord.ID,
		&ord.SupplierID, &ord.SupplierName,
		&ord.StatusID, &ord.StatusName,
		&ord.PriorityID, &ord.PriorityName,
		&ord.OrderDate, &ord.ExpectedDeliveryDate,
		&ord.ReceivedDate,
		&ord.IsActive, &ord.CreatedAt, &ord.UpdatedAt,
		&ord.ItemCount, &ord.TotalAmount,
	)
	if err != nil {
		return Order{}, fmt.Errorf("orders: scan: %w", err)
	}
	return ord, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Detail, error) {
	query := `SELECT ` + orderColumns + ` FROM purchase_orders ` + orderJoins + ` WHERE purchase_orders.id = $1`
	ord, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Detail{}, httpx.ErrNotFound
		}
		return Detail{}, err
	}

	lines, err := r.activeLines(ctx, r.db, id)
	if err != nil {
		return Detail{}, err
	}
	return Detail{Order: ord, Lines: lines}, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *repository) activeLines(ctx context.Context, q querier, orderID int64) ([]Line, error) {
	rows, err := q.Query(ctx, `SELECT poi.id, poi.order_id, poi.item_id, items.name, items.sku,
		poi.quantity, poi.purchase_price, poi.is_active
		FROM purchase_order_items poi
		LEFT JOIN items ON items.id = poi.item_id
		WHERE poi.order_id = $1 AND poi.is_active
		ORDER BY poi.id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("orders: lines: %w", err)
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ItemID, &l.ItemName, &l.ItemSKU,
			&l.Quantity, &l.PurchasePrice, &l.IsActive); err != nil {
			return nil, fmt.Errorf("orders: scan line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// Create inserts the header and its lines in one transaction.
func (r *repository) Create(ctx context.Context, ord Order, lines []Line) (int64, error) {
	var id int64
	now := time.Now().UTC()
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `INSERT INTO purchase_orders (supplier_id, status_id, priority_id,
			order_date, expected_delivery_date, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, true, $6, $6) RETURNING id`,
			ord.SupplierID, ord.StatusID, ord.PriorityID,
			ord.OrderDate, ord.ExpectedDeliveryDate, now,
		).Scan(&id)
		if err != nil {
			return err
		}
		for _, l := range lines {
			if err := insertLine(ctx, tx, id, l); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, mapPgError(err)
	}
	return id, nil
}

// Edit rewrites the header and reconciles the submitted lines against the
// stored ones by item: missing items are added, existing ones updated and
// reactivated, and items absent from the submission are deactivated.
func (r *repository) Edit(ctx context.Context, id int64, ord Order, lines []Line) error {
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE purchase_orders SET supplier_id = $1, priority_id = $2,
			order_date = $3, expected_delivery_date = $4, updated_at = $5
			WHERE id = $6 AND is_active`,
			ord.SupplierID, ord.PriorityID, ord.OrderDate, ord.ExpectedDeliveryDate,
			time.Now().UTC(), id,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return httpx.ErrNotFound
		}

		rows, err := tx.Query(ctx, `SELECT item_id, is_active FROM purchase_order_items
			WHERE order_id = $1 FOR UPDATE`, id)
		if err != nil {
			return err
		}
		stored := make(map[int64]bool)
		for rows.Next() {
			var itemID int64
			var active bool
			if err := rows.Scan(&itemID, &active); err != nil {
				rows.Close()
				return err
			}
			stored[itemID] = active
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		submitted := make(map[int64]struct{}, len(lines))
		for _, l := range lines {
			submitted[l.ItemID] = struct{}{}
			if _, ok := stored[l.ItemID]; ok {
				if _, err := tx.Exec(ctx, `UPDATE purchase_order_items
					SET quantity = $1, purchase_price = $2, is_active = true
					WHERE order_id = $3 AND item_id = $4`,
					l.Quantity, l.PurchasePrice, id, l.ItemID); err != nil {
					return err
				}
			} else if err := insertLine(ctx, tx, id, l); err != nil {
				return err
			}
		}
		for itemID, active := range stored {
			if _, ok := submitted[itemID]; ok || !active {
				continue
			}
			if _, err := tx.Exec(ctx, `UPDATE purchase_order_items SET is_active = false
				WHERE order_id = $1 AND item_id = $2`, id, itemID); err != nil {
				return err
			}
		}
		return nil
	})
	return mapPgError(err)
}

func insertLine(ctx context.Context, tx pgx.Tx, orderID int64, l Line) error {
	_, err := tx.Exec(ctx, `INSERT INTO purchase_order_items (order_id, item_id, quantity,
		purchase_price, is_active) VALUES ($1, $2, $3, $4, true)`,
		orderID, l.ItemID, l.Quantity, l.PurchasePrice)
	return err
}

// Cancel moves an order to Cancelled and hides it from the listing. Only
// orders in a cancellable status qualify.
func (r *repository) Cancel(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var status Status
		err := tx.QueryRow(ctx, `SELECT status_id FROM purchase_orders
			WHERE id = $1 AND is_active FOR UPDATE`, id).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return httpx.ErrNotFound
			}
			return err
		}
		if !status.Cancellable() {
			return fmt.Errorf("%w: order in status %q cannot be cancelled", httpx.ErrValidation, status.Label())
		}
		_, err = tx.Exec(ctx, `UPDATE purchase_orders SET status_id = $1, is_active = false,
			updated_at = $2 WHERE id = $3`, StatusCancelled, time.Now().UTC(), id)
		return err
	})
}

func (r *repository) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return r.db.QueryRow(ctx, `SELECT COUNT(*) FROM purchase_orders WHERE is_active`).Scan(&stats.Total)
	})
	g.Go(func() error {
		return r.db.QueryRow(ctx, `SELECT COUNT(*) FROM purchase_orders WHERE is_active AND status_id = $1`,
			StatusPendingApproval).Scan(&stats.PendingApproval)
	})
	g.Go(func() error {
		return r.db.QueryRow(ctx, `SELECT COUNT(*) FROM purchase_orders WHERE is_active AND priority_id = $1`,
			PriorityHigh).Scan(&stats.HighPriority)
	})
	g.Go(func() error {
		return r.db.QueryRow(ctx, `SELECT COALESCE(SUM(poi.quantity * poi.purchase_price), 0)
			FROM purchase_orders po
			JOIN purchase_order_items poi ON poi.order_id = po.id AND poi.is_active
			WHERE po.is_active`).Scan(&stats.TotalValue)
	})

	if err := g.Wait(); err != nil {
		return Stats{}, fmt.Errorf("orders: stats: %w", err)
	}
	return stats, nil
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", httpx.ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}
