package suppliers

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

// Repository defines persistence operations for suppliers.
type Repository interface {
	List(ctx context.Context, q listquery.Query) (listquery.Result[Supplier], error)
	Get(ctx context.Context, id int64) (Supplier, error)
	Create(ctx context.Context, sup Supplier) (Supplier, error)
	Update(ctx context.Context, id int64, sup Supplier) error
	SoftDelete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (Stats, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) List(ctx context.Context, q listquery.Query) (listquery.Result[Supplier], error) {
	q = q.Normalize()
	sel, count, err := listquery.Build(q, Spec())
	if err != nil {
		return listquery.Result[Supplier]{}, err
	}

	countSQL, countArgs, err := count.ToSql()
	if err != nil {
		return listquery.Result[Supplier]{}, fmt.Errorf("suppliers: build count: %w", err)
	}
	var total int
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return listquery.Result[Supplier]{}, fmt.Errorf("suppliers: count: %w", err)
	}

	selSQL, selArgs, err := sel.ToSql()
	if err != nil {
		return listquery.Result[Supplier]{}, fmt.Errorf("suppliers: build select: %w", err)
	}
	rows, err := r.db.Query(ctx, selSQL, selArgs...)
	if err != nil {
		return listquery.Result[Supplier]{}, fmt.Errorf("suppliers: list: %w", err)
	}
	defer rows.Close()

	var out []Supplier
	for rows.Next() {
		sup, err := scanSupplier(rows)
		if err != nil {
			return listquery.Result[Supplier]{}, err
		}
		out = append(out, sup)
	}
	if err := rows.Err(); err != nil {
		return listquery.Result[Supplier]{}, err
	}
	return listquery.Result[Supplier]{
		Rows:       out,
		Pagination: listquery.NewPagination(q.Page, q.PerPage, total),
	}, nil
}

func scanSupplier(row pgx.Row) (Supplier, error) {
	var sup Supplier
	err := row.Scan(
		&sup.ID, &sup.Name,
		&sup.Street, &sup.City,
		&sup.StateID, &sup.StateName, &sup.StateAbbr,
		&sup.ZipCode,
		&sup.Contact.FirstName, &sup.Contact.LastName,
		&sup.Contact.Email, &sup.Contact.Phone,
		&sup.IsActive, &sup.CreatedAt, &sup.UpdatedAt,
		&sup.TotalOrders, &sup.ActiveOrders, &sup.TotalValue,
	)
	if err != nil {
		return Supplier{}, fmt.Errorf("suppliers: scan: %w", err)
	}
	return sup, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Supplier, error) {
	query := `SELECT suppliers.id, suppliers.name,
		suppliers.street, suppliers.city,
		suppliers.state_id, states.name, states.abbr,
		suppliers.zip_code,
		COALESCE(contacts.first_name, ''), COALESCE(contacts.last_name, ''),
		COALESCE(contacts.email, ''), COALESCE(contacts.phone, ''),
		suppliers.is_active, suppliers.created_at, suppliers.updated_at,
		(SELECT COUNT(*) FROM purchase_orders po
			WHERE po.supplier_id = suppliers.id AND po.is_active),
		(SELECT COUNT(*) FROM purchase_orders po
			WHERE po.supplier_id = suppliers.id AND po.is_active
			AND po.status_id NOT IN (6, 7, 8)),
		COALESCE((SELECT SUM(poi.quantity * poi.purchase_price)
			FROM purchase_orders po
			JOIN purchase_order_items poi ON poi.order_id = po.id AND poi.is_active
			WHERE po.supplier_id = suppliers.id AND po.is_active), 0)
		FROM suppliers
		LEFT JOIN states ON states.id = suppliers.state_id
		LEFT JOIN LATERAL (SELECT sc.first_name, sc.last_name, sc.email, sc.phone
			FROM supplier_contacts sc
			WHERE sc.supplier_id = suppliers.id AND sc.is_active
			ORDER BY sc.created_at DESC LIMIT 1) contacts ON true
		WHERE suppliers.id = $1`
	sup, err := scanSupplier(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Supplier{}, httpx.ErrNotFound
		}
		return Supplier{}, err
	}
	return sup, nil
}

// Create inserts the supplier and its contact in one transaction.
func (r *repository) Create(ctx context.Context, sup Supplier) (Supplier, error) {
	now := time.Now().UTC()
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `INSERT INTO suppliers (name, street, city, state_id, zip_code,
			is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, true, $6, $6) RETURNING id`,
			sup.Name, sup.Street, sup.City, sup.StateID, sup.ZipCode, now,
		).Scan(&sup.ID)
		if err != nil {
			return err
		}
		return insertContact(ctx, tx, sup.ID, sup.Contact, now)
	})
	if err != nil {
		return Supplier{}, mapPgError(err)
	}
	sup.IsActive = true
	sup.CreatedAt = now
	sup.UpdatedAt = now
	return sup, nil
}

// Update rewrites the supplier row and replaces the active contact so the
// listing always resolves the most recent one.
func (r *repository) Update(ctx context.Context, id int64, sup Supplier) error {
	now := time.Now().UTC()
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE suppliers SET name = $1, street = $2, city = $3,
			state_id = $4, zip_code = $5, updated_at = $6 WHERE id = $7 AND is_active`,
			sup.Name, sup.Street, sup.City, sup.StateID, sup.ZipCode, now, id,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return httpx.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `UPDATE supplier_contacts SET is_active = false
			WHERE supplier_id = $1 AND is_active`, id); err != nil {
			return err
		}
		return insertContact(ctx, tx, id, sup.Contact, now)
	})
	return mapPgError(err)
}

func insertContact(ctx context.Context, tx pgx.Tx, supplierID int64, c Contact, now time.Time) error {
	_, err := tx.Exec(ctx, `INSERT INTO supplier_contacts (supplier_id, first_name, last_name,
		email, phone, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, true, $6)`,
		supplierID, c.FirstName, c.LastName, c.Email, c.Phone, now,
	)
	return err
}

func (r *repository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE suppliers SET is_active = false, updated_at = $1 WHERE id = $2 AND is_active`, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return r.db.QueryRow(ctx, `SELECT COUNT(*) FROM suppliers`).Scan(&stats.Total)
	})
	g.Go(func() error {
		return r.db.QueryRow(ctx, `SELECT COUNT(*) FROM suppliers WHERE is_active`).Scan(&stats.Active)
	})
	g.Go(func() error {
		return r.db.QueryRow(ctx, `SELECT COALESCE(SUM(poi.quantity * poi.purchase_price), 0)
			FROM purchase_orders po
			JOIN purchase_order_items poi ON poi.order_id = po.id AND poi.is_active
			WHERE po.is_active`).Scan(&stats.TotalValue)
	})

	if err := g.Wait(); err != nil {
		return Stats{}, fmt.Errorf("suppliers: stats: %w", err)
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
