package locations

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

// Repository defines persistence operations for locations.
type Repository interface {
	List(ctx context.Context, q listquery.Query) (listquery.Result[Location], error)
	Get(ctx context.Context, id int64) (Location, error)
	Create(ctx context.Context, loc Location) (Location, error)
	Update(ctx context.Context, id int64, loc Location) error
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

func (r *repository) List(ctx context.Context, q listquery.Query) (listquery.Result[Location], error) {
	q = q.Normalize()
	sel, count, err := listquery.Build(q, Spec())
	if err != nil {
		return listquery.Result[Location]{}, err
	}

	countSQL, countArgs, err := count.ToSql()
	if err != nil {
		return listquery.Result[Location]{}, fmt.Errorf("locations: build count: %w", err)
	}
	var total int
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return listquery.Result[Location]{}, fmt.Errorf("locations: count: %w", err)
	}

	selSQL, selArgs, err := sel.ToSql()
	if err != nil {
		return listquery.Result[Location]{}, fmt.Errorf("locations: build select: %w", err)
	}
	rows, err := r.db.Query(ctx, selSQL, selArgs...)
	if err != nil {
		return listquery.Result[Location]{}, fmt.Errorf("locations: list: %w", err)
	}
	defer rows.Close()

	var out []Location
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return listquery.Result[Location]{}, err
		}
		out = append(out, loc)
	}
	if err := rows.Err(); err != nil {
		return listquery.Result[Location]{}, err
	}
	return listquery.Result[Location]{
		Rows:       out,
		Pagination: listquery.NewPagination(q.Page, q.PerPage, total),
	}, nil
}

const locationColumns = `locations.id, locations.description,
	locations.type_id, location_types.description,
	locations.min_capacity, locations.max_capacity,
	locations.street, locations.city, locations.state,
	locations.country, locations.zip_code,
	locations.is_active, locations.created_at, locations.updated_at`

const locationJoins = `LEFT JOIN location_types ON location_types.id = locations.type_id`

func scanLocation(row pgx.Row) (Location, error) {
	var loc Location
	err := row.Scan(
		&loc.ID, &loc.Description,
		&loc.TypeID, &loc.TypeName,
		&loc.MinCapacity, &loc.MaxCapacity,
		&loc.Street, &loc.City, &loc.State,
		&loc.Country, &loc.ZipCode,
		&loc.IsActive, &loc.CreatedAt, &loc.UpdatedAt,
	)
	if err != nil {
		return Location{}, fmt.Errorf("locations: scan: %w", err)
	}
	return loc, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations ` + locationJoins + ` WHERE locations.id = $1`
	loc, err := scanLocation(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Location{}, httpx.ErrNotFound
		}
		return Location{}, err
	}
	return loc, nil
}

func (r *repository) Create(ctx context.Context, loc Location) (Location, error) {
	query := `INSERT INTO locations (description, type_id, min_capacity, max_capacity,
		street, city, state, country, zip_code, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, true, $10, $10) RETURNING id`
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, query,
		loc.Description, loc.TypeID, loc.MinCapacity, loc.MaxCapacity,
		loc.Street, loc.City, loc.State, loc.Country, loc.ZipCode, now,
	).Scan(&loc.ID)
	if err != nil {
		return Location{}, mapPgError(err)
	}
	loc.IsActive = true
	loc.CreatedAt = now
	loc.UpdatedAt = now
	return loc, nil
}

func (r *repository) Update(ctx context.Context, id int64, loc Location) error {
	query := `UPDATE locations SET description = $1, type_id = $2, min_capacity = $3,
		max_capacity = $4, street = $5, city = $6, state = $7, country = $8,
		zip_code = $9, updated_at = $10 WHERE id = $11 AND is_active`
	tag, err := r.db.Exec(ctx, query,
		loc.Description, loc.TypeID, loc.MinCapacity, loc.MaxCapacity,
		loc.Street, loc.City, loc.State, loc.Country, loc.ZipCode, time.Now().UTC(), id,
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
	tag, err := r.db.Exec(ctx, `UPDATE locations SET is_active = false, updated_at = $1 WHERE id = $2 AND is_active`, time.Now().UTC(), id)
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
		return r.db.QueryRow(ctx, `SELECT COUNT(*) FROM locations`).Scan(&stats.Total)
	})
	g.Go(func() error {
		return r.db.QueryRow(ctx, `SELECT COUNT(*) FROM locations WHERE is_active`).Scan(&stats.Active)
	})
	g.Go(func() error {
		return r.db.QueryRow(ctx, `SELECT COALESCE(SUM(max_capacity), 0) FROM locations WHERE is_active`).Scan(&stats.TotalCapacity)
	})

	if err := g.Wait(); err != nil {
		return Stats{}, fmt.Errorf("locations: stats: %w", err)
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
