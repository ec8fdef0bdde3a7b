package options

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockroom-app/stockroom/internal/listquery"
)

// Repository loads reference option lists.
type Repository interface {
	ListOptions(ctx context.Context, kind Kind) ([]listquery.Option, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

var kindQueries = map[Kind]string{
	KindItems:           `SELECT id::text, name FROM items WHERE is_active ORDER BY name`,
	KindCategories:      `SELECT id::text, description FROM categories WHERE is_active ORDER BY description`,
	KindLocations:       `SELECT id::text, description FROM locations WHERE is_active ORDER BY description`,
	KindLocationTypes:   `SELECT id::text, description FROM location_types ORDER BY description`,
	KindSuppliers:       `SELECT id::text, name FROM suppliers WHERE is_active ORDER BY name`,
	KindStates:          `SELECT id::text, name FROM states ORDER BY name`,
	KindItemStatuses:    `SELECT id::text, description FROM item_statuses ORDER BY id`,
	KindOrderStatuses:   `SELECT id::text, description FROM order_statuses ORDER BY id`,
	KindOrderPriorities: `SELECT id::text, description FROM order_priorities ORDER BY id`,
}

func (r *repository) ListOptions(ctx context.Context, kind Kind) ([]listquery.Option, error) {
	query, ok := kindQueries[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("options: list %s: %w", kind, err)
	}
	defer rows.Close()

	var opts []listquery.Option
	for rows.Next() {
		var opt listquery.Option
		if err := rows.Scan(&opt.Value, &opt.Label); err != nil {
			return nil, fmt.Errorf("options: scan %s: %w", kind, err)
		}
		opts = append(opts, opt)
	}
	return opts, rows.Err()
}
