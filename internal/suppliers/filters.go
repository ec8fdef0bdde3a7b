package suppliers

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/stockroom-app/stockroom/internal/listquery"
	"github.com/stockroom-app/stockroom/internal/options"
)

// ParamMap maps the supplier listing's filter keys onto their URL parameters.
func ParamMap() listquery.ParamMap {
	return listquery.DefaultParamMap().WithFilters(map[string]string{
		"state": "State_ID",
	})
}

// Spec describes the supplier listing query: search over name and city, a
// categorical filter on state, ordered by name. Order aggregates and the
// most recent active contact are computed inline so the listing stays a
// single query.
func Spec() listquery.EntitySpec {
	return listquery.EntitySpec{
		Table: "suppliers",
		Columns: []string{
			"suppliers.id", "suppliers.name",
			"suppliers.street", "suppliers.city",
			"suppliers.state_id", "states.name AS state_name", "states.abbr AS state_abbr",
			"suppliers.zip_code",
			"COALESCE(contacts.first_name, '')", "COALESCE(contacts.last_name, '')",
			"COALESCE(contacts.email, '')", "COALESCE(contacts.phone, '')",
			"suppliers.is_active", "suppliers.created_at", "suppliers.updated_at",
			`(SELECT COUNT(*) FROM purchase_orders po
				WHERE po.supplier_id = suppliers.id AND po.is_active) AS total_orders`,
			// 6 Completed, 7 Cancelled, 8 Rejected are terminal.
			`(SELECT COUNT(*) FROM purchase_orders po
				WHERE po.supplier_id = suppliers.id AND po.is_active
				AND po.status_id NOT IN (6, 7, 8)) AS active_orders`,
			`COALESCE((SELECT SUM(poi.quantity * poi.purchase_price)
				FROM purchase_orders po
				JOIN purchase_order_items poi ON poi.order_id = po.id AND poi.is_active
				WHERE po.supplier_id = suppliers.id AND po.is_active), 0) AS total_value`,
		},
		Joins: []string{
			"states ON states.id = suppliers.state_id",
			`LATERAL (SELECT sc.first_name, sc.last_name, sc.email, sc.phone
				FROM supplier_contacts sc
				WHERE sc.supplier_id = suppliers.id AND sc.is_active
				ORDER BY sc.created_at DESC LIMIT 1) contacts ON true`,
		},
		SearchColumns: []string{"suppliers.name", "suppliers.city"},
		FilterColumns: map[string]string{
			"state": "suppliers.state_id",
		},
		Fixed:        []squirrel.Sqlizer{squirrel.Eq{"suppliers.is_active": true}},
		DefaultOrder: "suppliers.name ASC",
	}
}

// FilterConfigs assembles the listing's filter dropdowns from reference data.
func FilterConfigs(ctx context.Context, opts *options.Service) ([]listquery.FilterConfig, error) {
	cfg, err := opts.FilterConfig(ctx, "state", "State", "All States", options.KindStates)
	if err != nil {
		return nil, err
	}
	cfg.Param = ParamMap().Filters["state"]
	return []listquery.FilterConfig{cfg}, nil
}
