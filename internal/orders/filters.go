package orders

import (
	"context"
	"strconv"

	"github.com/Masterminds/squirrel"

	"github.com/stockroom-app/stockroom/internal/listquery"
	"github.com/stockroom-app/stockroom/internal/options"
)

// ParamMap maps the order listing's filter keys onto their URL parameters.
func ParamMap() listquery.ParamMap {
	return listquery.DefaultParamMap().WithFilters(map[string]string{
		"supplier": "Supplier_ID",
		"status":   "Status_ID",
		"priority": "Priority_ID",
	})
}

// Spec describes the order listing query: each search term matches the
// supplier name, and a numeric term additionally matches the order ID.
// Newest orders come first.
func Spec() listquery.EntitySpec {
	return listquery.EntitySpec{
		Table: "purchase_orders",
		Columns: []string{
			"purchase_orders.id",
			"purchase_orders.supplier_id", "suppliers.name AS supplier_name",
			"purchase_orders.status_id", "order_statuses.description AS status_name",
			"purchase_orders.priority_id", "order_priorities.description AS priority_name",
			"purchase_orders.order_date", "purchase_orders.expected_delivery_date",
			"purchase_orders.received_date",
			"purchase_orders.is_active", "purchase_orders.created_at", "purchase_orders.updated_at",
			`(SELECT COUNT(*) FROM purchase_order_items poi
				WHERE poi.order_id = purchase_orders.id AND poi.is_active) AS item_count`,
			`COALESCE((SELECT SUM(poi.quantity * poi.purchase_price)
				FROM purchase_order_items poi
				WHERE poi.order_id = purchase_orders.id AND poi.is_active), 0) AS total_amount`,
		},
		Joins: []string{
			"suppliers ON suppliers.id = purchase_orders.supplier_id",
			"order_statuses ON order_statuses.id = purchase_orders.status_id",
			"order_priorities ON order_priorities.id = purchase_orders.priority_id",
		},
		SearchColumns: []string{"suppliers.name"},
		TermPredicate: func(term string) squirrel.Sqlizer {
			id, err := strconv.ParseInt(term, 10, 64)
			if err != nil {
				return nil
			}
			return squirrel.Eq{"purchase_orders.id": id}
		},
		FilterColumns: map[string]string{
			"supplier": "purchase_orders.supplier_id",
			"status":   "purchase_orders.status_id",
			"priority": "purchase_orders.priority_id",
		},
		Fixed:        []squirrel.Sqlizer{squirrel.Eq{"purchase_orders.is_active": true}},
		DefaultOrder: "purchase_orders.id DESC",
	}
}

// FilterConfigs assembles the listing's filter dropdowns from reference data.
func FilterConfigs(ctx context.Context, opts *options.Service) ([]listquery.FilterConfig, error) {
	pm := ParamMap()
	configs := make([]listquery.FilterConfig, 0, 3)
	for _, def := range []struct {
		key, label, allLabel string
		kind                 options.Kind
	}{
		{"supplier", "Supplier", "All Suppliers", options.KindSuppliers},
		{"status", "Status", "All Statuses", options.KindOrderStatuses},
		{"priority", "Priority", "All Priorities", options.KindOrderPriorities},
	} {
		cfg, err := opts.FilterConfig(ctx, def.key, def.label, def.allLabel, def.kind)
		if err != nil {
			return nil, err
		}
		cfg.Param = pm.Filters[def.key]
		configs = append(configs, cfg)
	}
	return configs, nil
}
