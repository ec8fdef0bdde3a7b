package items

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/stockroom-app/stockroom/internal/listquery"
	"github.com/stockroom-app/stockroom/internal/options"
)

// ParamMap maps the item listing's filter keys onto their URL parameters.
func ParamMap() listquery.ParamMap {
	return listquery.DefaultParamMap().WithFilters(map[string]string{
		"category": "Category_ID",
		"location": "Location_ID",
		"status":   "Status_ID",
	})
}

// Spec describes the item listing query: search over name and SKU,
// categorical filters on category, location and status, soft-deleted rows
// hidden, ordered by name.
func Spec() listquery.EntitySpec {
	return listquery.EntitySpec{
		Table: "items",
		Columns: []string{
			"items.id", "items.name", "items.sku", "items.description",
			"items.quantity", "items.threshold", "items.unit_price",
			"items.category_id", "categories.description AS category_name",
			"items.location_id", "locations.description AS location_name",
			"items.supplier_id", "items.status_id", "item_statuses.description AS status_name",
			"items.is_active", "items.created_at", "items.updated_at",
		},
		Joins: []string{
			"categories ON categories.id = items.category_id",
			"locations ON locations.id = items.location_id",
			"item_statuses ON item_statuses.id = items.status_id",
		},
		SearchColumns: []string{"items.name", "items.sku"},
		FilterColumns: map[string]string{
			"category": "items.category_id",
			"location": "items.location_id",
			"status":   "items.status_id",
		},
		Fixed:        []squirrel.Sqlizer{squirrel.Eq{"items.is_active": true}},
		DefaultOrder: "items.name ASC",
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
		{"category", "Category", "All Categories", options.KindCategories},
		{"location", "Location", "All Locations", options.KindLocations},
		{"status", "Status", "All Statuses", options.KindItemStatuses},
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
