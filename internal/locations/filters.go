package locations

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/stockroom-app/stockroom/internal/listquery"
	"github.com/stockroom-app/stockroom/internal/options"
)

// ParamMap maps the location listing's filter keys onto their URL parameters.
func ParamMap() listquery.ParamMap {
	return listquery.DefaultParamMap().WithFilters(map[string]string{
		"type": "Location_Type_ID",
	})
}

// Spec describes the location listing query: search over description and
// city, a categorical filter on location type, ordered by description.
func Spec() listquery.EntitySpec {
	return listquery.EntitySpec{
		Table: "locations",
		Columns: []string{
			"locations.id", "locations.description",
			"locations.type_id", "location_types.description AS type_name",
			"locations.min_capacity", "locations.max_capacity",
			"locations.street", "locations.city", "locations.state",
			"locations.country", "locations.zip_code",
			"locations.is_active", "locations.created_at", "locations.updated_at",
		},
		Joins: []string{
			"location_types ON location_types.id = locations.type_id",
		},
		SearchColumns: []string{"locations.description", "locations.city"},
		FilterColumns: map[string]string{
			"type": "locations.type_id",
		},
		Fixed:        []squirrel.Sqlizer{squirrel.Eq{"locations.is_active": true}},
		DefaultOrder: "locations.description ASC",
	}
}

// FilterConfigs assembles the listing's filter dropdowns from reference data.
func FilterConfigs(ctx context.Context, opts *options.Service) ([]listquery.FilterConfig, error) {
	cfg, err := opts.FilterConfig(ctx, "type", "Type", "All Types", options.KindLocationTypes)
	if err != nil {
		return nil, err
	}
	cfg.Param = ParamMap().Filters["type"]
	return []listquery.FilterConfig{cfg}, nil
}
