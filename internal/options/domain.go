// Package options supplies the read-only reference option lists (categories,
// locations, suppliers, statuses, priorities) that populate filter dropdowns
// and form selects. Lists are ordered and unpaginated.
package options

import "errors"

// Kind identifies one reference option list.
type Kind string

const (
	KindItems           Kind = "items"
	KindCategories      Kind = "categories"
	KindLocations       Kind = "locations"
	KindLocationTypes   Kind = "location_types"
	KindSuppliers       Kind = "suppliers"
	KindStates          Kind = "states"
	KindItemStatuses    Kind = "item_statuses"
	KindOrderStatuses   Kind = "order_statuses"
	KindOrderPriorities Kind = "order_priorities"
)

// ErrUnknownKind indicates a kind with no backing table.
var ErrUnknownKind = errors.New("options: unknown kind")
