// Package items implements the inventory item catalog: the filtered item
// listing, item CRUD, and the stock status rule derived from quantity and
// threshold.
package items

import "time"

// Stock status IDs as stored in item_statuses.
type Status int64

const (
	StatusInStock    Status = 1
	StatusLowStock   Status = 2
	StatusOutOfStock Status = 3
)

// Label returns the display name for a status.
func (s Status) Label() string {
	switch s {
	case StatusInStock:
		return "In Stock"
	case StatusLowStock:
		return "Low Stock"
	case StatusOutOfStock:
		return "Out of Stock"
	default:
		return "Unknown"
	}
}

// DeriveStatus computes stock status from quantity and the low-stock
// threshold. Both boundaries are inclusive: zero quantity is out of stock,
// quantity equal to the threshold is low stock.
func DeriveStatus(quantity, threshold int) Status {
	if quantity <= 0 {
		return StatusOutOfStock
	}
	if quantity <= threshold {
		return StatusLowStock
	}
	return StatusInStock
}

// Item is one catalog row with its resolved reference labels.
type Item struct {
	ID           int64
	Name         string
	SKU          string
	Description  string
	Quantity     int
	Threshold    int
	UnitPrice    float64
	CategoryID   int64
	CategoryName string
	LocationID   int64
	LocationName string
	SupplierID   int64
	StatusID     Status
	StatusName   string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Stats summarises the catalog for the dashboard cards.
type Stats struct {
	Total      int
	InStock    int
	LowStock   int
	OutOfStock int
}
