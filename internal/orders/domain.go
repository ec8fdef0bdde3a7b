// Package orders manages purchase orders: the filtered order listing, the
// order lifecycle, and line-level edits.
package orders

import "time"

// Order status IDs as stored in order_statuses.
type Status int64

const (
	StatusPendingApproval Status = 1
	StatusApproved        Status = 2
	StatusOrdered         Status = 3
	StatusReceivedPartial Status = 4
	StatusReceivedFull    Status = 5
	StatusCompleted       Status = 6
	StatusCancelled       Status = 7
	StatusRejected        Status = 8
)

// Label returns the display name for a status.
func (s Status) Label() string {
	switch s {
	case StatusPendingApproval:
		return "Pending Approval"
	case StatusApproved:
		return "Approved"
	case StatusOrdered:
		return "Ordered"
	case StatusReceivedPartial:
		return "Partially Received"
	case StatusReceivedFull:
		return "Fully Received"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	case StatusRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// Cancellable reports whether an order in this status may still be cancelled.
// Completed, cancelled and rejected orders are terminal.
func (s Status) Cancellable() bool {
	switch s {
	case StatusPendingApproval, StatusApproved, StatusOrdered, StatusReceivedPartial:
		return true
	default:
		return false
	}
}

// Priority IDs as stored in order_priorities.
type Priority int64

const (
	PriorityLow    Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
)

// Label returns the display name for a priority.
func (p Priority) Label() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	default:
		return "Unknown"
	}
}

// Order is one purchase order header with aggregates over its active lines.
type Order struct {
	ID                   int64
	SupplierID           int64
	SupplierName         string
	StatusID             Status
	StatusName           string
	PriorityID           Priority
	PriorityName         string
	OrderDate            time.Time
	ExpectedDeliveryDate time.Time
	ReceivedDate         *time.Time
	IsActive             bool
	CreatedAt            time.Time
	UpdatedAt            time.Time

	// Aggregated over active lines in SQL.
	ItemCount   int
	TotalAmount float64
}

// Line is one order line. Deactivated lines stay on record but are excluded
// from aggregates.
type Line struct {
	ID            int64
	OrderID       int64
	ItemID        int64
	ItemName      string
	ItemSKU       string
	Quantity      int
	PurchasePrice float64
	IsActive      bool
}

// Detail is an order header together with its active lines.
type Detail struct {
	Order
	Lines []Line
}

// Stats summarises orders for the dashboard cards.
type Stats struct {
	Total           int
	PendingApproval int
	HighPriority    int
	TotalValue      float64
}
