// Package suppliers manages the supplier directory, including the primary
// contact and the order aggregates shown in the listing.
package suppliers

import "time"

// Contact is a supplier's primary contact. The listing shows the most
// recently added active contact.
type Contact struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// Supplier is one directory row with its contact and order aggregates.
type Supplier struct {
	ID        int64
	Name      string
	Street    string
	City      string
	StateID   int64
	StateName string
	StateAbbr string
	ZipCode   string
	Contact   Contact
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time

	// Aggregated over purchase orders in SQL.
	TotalOrders  int
	ActiveOrders int
	TotalValue   float64
}

// Stats summarises the directory for the dashboard cards.
type Stats struct {
	Total      int
	Active     int
	TotalValue float64
}
