// Package locations manages warehouse and store locations.
package locations

import "time"

// Location is one storage site with its address and capacity range.
type Location struct {
	ID          int64
	Description string
	TypeID      int64
	TypeName    string
	MinCapacity int
	MaxCapacity int
	Street      string
	City        string
	State       string
	Country     string
	ZipCode     string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Stats summarises locations for the dashboard cards.
type Stats struct {
	Total         int
	Active        int
	TotalCapacity int
}
