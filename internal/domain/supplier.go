package domain

import "time"

type SupplierStatus string

const (
	SupplierActive   SupplierStatus = "active"
	SupplierInactive SupplierStatus = "inactive"
)

type Supplier struct {
	ID           string         `json:"id"`
	BusinessName string         `json:"business_name"`
	Name         string         `json:"name"`
	Email        string         `json:"email"`
	Mobile       string         `json:"mobile"`
	Status       SupplierStatus `json:"status"`
	JoinedAt     time.Time      `json:"joined_at"`
}

// Listing is a product entered by a supplier through the dashboard. It is
// the raw shape of the local source; the aggregator normalizes it into a
// Product like any other source record.
type Listing struct {
	ID        string    `json:"id"`
	SupplierID string   `json:"supplier_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Category  string    `json:"category"`
	Image     string    `json:"image"`
	Stock     int       `json:"stock"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
