package model

import "time"

// Product is a perishable item in the pantry. ExpiryDate is kept as the text
// that was stored, which may be empty when the expiry is not tracked.
type Product struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Barcode    string    `json:"barcode,omitempty"`
	Brand      string    `json:"brand,omitempty"`
	Category   string    `json:"category,omitempty"`
	ImageURL   string    `json:"image_url,omitempty"`
	Quantity   int       `json:"quantity"`
	ExpiryDate string    `json:"expiry_date,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DefaultQuantity is used when a product is saved without a quantity.
const DefaultQuantity = 1

// Product list filters.
const (
	FilterSoon    = "soon"
	FilterExpired = "expired"
	FilterFresh   = "fresh"
)
