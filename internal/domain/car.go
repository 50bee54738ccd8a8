package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CarOccupancy string

const (
	CarOccupancyAvailable       CarOccupancy = "AVAILABLE"
	CarOccupancyPendingApproval CarOccupancy = "PENDING_APPROVAL"
	CarOccupancyRented          CarOccupancy = "RENTED"
)

type Car struct {
	ID          int64           `json:"id"`
	Make        string          `json:"make"`
	Model       string          `json:"model"`
	Year        int32           `json:"year"`
	Brand       string          `json:"brand"`
	Color       string          `json:"color"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
	PricePerDay decimal.Decimal `json:"price_per_day"`
	Currency    string          `json:"currency"`

	Occupancy CarOccupancy `json:"occupancy"`
	// Occupation snapshot fields, set together atomically when a payment
	// attempt commits or a manual rental is assigned.
	RentedBy      *int64              `json:"rented_by,omitempty"`
	OccupiedFrom  *time.Time          `json:"occupied_from,omitempty"`
	OccupiedTo    *time.Time          `json:"occupied_to,omitempty"`
	AmountCharged decimal.NullDecimal `json:"amount_charged,omitempty"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// Summary returns the short human-readable name used in receipts.
func (c *Car) Summary() string {
	return c.Make + " " + c.Model
}
