package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	OfferingActive   = "active"
	OfferingSoldOut  = "sold_out"
	OfferingInactive = "inactive"
)

// Offering is one purchasable ticket type: an event with a pooled quantity.
type Offering struct {
	bun.BaseModel `bun:"table:offerings"`

	ID                string    `bun:"id,pk" json:"id"`
	Title             string    `bun:"title,notnull" json:"title"`
	EventDate         time.Time `bun:"event_date,notnull" json:"event_date"`
	EventTime         string    `bun:"event_time" json:"event_time"`
	Venue             string    `bun:"venue" json:"venue"`
	Price             float64   `bun:"price,notnull" json:"price"`
	TotalQuantity     int       `bun:"total_quantity,notnull" json:"total_quantity"`
	AvailableQuantity int       `bun:"available_quantity,notnull" json:"available_quantity"`
	Status            string    `bun:"status,notnull" json:"status"`
	CreatedAt         time.Time `bun:"created_at,notnull" json:"created_at"`
}

// Availability is the point-in-time view the front-end renders as
// "N tickets left" / "Sold Out".
type Availability struct {
	OfferingID        string `json:"offering_id"`
	AvailableQuantity int    `json:"available_quantity"`
	Status            string `json:"status"`
}

type OfferingRequest struct {
	Title         string  `json:"title"`
	EventDate     string  `json:"event_date"`
	EventTime     string  `json:"event_time"`
	Venue         string  `json:"venue"`
	Price         float64 `json:"price"`
	TotalQuantity int     `json:"total_quantity"`
}
