package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// Purchase is one checkout transaction: one customer, one offering,
// a quantity, a payment reference. Immutable after creation except
// the payment_status transition.
type Purchase struct {
	bun.BaseModel `bun:"table:purchases"`

	ID               string    `bun:"id,pk" json:"id"`
	OfferingID       string    `bun:"offering_id,notnull" json:"offering_id"`
	CustomerName     string    `bun:"customer_name,notnull" json:"customer_name"`
	CustomerEmail    string    `bun:"customer_email,notnull" json:"customer_email"`
	CustomerPhone    string    `bun:"customer_phone" json:"customer_phone"`
	Quantity         int       `bun:"quantity,notnull" json:"quantity"`
	TotalAmount      float64   `bun:"total_amount,notnull" json:"total_amount"`
	PaymentReference string    `bun:"payment_reference,unique,notnull" json:"payment_reference"`
	PaymentStatus    string    `bun:"payment_status,notnull" json:"payment_status"`
	PaymentChannel   string    `bun:"payment_channel" json:"payment_channel"`
	AccessToken      string    `bun:"access_token,notnull" json:"access_token"`
	CreatedAt        time.Time `bun:"created_at,notnull" json:"created_at"`
}

type PurchaseRequest struct {
	OfferingID       string `json:"offering_id"`
	CustomerName     string `json:"customer_name"`
	CustomerEmail    string `json:"customer_email"`
	CustomerPhone    string `json:"customer_phone"`
	Quantity         int    `json:"quantity"`
	PaymentReference string `json:"payment_reference"`
	PaymentStatus    string `json:"payment_status"`
	PaymentChannel   string `json:"payment_channel"`
}

// PurchaseWithUnits is what the purchase endpoint returns: the purchase
// row plus the redemption units minted for it.
type PurchaseWithUnits struct {
	Purchase Purchase         `json:"purchase"`
	Units    []RedemptionUnit `json:"units"`
}
