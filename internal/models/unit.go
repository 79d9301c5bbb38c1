package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	UnitUnused  = "unused"
	UnitUsed    = "used"
	UnitExpired = "expired"
)

// RedemptionUnit is one individually scannable ticket derived from a
// purchase. The QR payload must be unique across all offerings so a
// scan at one event can never resolve to a ticket for another.
type RedemptionUnit struct {
	bun.BaseModel `bun:"table:redemption_units"`

	ID           string     `bun:"id,pk" json:"id"`
	PurchaseID   string     `bun:"purchase_id,notnull" json:"purchase_id"`
	OfferingID   string     `bun:"offering_id,notnull" json:"offering_id"`
	TicketNumber string     `bun:"ticket_number,unique,notnull" json:"ticket_number"`
	QRCode       string     `bun:"qr_code,unique,notnull" json:"qr_code"`
	HolderName   string     `bun:"holder_name" json:"holder_name"`
	HolderEmail  string     `bun:"holder_email" json:"holder_email"`
	Status       string     `bun:"status,notnull" json:"status"`
	UsedAt       *time.Time `bun:"used_at" json:"used_at,omitempty"`
	UsedBy       string     `bun:"used_by" json:"used_by,omitempty"`
	CreatedAt    time.Time  `bun:"created_at,notnull" json:"created_at"`
}
