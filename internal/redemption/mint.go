package redemption

import (
	"time"

	"github.com/google/uuid"

	"ms-boxoffice/internal/models"
	"ms-boxoffice/internal/utils"
)

// MintUnits builds exactly purchase.Quantity redemption units, all
// unused, holder defaulting to the purchaser. The QR payload is
// normalized to equal the ticket number, so the dual lookup only ever
// matters for tickets issued before that convention. Persistence is the
// caller's job: the purchase store inserts these in the same
// transaction as the purchase row.
func MintUnits(prefix string, purchase models.Purchase) []models.RedemptionUnit {
	units := make([]models.RedemptionUnit, 0, purchase.Quantity)
	now := time.Now()

	for i := 1; i <= purchase.Quantity; i++ {
		ticketNumber := utils.GenerateTicketNumber(prefix, purchase.ID, i)
		units = append(units, models.RedemptionUnit{
			ID:           uuid.NewString(),
			PurchaseID:   purchase.ID,
			OfferingID:   purchase.OfferingID,
			TicketNumber: ticketNumber,
			QRCode:       ticketNumber,
			HolderName:   purchase.CustomerName,
			HolderEmail:  purchase.CustomerEmail,
			Status:       models.UnitUnused,
			CreatedAt:    now,
		})
	}
	return units
}
