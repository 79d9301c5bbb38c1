package db

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"

	"ms-boxoffice/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// CreatePurchaseWithUnits persists the purchase row and all of its
// redemption units in one transaction. Either the purchase exists with
// exactly quantity units, or nothing was written: a purchase with
// missing tickets must never be visible.
func (d *DB) CreatePurchaseWithUnits(purchase models.Purchase, units []models.RedemptionUnit) error {
	ctx := context.Background()
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&purchase).Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(&units).Exec(ctx); err != nil {
			return err
		}
		return nil
	})
}

func (d *DB) GetPurchaseByID(id string) (*models.Purchase, error) {
	var purchase models.Purchase
	err := d.Bun.NewSelect().
		Model(&purchase).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// GetPurchaseByReference is the idempotency lookup. A miss comes back
// as (nil, nil) so the caller doesn't have to test for sql.ErrNoRows.
func (d *DB) GetPurchaseByReference(reference string) (*models.Purchase, error) {
	var purchase models.Purchase
	err := d.Bun.NewSelect().
		Model(&purchase).
		Where("payment_reference = ?", reference).
		Limit(1).
		Scan(context.Background())
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (d *DB) GetPurchaseByAccessToken(token string) (*models.Purchase, error) {
	var purchase models.Purchase
	err := d.Bun.NewSelect().
		Model(&purchase).
		Where("access_token = ?", token).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (d *DB) GetUnitsByPurchase(purchaseID string) ([]models.RedemptionUnit, error) {
	var units []models.RedemptionUnit
	err := d.Bun.NewSelect().
		Model(&units).
		Where("purchase_id = ?", purchaseID).
		Order("ticket_number").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return units, nil
}

// UpdatePaymentStatus applies the one mutation a purchase allows:
// pending → completed or pending → failed, set once by the webhook.
func (d *DB) UpdatePaymentStatus(id, status string) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Purchase)(nil)).
		Set("payment_status = ?", status).
		Where("id = ?", id).
		Where("payment_status = ?", models.PaymentPending).
		Exec(context.Background())
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}
