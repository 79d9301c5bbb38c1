package db

import (
	"context"

	"github.com/uptrace/bun"

	"ms-boxoffice/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// CreateOffering inserts a new offering with a full quantity pool.
func (d *DB) CreateOffering(offering models.Offering) error {
	_, err := d.Bun.NewInsert().Model(&offering).Exec(context.Background())
	return err
}

func (d *DB) GetOfferingByID(id string) (*models.Offering, error) {
	var offering models.Offering
	err := d.Bun.NewSelect().
		Model(&offering).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &offering, nil
}

func (d *DB) ListOfferings() ([]models.Offering, error) {
	var offerings []models.Offering
	err := d.Bun.NewSelect().
		Model(&offerings).
		Order("event_date").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return offerings, nil
}

// ReserveQuantity performs the check-and-decrement as one conditional
// UPDATE. The WHERE clause carries the availability check, so two
// concurrent reservations can never both pass a stale read: the row
// count tells us whether this call won. The sold_out flip happens in
// the same statement.
func (d *DB) ReserveQuantity(offeringID string, quantity int) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Offering)(nil)).
		Set("available_quantity = available_quantity - ?", quantity).
		Set("status = CASE WHEN available_quantity - ? = 0 THEN ? ELSE status END",
			quantity, models.OfferingSoldOut).
		Where("id = ?", offeringID).
		Where("status = ?", models.OfferingActive).
		Where("available_quantity >= ?", quantity).
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

// ReleaseQuantity returns units to the pool (compensation path). The
// increment is clamped at total_quantity and a sold_out offering goes
// back to active in the same statement.
func (d *DB) ReleaseQuantity(offeringID string, quantity int) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Offering)(nil)).
		Set("available_quantity = CASE WHEN available_quantity + ? > total_quantity THEN total_quantity ELSE available_quantity + ? END",
			quantity, quantity).
		Set("status = CASE WHEN status = ? THEN ? ELSE status END",
			models.OfferingSoldOut, models.OfferingActive).
		Where("id = ?", offeringID).
		Exec(context.Background())
	return err
}

// DeactivateOffering is the only deletion path: a status flip. Rows
// with purchases hanging off them are never removed.
func (d *DB) DeactivateOffering(id string) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Offering)(nil)).
		Set("status = ?", models.OfferingInactive).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}
