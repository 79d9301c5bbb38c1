package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"ms-boxoffice/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// GetUnitByCode resolves a scanned code. Ticket number is the canonical
// identity; the qr_code fallback stays for payloads issued before the
// two values were normalized to match.
// TODO: drop the fallback once pre-normalization tickets have all
// reached their event dates.
func (d *DB) GetUnitByCode(code string) (*models.RedemptionUnit, error) {
	var unit models.RedemptionUnit
	err := d.Bun.NewSelect().
		Model(&unit).
		Where("ticket_number = ?", code).
		Limit(1).
		Scan(context.Background())
	if err == nil {
		return &unit, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	err = d.Bun.NewSelect().
		Model(&unit).
		Where("qr_code = ?", code).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &unit, nil
}

func (d *DB) GetUnitByID(id string) (*models.RedemptionUnit, error) {
	var unit models.RedemptionUnit
	err := d.Bun.NewSelect().
		Model(&unit).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &unit, nil
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

// MarkUsed is the unused→used transition as a compare-and-swap: the
// status guard in the WHERE clause means exactly one of two
// simultaneous scans gets rows == 1.
func (d *DB) MarkUsed(unitID string, usedAt time.Time, operator string) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.RedemptionUnit)(nil)).
		Set("status = ?", models.UnitUsed).
		Set("used_at = ?", usedAt).
		Set("used_by = ?", operator).
		Where("id = ?", unitID).
		Where("status = ?", models.UnitUnused).
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
