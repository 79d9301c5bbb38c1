package analytics

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"ms-boxoffice/internal/models"
)

// DB handles analytics database operations
type DB struct {
	bun *bun.DB
}

func NewDB(db *bun.DB) *DB {
	return &DB{bun: db}
}

func (db *DB) GetOfferingByID(ctx context.Context, offeringID string) (*models.Offering, error) {
	var offering models.Offering
	err := db.bun.NewSelect().
		Model(&offering).
		Where("id = ?", offeringID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &offering, nil
}

func (db *DB) ListOfferings(ctx context.Context) ([]models.Offering, error) {
	var offerings []models.Offering
	err := db.bun.NewSelect().
		Model(&offerings).
		Order("event_date").
		Scan(ctx)
	return offerings, err
}

// GetPurchaseStats aggregates purchase count and completed revenue for
// an offering.
func (db *DB) GetPurchaseStats(ctx context.Context, offeringID string) (int, float64, error) {
	count, err := db.bun.NewSelect().
		Model((*models.Purchase)(nil)).
		Where("offering_id = ?", offeringID).
		Count(ctx)
	if err != nil {
		return 0, 0, err
	}

	var revenue float64
	err = db.bun.NewRaw(
		"SELECT COALESCE(SUM(total_amount), 0) FROM purchases WHERE offering_id = ? AND payment_status = ?",
		offeringID, models.PaymentCompleted).
		Scan(ctx, &revenue)
	if err != nil {
		return 0, 0, err
	}
	return count, revenue, nil
}

func (db *DB) GetUnitsSoldCount(ctx context.Context, offeringID string) (int, error) {
	return db.bun.NewSelect().
		Model((*models.RedemptionUnit)(nil)).
		Where("offering_id = ?", offeringID).
		Count(ctx)
}

func (db *DB) GetRedeemedCount(ctx context.Context, offeringID string) (int, error) {
	return db.bun.NewSelect().
		Model((*models.RedemptionUnit)(nil)).
		Where("offering_id = ?", offeringID).
		Where("status = ?", models.UnitUsed).
		Count(ctx)
}

// DailySalesData represents raw daily sales metrics for an offering.
type DailySalesData struct {
	SalesDate     time.Time `bun:"sales_date" json:"sales_date"`
	DailyRevenue  float64   `bun:"daily_revenue" json:"daily_revenue"`
	DailyQuantity int       `bun:"daily_quantity" json:"daily_quantity"`
}

func (db *DB) GetDailySalesByOfferingID(ctx context.Context, offeringID string) ([]DailySalesData, error) {
	var dailySales []DailySalesData
	err := db.bun.NewRaw(`
		SELECT
			DATE(p.created_at) AS sales_date,
			COALESCE(SUM(p.total_amount), 0) AS daily_revenue,
			COALESCE(SUM(p.quantity), 0) AS daily_quantity
		FROM purchases p
		WHERE p.offering_id = ? AND p.payment_status = ?
		GROUP BY DATE(p.created_at)
		ORDER BY sales_date`,
		offeringID, models.PaymentCompleted).
		Scan(ctx, &dailySales)
	return dailySales, err
}
