package analytics

import (
	"context"
	"fmt"
)

// OfferingAnalytics is the per-offering sales and attendance view for
// the admin dashboard.
type OfferingAnalytics struct {
	OfferingID        string           `json:"offering_id"`
	Title             string           `json:"title"`
	TotalQuantity     int              `json:"total_quantity"`
	AvailableQuantity int              `json:"available_quantity"`
	PurchaseCount     int              `json:"purchase_count"`
	UnitsSold         int              `json:"units_sold"`
	Revenue           float64          `json:"revenue"`
	RedeemedCount     int              `json:"redeemed_count"`
	DailySales        []DailySalesData `json:"daily_sales"`
}

// SummaryAnalytics aggregates across all offerings.
type SummaryAnalytics struct {
	OfferingCount int     `json:"offering_count"`
	PurchaseCount int     `json:"purchase_count"`
	UnitsSold     int     `json:"units_sold"`
	Revenue       float64 `json:"revenue"`
	RedeemedCount int     `json:"redeemed_count"`
}

type Service struct {
	db *DB
}

func NewService(db *DB) *Service {
	return &Service{db: db}
}

func (s *Service) GetOfferingAnalytics(ctx context.Context, offeringID string) (*OfferingAnalytics, error) {
	offering, err := s.db.GetOfferingByID(ctx, offeringID)
	if err != nil {
		return nil, fmt.Errorf("offering %s not found: %w", offeringID, err)
	}

	purchaseCount, revenue, err := s.db.GetPurchaseStats(ctx, offeringID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate purchases: %w", err)
	}

	unitsSold, err := s.db.GetUnitsSoldCount(ctx, offeringID)
	if err != nil {
		return nil, fmt.Errorf("failed to count units: %w", err)
	}

	redeemed, err := s.db.GetRedeemedCount(ctx, offeringID)
	if err != nil {
		return nil, fmt.Errorf("failed to count redemptions: %w", err)
	}

	dailySales, err := s.db.GetDailySalesByOfferingID(ctx, offeringID)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily sales: %w", err)
	}

	return &OfferingAnalytics{
		OfferingID:        offering.ID,
		Title:             offering.Title,
		TotalQuantity:     offering.TotalQuantity,
		AvailableQuantity: offering.AvailableQuantity,
		PurchaseCount:     purchaseCount,
		UnitsSold:         unitsSold,
		Revenue:           revenue,
		RedeemedCount:     redeemed,
		DailySales:        dailySales,
	}, nil
}

func (s *Service) GetSummary(ctx context.Context) (*SummaryAnalytics, error) {
	offerings, err := s.db.ListOfferings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list offerings: %w", err)
	}

	summary := &SummaryAnalytics{OfferingCount: len(offerings)}
	for _, offering := range offerings {
		purchaseCount, revenue, err := s.db.GetPurchaseStats(ctx, offering.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate purchases for %s: %w", offering.ID, err)
		}
		unitsSold, err := s.db.GetUnitsSoldCount(ctx, offering.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count units for %s: %w", offering.ID, err)
		}
		redeemed, err := s.db.GetRedeemedCount(ctx, offering.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count redemptions for %s: %w", offering.ID, err)
		}

		summary.PurchaseCount += purchaseCount
		summary.UnitsSold += unitsSold
		summary.Revenue += revenue
		summary.RedeemedCount += redeemed
	}
	return summary, nil
}
