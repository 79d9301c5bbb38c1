package redemption

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ms-boxoffice/internal/models"
	"ms-boxoffice/internal/utils"
)

const (
	OutcomeSuccess     = "success"
	OutcomeAlreadyUsed = "already_used"
	OutcomeExpired     = "expired"
	OutcomeNotFound    = "not_found"
)

type DBLayer interface {
	GetUnitByCode(code string) (*models.RedemptionUnit, error)
	GetUnitByID(id string) (*models.RedemptionUnit, error)
	GetUnitsByPurchase(purchaseID string) ([]models.RedemptionUnit, error)
	MarkUsed(unitID string, usedAt time.Time, operator string) (bool, error)
	GetOfferingByID(id string) (*models.Offering, error)
}

// Result is what the scanning interface branches on. Rejections are
// result variants, never errors: already-used and expired are routine
// at a gate.
type Result struct {
	Outcome  string                 `json:"outcome"`
	Unit     *models.RedemptionUnit `json:"unit,omitempty"`
	Offering *models.Offering       `json:"offering,omitempty"`
}

// BulkResult tallies a whole-purchase validation. Partial success is
// expected: some units in a group may already be used.
type BulkResult struct {
	PurchaseID  string   `json:"purchase_id"`
	Validated   int      `json:"validated"`
	AlreadyUsed int      `json:"already_used"`
	Expired     int      `json:"expired"`
	Results     []Result `json:"results"`
}

type Service struct {
	DB  DBLayer
	Now func() time.Time
}

func NewService(db DBLayer) *Service {
	return &Service{DB: db, Now: time.Now}
}

// Validate resolves a scanned code and runs the unused→used transition.
func (s *Service) Validate(lookupKey, operator string) (*Result, error) {
	unit, err := s.DB.GetUnitByCode(lookupKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &Result{Outcome: OutcomeNotFound}, nil
		}
		return nil, fmt.Errorf("lookup failed for %q: %w", lookupKey, err)
	}

	offering, err := s.DB.GetOfferingByID(unit.OfferingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load offering for ticket %s: %w", unit.TicketNumber, err)
	}

	return s.transition(unit, offering, operator)
}

// ValidateAllForPurchase runs the single-unit transition over every
// unit in a purchase. Not atomic across the batch.
func (s *Service) ValidateAllForPurchase(purchaseID, operator string) (*BulkResult, error) {
	units, err := s.DB.GetUnitsByPurchase(purchaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load units for purchase %s: %w", purchaseID, err)
	}
	if len(units) == 0 {
		return nil, fmt.Errorf("no units found for purchase %s", purchaseID)
	}

	offering, err := s.DB.GetOfferingByID(units[0].OfferingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load offering for purchase %s: %w", purchaseID, err)
	}

	bulk := &BulkResult{PurchaseID: purchaseID}
	for i := range units {
		result, err := s.transition(&units[i], offering, operator)
		if err != nil {
			return nil, err
		}
		switch result.Outcome {
		case OutcomeSuccess:
			bulk.Validated++
		case OutcomeAlreadyUsed:
			bulk.AlreadyUsed++
		case OutcomeExpired:
			bulk.Expired++
		}
		bulk.Results = append(bulk.Results, *result)
	}
	return bulk, nil
}

func (s *Service) transition(unit *models.RedemptionUnit, offering *models.Offering, operator string) (*Result, error) {
	if unit.Status == models.UnitUsed {
		return &Result{Outcome: OutcomeAlreadyUsed, Unit: unit, Offering: offering}, nil
	}
	if unit.Status == models.UnitExpired {
		return &Result{Outcome: OutcomeExpired, Unit: unit, Offering: offering}, nil
	}

	// Expiry is derived from the event date at validation time; the
	// stored status stays unused.
	now := s.Now()
	if utils.EventDatePassed(offering.EventDate, now) {
		return &Result{Outcome: OutcomeExpired, Unit: unit, Offering: offering}, nil
	}

	if operator == "" {
		operator = "Admin"
	}

	won, err := s.DB.MarkUsed(unit.ID, now, operator)
	if err != nil {
		return nil, fmt.Errorf("failed to mark ticket %s used: %w", unit.TicketNumber, err)
	}

	if !won {
		// A concurrent scan got there first. Re-read for its details.
		current, err := s.DB.GetUnitByID(unit.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to reload ticket %s: %w", unit.TicketNumber, err)
		}
		return &Result{Outcome: OutcomeAlreadyUsed, Unit: current, Offering: offering}, nil
	}

	used := *unit
	used.Status = models.UnitUsed
	used.UsedAt = &now
	used.UsedBy = operator
	return &Result{Outcome: OutcomeSuccess, Unit: &used, Offering: offering}, nil
}
