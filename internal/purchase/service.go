package purchase

import (
	"errors"
	"fmt"
	"time"

	"ms-boxoffice/internal/inventory"
	"ms-boxoffice/internal/models"
	"ms-boxoffice/internal/purchase/gateway"
	"ms-boxoffice/internal/redemption"
	"ms-boxoffice/internal/utils"
)

// ErrSoldOut means the reservation was not granted: a frequent,
// non-alarming outcome surfaced to the buyer as "not enough tickets
// remaining".
var ErrSoldOut = errors.New("not enough tickets remaining")

// ErrMintingFailure means the reservation succeeded but the purchase
// and its units could not be committed. The reservation has already
// been released by the time this surfaces; the caller may retry with
// the same payment reference.
var ErrMintingFailure = errors.New("failed to issue tickets")

var ErrPurchaseNotFound = errors.New("purchase not found")

type DBLayer interface {
	CreatePurchaseWithUnits(purchase models.Purchase, units []models.RedemptionUnit) error
	GetPurchaseByID(id string) (*models.Purchase, error)
	GetPurchaseByReference(reference string) (*models.Purchase, error)
	GetPurchaseByAccessToken(token string) (*models.Purchase, error)
	GetUnitsByPurchase(purchaseID string) ([]models.RedemptionUnit, error)
	UpdatePaymentStatus(id, status string) (bool, error)
}

// Ledger is the slice of the inventory service the purchase flow needs.
type Ledger interface {
	GetOffering(id string) (*models.Offering, error)
	Reserve(offeringID string, quantity int) (*inventory.Reservation, error)
	Release(offeringID string, quantity int) error
}

// Publisher signals notifications after a purchase commits. Publish
// failures are logged, never propagated: the tickets exist, the
// dispatcher will catch up.
type Publisher interface {
	PublishNotification(notification models.PurchaseNotification) error
	PublishPurchaseCompleted(purchase models.Purchase) error
}

// Emitter feeds the admin dashboard's live purchase stream.
type Emitter interface {
	BroadcastPurchase(purchase models.PurchaseWithUnits)
}

// Verifier confirms a payment reference with the gateway when the
// caller hasn't already.
type Verifier interface {
	VerifyReference(reference string) (*gateway.VerificationResult, error)
}

type Service struct {
	DB        DBLayer
	Ledger    Ledger
	Publisher Publisher
	Emitter   Emitter
	Verifier  Verifier

	TicketPrefix  string
	AccessURLBase string
}

func NewService(db DBLayer, ledger Ledger, publisher Publisher, emitter Emitter, verifier Verifier, ticketPrefix, accessURLBase string) *Service {
	return &Service{
		DB:            db,
		Ledger:        ledger,
		Publisher:     publisher,
		Emitter:       emitter,
		Verifier:      verifier,
		TicketPrefix:  ticketPrefix,
		AccessURLBase: accessURLBase,
	}
}

// Create records one checkout: reserve inventory, persist the purchase
// with its units, then signal notifications. Idempotent on the payment
// reference, so a retried webhook returns the original purchase instead
// of double-decrementing or double-minting.
func (s *Service) Create(req models.PurchaseRequest) (*models.PurchaseWithUnits, error) {
	if req.Quantity < 1 {
		return nil, inventory.ErrInvalidQuantity
	}
	if req.OfferingID == "" || req.PaymentReference == "" {
		return nil, errors.New("offering_id and payment_reference are required")
	}

	// Idempotency check first: a replayed webhook must not reach the
	// ledger at all.
	if existing, err := s.DB.GetPurchaseByReference(req.PaymentReference); err != nil {
		return nil, fmt.Errorf("idempotency lookup failed: %w", err)
	} else if existing != nil {
		fmt.Printf("Replay of payment reference %s, returning existing purchase %s\n", req.PaymentReference, existing.ID)
		return s.withUnits(existing)
	}

	offering, err := s.Ledger.GetOffering(req.OfferingID)
	if err != nil {
		return nil, err
	}

	reservation, err := s.Ledger.Reserve(req.OfferingID, req.Quantity)
	if err != nil {
		return nil, err
	}
	if !reservation.Granted {
		return nil, ErrSoldOut
	}

	purchase := models.Purchase{
		ID:               utils.GeneratePurchaseID(),
		OfferingID:       offering.ID,
		CustomerName:     req.CustomerName,
		CustomerEmail:    req.CustomerEmail,
		CustomerPhone:    req.CustomerPhone,
		Quantity:         req.Quantity,
		TotalAmount:      float64(req.Quantity) * offering.Price,
		PaymentReference: req.PaymentReference,
		PaymentStatus:    s.resolvePaymentStatus(req),
		PaymentChannel:   req.PaymentChannel,
		AccessToken:      utils.GenerateAccessToken(),
		CreatedAt:        time.Now(),
	}

	units := redemption.MintUnits(s.TicketPrefix, purchase)

	if err := s.DB.CreatePurchaseWithUnits(purchase, units); err != nil {
		// Release the reservation before deciding what went wrong: the
		// decrement must not outlive a failed mint.
		if relErr := s.Ledger.Release(req.OfferingID, req.Quantity); relErr != nil {
			fmt.Printf("CRITICAL: failed to release reservation for offering %s after mint failure: %v\n", req.OfferingID, relErr)
		}

		// A unique violation on payment_reference means a concurrent
		// request with the same reference won the insert.
		if existing, lookupErr := s.DB.GetPurchaseByReference(req.PaymentReference); lookupErr == nil && existing != nil {
			return s.withUnits(existing)
		}
		return nil, fmt.Errorf("%w: %v", ErrMintingFailure, err)
	}

	result := models.PurchaseWithUnits{Purchase: purchase, Units: units}
	s.announce(result, offering)
	return &result, nil
}

// GetByAccessToken is the customer "my tickets" retrieval.
func (s *Service) GetByAccessToken(token string) (*models.PurchaseWithUnits, error) {
	purchase, err := s.DB.GetPurchaseByAccessToken(token)
	if err != nil {
		return nil, ErrPurchaseNotFound
	}
	return s.withUnits(purchase)
}

// ConfirmPayment applies the pending→completed/failed transition from a
// late webhook. Returns the purchase either way; the transition only
// lands once.
func (s *Service) ConfirmPayment(reference, status string) (*models.Purchase, error) {
	if status != models.PaymentCompleted && status != models.PaymentFailed {
		return nil, fmt.Errorf("invalid payment status %q", status)
	}

	purchase, err := s.DB.GetPurchaseByReference(reference)
	if err != nil {
		return nil, fmt.Errorf("lookup failed for reference %s: %w", reference, err)
	}
	if purchase == nil {
		return nil, ErrPurchaseNotFound
	}

	applied, err := s.DB.UpdatePaymentStatus(purchase.ID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}
	if applied {
		purchase.PaymentStatus = status
	}
	return purchase, nil
}

// AccessURL derives the customer-facing retrieval link included in
// notifications.
func (s *Service) AccessURL(purchase models.Purchase) string {
	return fmt.Sprintf("%s/%s", s.AccessURLBase, purchase.AccessToken)
}

func (s *Service) resolvePaymentStatus(req models.PurchaseRequest) string {
	switch req.PaymentStatus {
	case models.PaymentCompleted, models.PaymentFailed:
		return req.PaymentStatus
	}

	// Caller didn't know; ask the gateway if one is configured.
	if s.Verifier != nil {
		result, err := s.Verifier.VerifyReference(req.PaymentReference)
		if err != nil {
			fmt.Printf("Gateway verification error for %s: %v\n", req.PaymentReference, err)
			return models.PaymentPending
		}
		if result.Verified {
			return models.PaymentCompleted
		}
	}
	return models.PaymentPending
}

func (s *Service) withUnits(purchase *models.Purchase) (*models.PurchaseWithUnits, error) {
	units, err := s.DB.GetUnitsByPurchase(purchase.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load units for purchase %s: %w", purchase.ID, err)
	}
	return &models.PurchaseWithUnits{Purchase: *purchase, Units: units}, nil
}

func (s *Service) announce(result models.PurchaseWithUnits, offering *models.Offering) {
	if s.Publisher != nil {
		ticketNumbers := make([]string, 0, len(result.Units))
		for _, unit := range result.Units {
			ticketNumbers = append(ticketNumbers, unit.TicketNumber)
		}

		notification := models.PurchaseNotification{
			PurchaseID:    result.Purchase.ID,
			OfferingID:    offering.ID,
			OfferingTitle: offering.Title,
			CustomerName:  result.Purchase.CustomerName,
			CustomerEmail: result.Purchase.CustomerEmail,
			CustomerPhone: result.Purchase.CustomerPhone,
			Quantity:      result.Purchase.Quantity,
			TotalAmount:   result.Purchase.TotalAmount,
			TicketNumbers: ticketNumbers,
			AccessURL:     s.AccessURL(result.Purchase),
			CreatedAt:     result.Purchase.CreatedAt,
		}
		if err := s.Publisher.PublishNotification(notification); err != nil {
			fmt.Printf("Kafka publish error (notification): %v\n", err)
		}
		if err := s.Publisher.PublishPurchaseCompleted(result.Purchase); err != nil {
			fmt.Printf("Kafka publish error (purchase completed): %v\n", err)
		}
	}

	if s.Emitter != nil {
		s.Emitter.BroadcastPurchase(result)
	}
}
