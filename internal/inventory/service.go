package inventory

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ms-boxoffice/internal/models"

	"github.com/google/uuid"
)

// ErrOfferingUnavailable covers a missing or inactive offering. A sold
// out offering is not unavailable: that reservation simply isn't
// granted.
var ErrOfferingUnavailable = errors.New("offering is not available")

var ErrInvalidQuantity = errors.New("quantity must be at least 1")

type DBLayer interface {
	CreateOffering(offering models.Offering) error
	GetOfferingByID(id string) (*models.Offering, error)
	ListOfferings() ([]models.Offering, error)
	ReserveQuantity(offeringID string, quantity int) (bool, error)
	ReleaseQuantity(offeringID string, quantity int) error
	DeactivateOffering(id string) error
}

// AvailabilityCache fronts the display reads so the storefront's
// "N tickets left" polling doesn't hit Postgres on every render.
type AvailabilityCache interface {
	GetAvailability(offeringID string) (*models.Availability, error)
	SetAvailability(availability models.Availability) error
	Invalidate(offeringID string) error
}

// Reservation is the outcome of an atomic reserve attempt.
type Reservation struct {
	Granted   bool `json:"granted"`
	Remaining int  `json:"remaining"`
}

type Service struct {
	DB    DBLayer
	Cache AvailabilityCache
}

func NewService(db DBLayer, cache AvailabilityCache) *Service {
	return &Service{DB: db, Cache: cache}
}

func (s *Service) CreateOffering(req models.OfferingRequest) (*models.Offering, error) {
	if req.TotalQuantity < 1 {
		return nil, ErrInvalidQuantity
	}

	eventDate, err := time.Parse("2006-01-02", req.EventDate)
	if err != nil {
		return nil, fmt.Errorf("invalid event date %q: %w", req.EventDate, err)
	}

	offering := models.Offering{
		ID:                uuid.NewString(),
		Title:             req.Title,
		EventDate:         eventDate,
		EventTime:         req.EventTime,
		Venue:             req.Venue,
		Price:             req.Price,
		TotalQuantity:     req.TotalQuantity,
		AvailableQuantity: req.TotalQuantity,
		Status:            models.OfferingActive,
		CreatedAt:         time.Now(),
	}

	if err := s.DB.CreateOffering(offering); err != nil {
		return nil, fmt.Errorf("failed to create offering: %w", err)
	}
	return &offering, nil
}

func (s *Service) GetOffering(id string) (*models.Offering, error) {
	offering, err := s.DB.GetOfferingByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOfferingUnavailable
		}
		return nil, fmt.Errorf("failed to load offering %s: %w", id, err)
	}
	return offering, nil
}

func (s *Service) ListOfferings() ([]models.Offering, error) {
	return s.DB.ListOfferings()
}

// Reserve atomically takes quantity units out of the offering's pool.
// A not-granted result is a normal sold-out outcome, not an error; the
// caller branches on Reservation.Granted.
func (s *Service) Reserve(offeringID string, quantity int) (*Reservation, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	granted, err := s.DB.ReserveQuantity(offeringID, quantity)
	if err != nil {
		return nil, fmt.Errorf("reserve failed for offering %s: %w", offeringID, err)
	}

	// One follow-up read either way: the remaining count for a granted
	// reservation, or the reason the update matched no row.
	offering, err := s.DB.GetOfferingByID(offeringID)
	if err != nil {
		if !granted && errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOfferingUnavailable
		}
		return nil, fmt.Errorf("failed to load offering %s after reserve: %w", offeringID, err)
	}

	if granted {
		s.invalidateCache(offeringID)
		return &Reservation{Granted: true, Remaining: offering.AvailableQuantity}, nil
	}

	if offering.Status == models.OfferingInactive {
		return nil, ErrOfferingUnavailable
	}
	return &Reservation{Granted: false, Remaining: offering.AvailableQuantity}, nil
}

// Release is the compensation path: minting failed after a granted
// reservation, so the units go back to the pool.
func (s *Service) Release(offeringID string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if err := s.DB.ReleaseQuantity(offeringID, quantity); err != nil {
		return fmt.Errorf("release failed for offering %s: %w", offeringID, err)
	}
	s.invalidateCache(offeringID)
	return nil
}

// Availability returns the display view, served from Redis when fresh.
func (s *Service) Availability(offeringID string) (*models.Availability, error) {
	if s.Cache != nil {
		if cached, err := s.Cache.GetAvailability(offeringID); err == nil && cached != nil {
			return cached, nil
		}
	}

	offering, err := s.GetOffering(offeringID)
	if err != nil {
		return nil, err
	}

	availability := models.Availability{
		OfferingID:        offering.ID,
		AvailableQuantity: offering.AvailableQuantity,
		Status:            offering.Status,
	}
	if s.Cache != nil {
		_ = s.Cache.SetAvailability(availability)
	}
	return &availability, nil
}

// DeleteOffering soft-deletes: the offering drops off sale but its
// purchase history stays intact.
func (s *Service) DeleteOffering(id string) error {
	if _, err := s.GetOffering(id); err != nil {
		return err
	}
	if err := s.DB.DeactivateOffering(id); err != nil {
		return fmt.Errorf("failed to deactivate offering %s: %w", id, err)
	}
	s.invalidateCache(id)
	return nil
}

func (s *Service) invalidateCache(offeringID string) {
	if s.Cache != nil {
		_ = s.Cache.Invalidate(offeringID)
	}
}
