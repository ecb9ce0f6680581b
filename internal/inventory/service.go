package inventory

import (
	"context"
	"fmt"
	"time"

	"boletera/internal/shared/apperrors"
	"boletera/internal/shared/config"
	"boletera/pkg/cache"
	"boletera/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service interface {
	GetTier(ctx context.Context, id uuid.UUID) (*TicketTier, error)
	GetAvailability(ctx context.Context, tierID uuid.UUID) (*Availability, error)
	InvalidateAvailability(ctx context.Context, tierID uuid.UUID)

	// UnitPrice resolves the charge price for one unit, validating pay
	// what you want amounts against the tier bounds.
	UnitPrice(tier *TicketTier, customPrice *int64) (int64, error)
	// UnitFee computes the per-unit service fee from the resolved rate.
	UnitFee(tier *TicketTier, unitPrice int64) int64
	// FeeRateBps resolves the effective fee rate for a tier.
	FeeRateBps(tier *TicketTier) int

	Reserve(ctx context.Context, tx *gorm.DB, tierID uuid.UUID, quantity int) error
	Release(ctx context.Context, tx *gorm.DB, tierID uuid.UUID, quantity int) error
	Commit(ctx context.Context, tx *gorm.DB, tierID uuid.UUID, quantity int) error
}

type service struct {
	repo               Repository
	cache              cache.Service
	cacheTTL           time.Duration
	platformFeeRateBps int
	logger             *logger.Logger
}

func NewService(repo Repository, cacheSvc cache.Service, cfg *config.Config, log *logger.Logger) Service {
	return &service{
		repo:               repo,
		cache:              cacheSvc,
		cacheTTL:           cfg.Redis.AvailabilityCacheTTL,
		platformFeeRateBps: cfg.Billing.PlatformFeeRateBps,
		logger:             log,
	}
}

func availabilityCacheKey(tierID uuid.UUID) string {
	return fmt.Sprintf("availability:tier:%s", tierID)
}

func (s *service) GetTier(ctx context.Context, id uuid.UUID) (*TicketTier, error) {
	return s.repo.GetTierWithEvent(ctx, id)
}

func (s *service) GetAvailability(ctx context.Context, tierID uuid.UUID) (*Availability, error) {
	var avail Availability
	err := s.cache.GetOrSet(ctx, availabilityCacheKey(tierID), s.cacheTTL, func() (interface{}, error) {
		tier, err := s.repo.GetTier(ctx, tierID)
		if err != nil {
			return nil, err
		}
		snapshot := Availability{
			TierID:    tier.ID,
			Unlimited: tier.Capacity == nil,
			Price:     tier.Price,
		}
		if remaining := tier.Available(); remaining != nil {
			snapshot.Available = *remaining
		}
		return &snapshot, nil
	}, &avail)
	if err != nil {
		return nil, err
	}
	return &avail, nil
}

// InvalidateAvailability drops the cached snapshot after a counter change.
// Cache errors are logged and swallowed; the TTL bounds the staleness.
func (s *service) InvalidateAvailability(ctx context.Context, tierID uuid.UUID) {
	if err := s.cache.Delete(ctx, availabilityCacheKey(tierID)); err != nil {
		s.logger.WithError(err).Warn("failed to invalidate availability cache", "tier_id", tierID)
	}
}

func (s *service) UnitPrice(tier *TicketTier, customPrice *int64) (int64, error) {
	if !tier.PayWhatYouWant {
		if customPrice != nil && *customPrice != tier.Price {
			return 0, apperrors.New(apperrors.KindValidation, "custom price not allowed for fixed price tier")
		}
		return tier.Price, nil
	}
	if customPrice == nil {
		return tier.Price, nil
	}
	price := *customPrice
	if price < 0 {
		return 0, apperrors.New(apperrors.KindValidation, "price must not be negative")
	}
	if tier.MinPrice != nil && price < *tier.MinPrice {
		return 0, apperrors.Newf(apperrors.KindValidation, "price below tier minimum of %d", *tier.MinPrice)
	}
	if tier.MaxPrice != nil && price > *tier.MaxPrice {
		return 0, apperrors.Newf(apperrors.KindValidation, "price above tier maximum of %d", *tier.MaxPrice)
	}
	return price, nil
}

// FeeRateBps walks the override chain: tier, then event, then the event's
// organizer level override, falling back to the platform default.
func (s *service) FeeRateBps(tier *TicketTier) int {
	if tier.FeeRateBps != nil {
		return *tier.FeeRateBps
	}
	if tier.Event != nil {
		if tier.Event.FeeRateBps != nil {
			return *tier.Event.FeeRateBps
		}
		if tier.Event.OrganizerFeeRateBps != nil {
			return *tier.Event.OrganizerFeeRateBps
		}
	}
	return s.platformFeeRateBps
}

func (s *service) UnitFee(tier *TicketTier, unitPrice int64) int64 {
	if unitPrice <= 0 {
		return 0
	}
	rate := int64(s.FeeRateBps(tier))
	return roundHalfUpDiv(unitPrice*rate, 10000)
}

func (s *service) Reserve(ctx context.Context, tx *gorm.DB, tierID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return apperrors.New(apperrors.KindValidation, "quantity must be positive")
	}
	if err := s.repo.Reserve(ctx, tx, tierID, quantity); err != nil {
		return err
	}
	s.InvalidateAvailability(ctx, tierID)
	return nil
}

func (s *service) Release(ctx context.Context, tx *gorm.DB, tierID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return apperrors.New(apperrors.KindValidation, "quantity must be positive")
	}
	if err := s.repo.Release(ctx, tx, tierID, quantity); err != nil {
		return err
	}
	s.InvalidateAvailability(ctx, tierID)
	return nil
}

func (s *service) Commit(ctx context.Context, tx *gorm.DB, tierID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return apperrors.New(apperrors.KindValidation, "quantity must be positive")
	}
	if err := s.repo.Commit(ctx, tx, tierID, quantity); err != nil {
		return err
	}
	s.InvalidateAvailability(ctx, tierID)
	return nil
}

// roundHalfUpDiv divides num by den rounding halves away from zero.
// Both arguments must be non-negative.
func roundHalfUpDiv(num, den int64) int64 {
	return (num*2 + den) / (den * 2)
}
