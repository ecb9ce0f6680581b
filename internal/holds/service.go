package holds

import (
	"context"
	"time"

	"boletera/internal/inventory"
	"boletera/internal/shared/apperrors"
	"boletera/internal/shared/config"
	"boletera/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartItem is one tier line of a checkout cart, with optional per-unit
// attendee data. Attendees may be shorter than Quantity; the remaining units
// get blank reservations filled in later by the buyer.
type CartItem struct {
	TierID    uuid.UUID
	Quantity  int
	Attendees []Attendee
}

type Attendee struct {
	Name        string
	Email       string
	FormAnswers string
	CustomPrice *int64
}

type Service interface {
	CreateHolds(ctx context.Context, items []CartItem) ([]Hold, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]Hold, error)
	GetReservationsByHolds(ctx context.Context, tx *gorm.DB, holdIDs []uuid.UUID) ([]HolderReservation, error)
	GetReservationsByOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) ([]HolderReservation, error)
	DeleteReservationsByOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error
	AttachToOrder(ctx context.Context, tx *gorm.DB, holdIDs []uuid.UUID, orderID uuid.UUID) error

	// Consume finalizes an order's active holds after payment: the ledger
	// converts held units to sold and the holds are latched released.
	Consume(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error
	// ReleaseByOrder returns an order's active holds to availability.
	ReleaseByOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error
	// ReleaseHold cancels a single hold before checkout.
	ReleaseHold(ctx context.Context, holdID uuid.UUID) error
	// SweepExpired releases expired holds in batches. Safe to run
	// concurrently with itself and with settlement.
	SweepExpired(ctx context.Context) (int, error)
}

type service struct {
	repo      Repository
	ledger    inventory.Service
	ttl       time.Duration
	sweepSize int
	logger    *logger.Logger
	now       func() time.Time
	runInTx   func(ctx context.Context, fn func(tx *gorm.DB) error) error
}

func NewService(repo Repository, ledger inventory.Service, db *gorm.DB, cfg *config.Config, log *logger.Logger) Service {
	return &service{
		repo:      repo,
		ledger:    ledger,
		ttl:       cfg.Holds.TTL,
		sweepSize: cfg.Holds.SweepBatch,
		logger:    log,
		now:       time.Now,
		runInTx: func(ctx context.Context, fn func(tx *gorm.DB) error) error {
			return db.WithContext(ctx).Transaction(fn)
		},
	}
}

func (s *service) CreateHolds(ctx context.Context, items []CartItem) ([]Hold, error) {
	if len(items) == 0 {
		return nil, apperrors.New(apperrors.KindValidation, "cart is empty")
	}

	expiresAt := s.now().UTC().Add(s.ttl)
	var created []Hold

	err := s.runInTx(ctx, func(tx *gorm.DB) error {
		created = created[:0]
		for _, item := range items {
			tier, err := s.ledger.GetTier(ctx, item.TierID)
			if err != nil {
				return err
			}
			if err := s.validateItem(tier, item); err != nil {
				return err
			}
			if err := s.ledger.Reserve(ctx, tx, item.TierID, item.Quantity); err != nil {
				return err
			}

			hold := Hold{
				TierID:    item.TierID,
				Quantity:  item.Quantity,
				ExpiresAt: expiresAt,
			}
			if err := s.repo.Create(ctx, tx, &hold); err != nil {
				return err
			}

			reservations := make([]HolderReservation, 0, item.Quantity)
			for i := 0; i < item.Quantity; i++ {
				res := HolderReservation{HoldID: hold.ID, TierID: item.TierID}
				if i < len(item.Attendees) {
					a := item.Attendees[i]
					res.HolderName = a.Name
					res.HolderEmail = a.Email
					res.FormAnswers = a.FormAnswers
					res.CustomPrice = a.CustomPrice
				}
				reservations = append(reservations, res)
			}
			if err := s.repo.CreateReservations(ctx, tx, reservations); err != nil {
				return err
			}
			created = append(created, hold)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.LogHoldsCreated(ctx, len(created), expiresAt)
	return created, nil
}

func (s *service) validateItem(tier *inventory.TicketTier, item CartItem) error {
	if item.Quantity < tier.MinPerOrder {
		return apperrors.Newf(apperrors.KindValidation,
			"tier %s requires at least %d units per order", tier.ID, tier.MinPerOrder)
	}
	if tier.MaxPerOrder > 0 && item.Quantity > tier.MaxPerOrder {
		return apperrors.Newf(apperrors.KindValidation,
			"tier %s allows at most %d units per order", tier.ID, tier.MaxPerOrder)
	}
	if len(item.Attendees) > item.Quantity {
		return apperrors.New(apperrors.KindValidation, "more attendees than units requested")
	}
	for _, a := range item.Attendees {
		if _, err := s.ledger.UnitPrice(tier, a.CustomPrice); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]Hold, error) {
	return s.repo.GetByIDs(ctx, tx, ids)
}

func (s *service) GetReservationsByHolds(ctx context.Context, tx *gorm.DB, holdIDs []uuid.UUID) ([]HolderReservation, error) {
	return s.repo.GetReservationsByHolds(ctx, tx, holdIDs)
}

func (s *service) GetReservationsByOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) ([]HolderReservation, error) {
	return s.repo.GetReservationsByOrder(ctx, tx, orderID)
}

func (s *service) DeleteReservationsByOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	return s.repo.DeleteReservationsByOrder(ctx, tx, orderID)
}

func (s *service) AttachToOrder(ctx context.Context, tx *gorm.DB, holdIDs []uuid.UUID, orderID uuid.UUID) error {
	if err := s.repo.AttachToOrder(ctx, tx, holdIDs, orderID); err != nil {
		return err
	}
	return s.repo.AttachReservationsToOrder(ctx, tx, holdIDs, orderID)
}

func (s *service) Consume(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	active, err := s.repo.GetActiveByOrder(ctx, tx, orderID)
	if err != nil {
		return err
	}
	for _, hold := range active {
		won, err := s.repo.MarkReleased(ctx, tx, hold.ID)
		if err != nil {
			return err
		}
		if !won {
			continue
		}
		if err := s.ledger.Commit(ctx, tx, hold.TierID, hold.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) ReleaseByOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	active, err := s.repo.GetActiveByOrder(ctx, tx, orderID)
	if err != nil {
		return err
	}
	released := 0
	for _, hold := range active {
		won, err := s.repo.MarkReleased(ctx, tx, hold.ID)
		if err != nil {
			return err
		}
		if !won {
			continue
		}
		if err := s.ledger.Release(ctx, tx, hold.TierID, hold.Quantity); err != nil {
			return err
		}
		released++
	}
	if released > 0 {
		s.logger.LogHoldsReleased(ctx, released, "order_release")
	}
	return nil
}

func (s *service) ReleaseHold(ctx context.Context, holdID uuid.UUID) error {
	hold, err := s.repo.GetByID(ctx, holdID)
	if err != nil {
		return err
	}
	if hold.OrderID != nil {
		return apperrors.New(apperrors.KindConflict, "hold is attached to an order; cancel the order instead")
	}
	err = s.runInTx(ctx, func(tx *gorm.DB) error {
		won, err := s.repo.MarkReleased(ctx, tx, hold.ID)
		if err != nil {
			return err
		}
		if !won {
			return nil
		}
		return s.ledger.Release(ctx, tx, hold.TierID, hold.Quantity)
	})
	if err != nil {
		return err
	}
	s.logger.LogHoldsReleased(ctx, 1, "cancelled")
	return nil
}

func (s *service) SweepExpired(ctx context.Context) (int, error) {
	now := s.now().UTC()
	expired, err := s.repo.ListExpired(ctx, now, s.sweepSize)
	if err != nil {
		return 0, err
	}

	released := 0
	for _, hold := range expired {
		hold := hold
		won := false
		err := s.runInTx(ctx, func(tx *gorm.DB) error {
			var err error
			won, err = s.repo.MarkReleased(ctx, tx, hold.ID)
			if err != nil || !won {
				return err
			}
			return s.ledger.Release(ctx, tx, hold.TierID, hold.Quantity)
		})
		if err != nil {
			s.logger.WithError(err).Error("failed to sweep hold", "hold_id", hold.ID)
			continue
		}
		if won {
			released++
		}
	}

	if released > 0 {
		s.logger.LogSweepCompleted(ctx, len(expired), released)
	}
	return released, nil
}
