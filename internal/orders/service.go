package orders

import (
	"context"
	"time"

	"boletera/internal/holds"
	"boletera/internal/inventory"
	"boletera/internal/shared/apperrors"
	"boletera/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateOrderInput struct {
	HoldIDs    []uuid.UUID
	UserID     *uuid.UUID
	GuestEmail string
	Discount   int64
}

type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)

	// Settle marks the order paid and freezes its effective revenue split.
	// Returns false without error when the order was not pending anymore,
	// so a racing settlement can detect it lost.
	Settle(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, paidAt time.Time) (bool, *Order, error)
	Cancel(ctx context.Context, orderID uuid.UUID) error
	RecordRefund(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, amount int64, reason string) (*Order, error)
}

type service struct {
	repo    Repository
	holds   holds.Service
	ledger  inventory.Service
	logger  *logger.Logger
	now     func() time.Time
	runInTx func(ctx context.Context, fn func(tx *gorm.DB) error) error
}

func NewService(repo Repository, holdSvc holds.Service, ledger inventory.Service, db *gorm.DB, log *logger.Logger) Service {
	return &service{
		repo:   repo,
		holds:  holdSvc,
		ledger: ledger,
		logger: log,
		now:    time.Now,
		runInTx: func(ctx context.Context, fn func(tx *gorm.DB) error) error {
			return db.WithContext(ctx).Transaction(fn)
		},
	}
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error) {
	if len(input.HoldIDs) == 0 {
		return nil, apperrors.New(apperrors.KindValidation, "at least one hold is required")
	}
	if input.UserID == nil && input.GuestEmail == "" {
		return nil, apperrors.New(apperrors.KindValidation, "order needs a user or a guest email")
	}
	if input.Discount < 0 {
		return nil, apperrors.New(apperrors.KindValidation, "discount must not be negative")
	}

	heldSet, err := s.holds.GetByIDs(ctx, nil, input.HoldIDs)
	if err != nil {
		return nil, err
	}
	if len(heldSet) != len(input.HoldIDs) {
		return nil, apperrors.New(apperrors.KindNotFound, "one or more holds not found")
	}
	now := s.now().UTC()
	for _, h := range heldSet {
		if h.Released {
			return nil, apperrors.Newf(apperrors.KindConflict, "hold %s is already released", h.ID)
		}
		if h.OrderID != nil {
			return nil, apperrors.Newf(apperrors.KindConflict, "hold %s is attached to another order", h.ID)
		}
		if !h.ExpiresAt.After(now) {
			return nil, apperrors.Newf(apperrors.KindConflict, "hold %s has expired", h.ID)
		}
	}

	reservations, err := s.holds.GetReservationsByHolds(ctx, nil, input.HoldIDs)
	if err != nil {
		return nil, err
	}

	tiers := make(map[uuid.UUID]*inventory.TicketTier)
	for _, h := range heldSet {
		if _, ok := tiers[h.TierID]; ok {
			continue
		}
		tier, err := s.ledger.GetTier(ctx, h.TierID)
		if err != nil {
			return nil, err
		}
		tiers[h.TierID] = tier
	}

	currency := ""
	var subtotal, fee int64
	items := make([]OrderItem, 0, len(reservations))
	for _, res := range reservations {
		tier := tiers[res.TierID]
		if tier.Event != nil {
			if currency == "" {
				currency = tier.Event.Currency
			} else if currency != tier.Event.Currency {
				return nil, apperrors.New(apperrors.KindValidation, "holds span multiple currencies")
			}
		}
		unitPrice, err := s.ledger.UnitPrice(tier, res.CustomPrice)
		if err != nil {
			return nil, err
		}
		unitFee := s.ledger.UnitFee(tier, unitPrice)
		subtotal += unitPrice
		fee += unitFee
		items = append(items, OrderItem{
			TierID:    res.TierID,
			HoldID:    res.HoldID,
			UnitPrice: unitPrice,
			UnitFee:   unitFee,
		})
	}

	if input.Discount > subtotal+fee {
		return nil, apperrors.New(apperrors.KindValidation, "discount exceeds order amount")
	}

	order := &Order{
		UserID:     input.UserID,
		GuestEmail: input.GuestEmail,
		Currency:   currency,
		Status:     StatusPending,
		Subtotal:   subtotal,
		ServiceFee: fee,
		Discount:   input.Discount,
		Total:      subtotal + fee - input.Discount,
		Items:      items,
	}

	err = s.runInTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, order); err != nil {
			return err
		}
		return s.holds.AttachToOrder(ctx, tx, input.HoldIDs, order.ID)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.repo.GetByID(ctx, nil, id)
}

func (s *service) Settle(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, paidAt time.Time) (bool, *Order, error) {
	won, err := s.repo.MarkPaid(ctx, tx, orderID, paidAt.UTC())
	if err != nil {
		return false, nil, err
	}
	if !won {
		order, err := s.repo.GetByID(ctx, tx, orderID)
		return false, order, err
	}

	order, err := s.repo.GetByID(ctx, tx, orderID)
	if err != nil {
		return false, nil, err
	}
	alloc, err := Allocate(order.Subtotal, order.ServiceFee, order.Total, order.Items)
	if err != nil {
		return false, nil, err
	}
	if err := s.repo.FreezeAllocation(ctx, tx, order, alloc); err != nil {
		return false, nil, err
	}
	order.Status = StatusPaid
	order.SubtotalEffective = &alloc.SubtotalEffective
	order.ServiceFeeEffective = &alloc.ServiceFeeEffective
	for i := range order.Items {
		order.Items[i].UnitPriceEffective = &alloc.Items[i].UnitPriceEffective
		order.Items[i].UnitFeeEffective = &alloc.Items[i].UnitFeeEffective
	}
	return true, order, nil
}

func (s *service) Cancel(ctx context.Context, orderID uuid.UUID) error {
	return s.runInTx(ctx, func(tx *gorm.DB) error {
		won, err := s.repo.TransitionStatus(ctx, tx, orderID, StatusPending, StatusCancelled)
		if err != nil {
			return err
		}
		if !won {
			order, err := s.repo.GetByID(ctx, tx, orderID)
			if err != nil {
				return err
			}
			return apperrors.Newf(apperrors.KindConflict, "order is %s, only pending orders can be cancelled", order.Status)
		}
		return s.holds.ReleaseByOrder(ctx, tx, orderID)
	})
}

func (s *service) RecordRefund(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, amount int64, reason string) (*Order, error) {
	order, err := s.repo.GetByID(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != StatusPaid && order.Status != StatusPartiallyRefunded {
		return nil, apperrors.Newf(apperrors.KindConflict, "order is %s, only paid orders can be refunded", order.Status)
	}
	refunded := order.RefundedAmount + amount
	if refunded > order.Total {
		return nil, apperrors.New(apperrors.KindValidation, "refund exceeds order total")
	}
	status := StatusPartiallyRefunded
	if refunded == order.Total {
		status = StatusRefunded
	}
	if err := s.repo.RecordRefund(ctx, tx, orderID, status, refunded, reason); err != nil {
		return nil, err
	}
	order.Status = status
	order.RefundedAmount = refunded
	order.RefundReason = reason
	return order, nil
}
