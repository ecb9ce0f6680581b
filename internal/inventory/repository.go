package inventory

import (
	"context"
	"errors"
	"time"

	"boletera/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository owns the tier counters. Reserve, Release and Commit are single
// conditional UPDATEs so two shoppers racing for the last seats are resolved
// by the database, not by a read-then-write in application code. All three
// accept an optional transaction handle so settlement can run them inside
// its atomic unit.
type Repository interface {
	GetTier(ctx context.Context, id uuid.UUID) (*TicketTier, error)
	GetTierWithEvent(ctx context.Context, id uuid.UUID) (*TicketTier, error)
	CreateEvent(ctx context.Context, event *Event) error
	CreateTier(ctx context.Context, tier *TicketTier) error

	Reserve(ctx context.Context, tx *gorm.DB, tierID uuid.UUID, quantity int) error
	Release(ctx context.Context, tx *gorm.DB, tierID uuid.UUID, quantity int) error
	Commit(ctx context.Context, tx *gorm.DB, tierID uuid.UUID, quantity int) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *repository) GetTier(ctx context.Context, id uuid.UUID) (*TicketTier, error) {
	var tier TicketTier
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&tier).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.KindNotFound, "ticket tier %s not found", id)
		}
		return nil, err
	}
	return &tier, nil
}

func (r *repository) GetTierWithEvent(ctx context.Context, id uuid.UUID) (*TicketTier, error) {
	var tier TicketTier
	err := r.db.WithContext(ctx).
		Preload("Event").
		Where("id = ?", id).
		First(&tier).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.KindNotFound, "ticket tier %s not found", id)
		}
		return nil, err
	}
	return &tier, nil
}

func (r *repository) CreateEvent(ctx context.Context, event *Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) CreateTier(ctx context.Context, tier *TicketTier) error {
	return r.db.WithContext(ctx).Create(tier).Error
}

// Reserve moves quantity units into held_count, guarded by the capacity
// check in the same statement. Zero rows affected means either the tier is
// missing or the capacity would be exceeded.
func (r *repository) Reserve(ctx context.Context, tx *gorm.DB, tierID uuid.UUID, quantity int) error {
	res := r.conn(tx).WithContext(ctx).Exec(
		`UPDATE ticket_tiers
		 SET held_count = held_count + ?, updated_at = ?
		 WHERE id = ?
		   AND (capacity IS NULL OR held_count + sold_count + ? <= capacity)`,
		quantity, time.Now().UTC(), tierID, quantity,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetTier(ctx, tierID); err != nil {
			return err
		}
		return apperrors.Newf(apperrors.KindInsufficientCapacity,
			"tier %s cannot reserve %d units", tierID, quantity)
	}
	return nil
}

// Release returns quantity units from held_count to availability. Underflow
// means a hold was double-released somewhere; that is a broken guarantee,
// not a user error.
func (r *repository) Release(ctx context.Context, tx *gorm.DB, tierID uuid.UUID, quantity int) error {
	res := r.conn(tx).WithContext(ctx).Exec(
		`UPDATE ticket_tiers
		 SET held_count = held_count - ?, updated_at = ?
		 WHERE id = ? AND held_count >= ?`,
		quantity, time.Now().UTC(), tierID, quantity,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.Newf(apperrors.KindInvariantViolation,
			"tier %s held_count underflow releasing %d units", tierID, quantity)
	}
	return nil
}

// Commit converts quantity held units into sold units in one statement.
func (r *repository) Commit(ctx context.Context, tx *gorm.DB, tierID uuid.UUID, quantity int) error {
	res := r.conn(tx).WithContext(ctx).Exec(
		`UPDATE ticket_tiers
		 SET held_count = held_count - ?, sold_count = sold_count + ?, updated_at = ?
		 WHERE id = ? AND held_count >= ?`,
		quantity, quantity, time.Now().UTC(), tierID, quantity,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.Newf(apperrors.KindInvariantViolation,
			"tier %s held_count underflow committing %d units", tierID, quantity)
	}
	return nil
}
