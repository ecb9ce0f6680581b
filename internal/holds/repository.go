package holds

import (
	"context"
	"errors"
	"time"

	"boletera/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, tx *gorm.DB, hold *Hold) error
	CreateReservations(ctx context.Context, tx *gorm.DB, reservations []HolderReservation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Hold, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]Hold, error)
	GetActiveByOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) ([]Hold, error)
	GetReservationsByHolds(ctx context.Context, tx *gorm.DB, holdIDs []uuid.UUID) ([]HolderReservation, error)
	GetReservationsByOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) ([]HolderReservation, error)
	DeleteReservationsByOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error

	// MarkReleased flips the released latch for one hold. Returns false when
	// the hold was already released, so callers can make Consume, Release and
	// the sweeper commute.
	MarkReleased(ctx context.Context, tx *gorm.DB, holdID uuid.UUID) (bool, error)
	// AttachToOrder binds unreleased, unattached holds to an order. Re-binding
	// to the same order is a no-op.
	AttachToOrder(ctx context.Context, tx *gorm.DB, holdIDs []uuid.UUID, orderID uuid.UUID) error
	AttachReservationsToOrder(ctx context.Context, tx *gorm.DB, holdIDs []uuid.UUID, orderID uuid.UUID) error
	// ListExpired returns unreleased holds past their deadline, excluding
	// holds whose order has already been paid.
	ListExpired(ctx context.Context, now time.Time, limit int) ([]Hold, error)
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

func (r *repository) Create(ctx context.Context, tx *gorm.DB, hold *Hold) error {
	return r.conn(tx).WithContext(ctx).Create(hold).Error
}

func (r *repository) CreateReservations(ctx context.Context, tx *gorm.DB, reservations []HolderReservation) error {
	if len(reservations) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Create(&reservations).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Hold, error) {
	var hold Hold
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&hold).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.KindNotFound, "hold %s not found", id)
		}
		return nil, err
	}
	return &hold, nil
}

func (r *repository) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]Hold, error) {
	var result []Hold
	err := r.conn(tx).WithContext(ctx).Where("id IN ?", ids).Find(&result).Error
	return result, err
}

func (r *repository) GetActiveByOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) ([]Hold, error) {
	var result []Hold
	err := r.conn(tx).WithContext(ctx).
		Where("order_id = ? AND released = false", orderID).
		Find(&result).Error
	return result, err
}

func (r *repository) GetReservationsByHolds(ctx context.Context, tx *gorm.DB, holdIDs []uuid.UUID) ([]HolderReservation, error) {
	var result []HolderReservation
	err := r.conn(tx).WithContext(ctx).
		Where("hold_id IN ?", holdIDs).
		Order("created_at ASC").
		Find(&result).Error
	return result, err
}

func (r *repository) GetReservationsByOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) ([]HolderReservation, error) {
	var result []HolderReservation
	err := r.conn(tx).WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&result).Error
	return result, err
}

func (r *repository) DeleteReservationsByOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).
		Where("order_id = ?", orderID).
		Delete(&HolderReservation{}).Error
}

func (r *repository) MarkReleased(ctx context.Context, tx *gorm.DB, holdID uuid.UUID) (bool, error) {
	res := r.conn(tx).WithContext(ctx).Model(&Hold{}).
		Where("id = ? AND released = false", holdID).
		Update("released", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) AttachToOrder(ctx context.Context, tx *gorm.DB, holdIDs []uuid.UUID, orderID uuid.UUID) error {
	db := r.conn(tx).WithContext(ctx)
	res := db.Model(&Hold{}).
		Where("id IN ? AND released = false AND (order_id IS NULL OR order_id = ?)", holdIDs, orderID).
		Update("order_id", orderID)
	if res.Error != nil {
		return res.Error
	}
	var bound int64
	if err := db.Model(&Hold{}).
		Where("id IN ? AND released = false AND order_id = ?", holdIDs, orderID).
		Count(&bound).Error; err != nil {
		return err
	}
	if bound != int64(len(holdIDs)) {
		return apperrors.New(apperrors.KindConflict, "one or more holds are released or attached to another order")
	}
	return nil
}

func (r *repository) AttachReservationsToOrder(ctx context.Context, tx *gorm.DB, holdIDs []uuid.UUID, orderID uuid.UUID) error {
	return r.conn(tx).WithContext(ctx).Model(&HolderReservation{}).
		Where("hold_id IN ?", holdIDs).
		Update("order_id", orderID).Error
}

// sweepCandidateFilter selects holds the sweeper may release: unreleased,
// past expiry, and not attached to a paid order. The paid-order exclusion
// lives in the query so a settled purchase can never lose its units to a
// sweep that races the confirmation.
const sweepCandidateFilter = `released = false AND expires_at <= ?
 AND (order_id IS NULL OR order_id NOT IN (SELECT id FROM orders WHERE status = 'paid'))`

func (r *repository) ListExpired(ctx context.Context, now time.Time, limit int) ([]Hold, error) {
	var result []Hold
	err := r.db.WithContext(ctx).
		Where(sweepCandidateFilter, now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&result).Error
	return result, err
}
