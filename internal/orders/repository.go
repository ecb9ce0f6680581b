package orders

import (
	"context"
	"errors"
	"time"

	"boletera/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, tx *gorm.DB, order *Order) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Order, error)

	// TransitionStatus flips the order status only when it still holds the
	// expected value. Returns false when another writer got there first.
	TransitionStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, from, to Status) (bool, error)
	MarkPaid(ctx context.Context, tx *gorm.DB, id uuid.UUID, paidAt time.Time) (bool, error)
	FreezeAllocation(ctx context.Context, tx *gorm.DB, order *Order, alloc *Allocation) error
	RecordRefund(ctx context.Context, tx *gorm.DB, id uuid.UUID, status Status, refundedAmount int64, reason string) error
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

func (r *repository) Create(ctx context.Context, tx *gorm.DB, order *Order) error {
	return r.conn(tx).WithContext(ctx).Create(order).Error
}

func (r *repository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Order, error) {
	var order Order
	err := r.conn(tx).WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_items.created_at ASC, order_items.id ASC")
		}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.KindNotFound, "order %s not found", id)
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) TransitionStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, from, to Status) (bool, error) {
	res := r.conn(tx).WithContext(ctx).Model(&Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) MarkPaid(ctx context.Context, tx *gorm.DB, id uuid.UUID, paidAt time.Time) (bool, error) {
	res := r.conn(tx).WithContext(ctx).Model(&Order{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]interface{}{
			"status":  StatusPaid,
			"paid_at": paidAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// FreezeAllocation persists the effective split onto the order and its items.
// Item order must match the order used to compute the allocation.
func (r *repository) FreezeAllocation(ctx context.Context, tx *gorm.DB, order *Order, alloc *Allocation) error {
	db := r.conn(tx).WithContext(ctx)
	err := db.Model(&Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]interface{}{
			"subtotal_effective":    alloc.SubtotalEffective,
			"service_fee_effective": alloc.ServiceFeeEffective,
		}).Error
	if err != nil {
		return err
	}
	for i, item := range order.Items {
		a := alloc.Items[i]
		err := db.Model(&OrderItem{}).
			Where("id = ?", item.ID).
			Updates(map[string]interface{}{
				"unit_price_effective": a.UnitPriceEffective,
				"unit_fee_effective":   a.UnitFeeEffective,
			}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) RecordRefund(ctx context.Context, tx *gorm.DB, id uuid.UUID, status Status, refundedAmount int64, reason string) error {
	return r.conn(tx).WithContext(ctx).Model(&Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":          status,
			"refunded_amount": refundedAmount,
			"refund_reason":   reason,
		}).Error
}
