package tickets

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, tx *gorm.DB, ticket *Ticket) error
	GetByOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) ([]Ticket, error)
	NumberExists(ctx context.Context, tx *gorm.DB, number string) (bool, error)
	CancelByOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (int64, error)
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

func (r *repository) Create(ctx context.Context, tx *gorm.DB, ticket *Ticket) error {
	return r.conn(tx).WithContext(ctx).Create(ticket).Error
}

func (r *repository) GetByOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) ([]Ticket, error) {
	var result []Ticket
	err := r.conn(tx).WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&result).Error
	return result, err
}

func (r *repository) NumberExists(ctx context.Context, tx *gorm.DB, number string) (bool, error) {
	var count int64
	err := r.conn(tx).WithContext(ctx).Model(&Ticket{}).
		Where("ticket_number = ?", number).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) CancelByOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (int64, error) {
	res := r.conn(tx).WithContext(ctx).Model(&Ticket{}).
		Where("order_id = ? AND status = ?", orderID, StatusActive).
		Update("status", StatusCancelled)
	return res.RowsAffected, res.Error
}
