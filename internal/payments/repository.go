package payments

import (
	"context"
	"errors"
	"time"

	"boletera/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, payment *Payment) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Payment, error)
	GetByToken(ctx context.Context, tx *gorm.DB, token string) (*Payment, error)
	HasCompletedForOrder(ctx context.Context, orderID uuid.UUID) (bool, error)

	MarkProcessing(ctx context.Context, id uuid.UUID, token string) (bool, error)
	// MarkCompleted wins only when the payment is still in a confirmable
	// state; the loser of a concurrent confirmation sees false.
	MarkCompleted(ctx context.Context, tx *gorm.DB, id uuid.UUID, authCode string, responseCode int, completedAt time.Time) (bool, error)
	MarkFailed(ctx context.Context, tx *gorm.DB, id uuid.UUID, reason string, responseCode *int) (bool, error)
	RecordRefund(ctx context.Context, tx *gorm.DB, id uuid.UUID, status Status, refundedAmount int64) error

	AppendTransactions(ctx context.Context, paymentID uuid.UUID, logs []AttemptLog) error
	GetTransactions(ctx context.Context, paymentID uuid.UUID) ([]PaymentTransaction, error)
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

func (r *repository) Create(ctx context.Context, payment *Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Payment, error) {
	var payment Payment
	err := r.conn(tx).WithContext(ctx).Where("id = ?", id).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Newf(apperrors.KindNotFound, "payment %s not found", id)
		}
		return nil, err
	}
	return &payment, nil
}

func (r *repository) GetByToken(ctx context.Context, tx *gorm.DB, token string) (*Payment, error) {
	var payment Payment
	err := r.conn(tx).WithContext(ctx).Where("token = ?", token).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.KindNotFound, "payment not found for token")
		}
		return nil, err
	}
	return &payment, nil
}

func (r *repository) HasCompletedForOrder(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Payment{}).
		Where("order_id = ? AND status IN ?", orderID,
			[]Status{StatusCompleted, StatusRefunded, StatusPartiallyRefunded}).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) MarkProcessing(ctx context.Context, id uuid.UUID, token string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&Payment{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]interface{}{
			"status": StatusProcessing,
			"token":  token,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) MarkCompleted(ctx context.Context, tx *gorm.DB, id uuid.UUID, authCode string, responseCode int, completedAt time.Time) (bool, error) {
	res := r.conn(tx).WithContext(ctx).Model(&Payment{}).
		Where("id = ? AND status IN ?", id, confirmable).
		Updates(map[string]interface{}{
			"status":             StatusCompleted,
			"authorization_code": authCode,
			"response_code":      responseCode,
			"completed_at":       completedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) MarkFailed(ctx context.Context, tx *gorm.DB, id uuid.UUID, reason string, responseCode *int) (bool, error) {
	updates := map[string]interface{}{
		"status":         StatusFailed,
		"failure_reason": reason,
	}
	if responseCode != nil {
		updates["response_code"] = *responseCode
	}
	res := r.conn(tx).WithContext(ctx).Model(&Payment{}).
		Where("id = ? AND status IN ?", id,
			[]Status{StatusPending, StatusProcessing, StatusAuthorized, StatusCaptured}).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) RecordRefund(ctx context.Context, tx *gorm.DB, id uuid.UUID, status Status, refundedAmount int64) error {
	return r.conn(tx).WithContext(ctx).Model(&Payment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":          status,
			"refunded_amount": refundedAmount,
		}).Error
}

// AppendTransactions persists the audit rows for a provider call. Audit
// writes never join the settlement transaction: they must survive a
// rollback of the business outcome.
func (r *repository) AppendTransactions(ctx context.Context, paymentID uuid.UUID, logs []AttemptLog) error {
	if len(logs) == 0 {
		return nil
	}
	rows := make([]PaymentTransaction, 0, len(logs))
	for _, entry := range logs {
		rows = append(rows, PaymentTransaction{
			PaymentID:       paymentID,
			Operation:       entry.Operation,
			Attempt:         entry.Attempt,
			RequestPayload:  entry.RequestPayload,
			ResponsePayload: entry.ResponsePayload,
			StatusCode:      entry.StatusCode,
			Success:         entry.Success,
			DurationMs:      entry.Duration.Milliseconds(),
			ErrorMessage:    entry.ErrorMessage,
		})
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *repository) GetTransactions(ctx context.Context, paymentID uuid.UUID) ([]PaymentTransaction, error) {
	var rows []PaymentTransaction
	err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("created_at ASC, attempt ASC").
		Find(&rows).Error
	return rows, err
}
