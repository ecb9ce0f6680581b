package payments

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"boletera/internal/holds"
	"boletera/internal/notifications"
	"boletera/internal/orders"
	"boletera/internal/shared/apperrors"
	"boletera/internal/shared/config"
	"boletera/internal/tickets"
	"boletera/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	failureReasonRejected  = "provider_rejected"
	failureReasonTransport = "provider_transport_error"
)

// ConfirmResult is the outcome of a confirmation round, whether this call
// performed the settlement or an earlier one already had.
type ConfirmResult struct {
	Payment *Payment
	Tickets []tickets.Ticket
	Settled bool
}

type Service interface {
	// CreateAndInitiate creates the payment record for an order and opens
	// the provider transaction. Returns the payment and the redirect URL
	// the buyer completes the card flow at.
	CreateAndInitiate(ctx context.Context, orderID uuid.UUID) (*Payment, string, error)
	// Confirm settles the payment identified by the provider token.
	// Idempotent: repeat calls and racing callers all converge on the
	// recorded outcome.
	Confirm(ctx context.Context, token string) (*ConfirmResult, error)
	Refund(ctx context.Context, paymentID uuid.UUID, amount *int64, reason string) (*Payment, error)
	GetPayment(ctx context.Context, id uuid.UUID) (*Payment, []PaymentTransaction, error)
}

type service struct {
	repo     Repository
	orders   orders.Service
	holds    holds.Service
	tickets  tickets.Service
	notifier notifications.Notifier
	provider ProviderClient
	currency string
	logger   *logger.Logger
	now      func() time.Time
	runInTx  func(ctx context.Context, fn func(tx *gorm.DB) error) error
}

func NewService(
	repo Repository,
	orderSvc orders.Service,
	holdSvc holds.Service,
	ticketSvc tickets.Service,
	notifier notifications.Notifier,
	provider ProviderClient,
	db *gorm.DB,
	cfg *config.Config,
	log *logger.Logger,
) Service {
	return &service{
		repo:     repo,
		orders:   orderSvc,
		holds:    holdSvc,
		tickets:  ticketSvc,
		notifier: notifier,
		provider: provider,
		currency: cfg.Billing.Currency,
		logger:   log,
		now:      time.Now,
		runInTx: func(ctx context.Context, fn func(tx *gorm.DB) error) error {
			return db.WithContext(ctx).Transaction(fn)
		},
	}
}

func (s *service) CreateAndInitiate(ctx context.Context, orderID uuid.UUID) (*Payment, string, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, "", err
	}
	if order.Status != orders.StatusPending {
		return nil, "", apperrors.Newf(apperrors.KindConflict, "order is %s, only pending orders can be paid", order.Status)
	}
	settled, err := s.repo.HasCompletedForOrder(ctx, orderID)
	if err != nil {
		return nil, "", err
	}
	if settled {
		return nil, "", apperrors.New(apperrors.KindConflict, "order already has a successful payment")
	}

	buyOrder, err := s.generateBuyOrder()
	if err != nil {
		return nil, "", err
	}
	currency := order.Currency
	if currency == "" {
		currency = s.currency
	}
	payment := &Payment{
		OrderID:  orderID,
		BuyOrder: buyOrder,
		Amount:   order.Total,
		Currency: currency,
		Status:   StatusPending,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, "", err
	}

	resp, attemptLogs, provErr := s.provider.Create(ctx, buyOrder, orderID.String(), payment.Amount)
	if err := s.repo.AppendTransactions(ctx, payment.ID, attemptLogs); err != nil {
		s.logger.WithError(err).Error("failed to persist payment audit rows", "payment_id", payment.ID)
	}
	if provErr != nil {
		reason := failureReasonTransport
		if apperrors.Is(provErr, apperrors.KindProviderRejected) {
			reason = failureReasonRejected
		}
		s.failAndRelease(ctx, payment, reason, nil)
		return nil, "", provErr
	}

	won, err := s.repo.MarkProcessing(ctx, payment.ID, resp.Token)
	if err != nil {
		return nil, "", err
	}
	if !won {
		return nil, "", apperrors.New(apperrors.KindConflict, "payment is no longer pending")
	}
	payment.Status = StatusProcessing
	payment.Token = resp.Token

	s.logger.LogPaymentInitiated(ctx, buyOrder, orderID.String(), payment.Amount)
	return payment, fmt.Sprintf("%s?token_ws=%s", resp.URL, resp.Token), nil
}

func (s *service) Confirm(ctx context.Context, token string) (*ConfirmResult, error) {
	payment, err := s.repo.GetByToken(ctx, nil, token)
	if err != nil {
		return nil, err
	}
	if payment.Status.IsSettled() {
		return s.recordedOutcome(ctx, payment)
	}

	resp, attemptLogs, provErr := s.provider.Confirm(ctx, token)
	if err := s.repo.AppendTransactions(ctx, payment.ID, attemptLogs); err != nil {
		s.logger.WithError(err).Error("failed to persist payment audit rows", "payment_id", payment.ID)
	}
	if provErr != nil {
		if apperrors.Is(provErr, apperrors.KindProviderRejected) {
			s.failAndRelease(ctx, payment, failureReasonRejected, nil)
			s.notifyFailure(ctx, payment, failureReasonRejected)
			return s.recordedOutcome(ctx, payment)
		}
		// Retry exhaustion counts as a failed confirmation, not a pending
		// one. The payment fails, its holds go back to inventory.
		s.failAndRelease(ctx, payment, failureReasonTransport, nil)
		s.notifyFailure(ctx, payment, failureReasonTransport)
		return nil, provErr
	}

	if !resp.Approved() {
		code := resp.ResponseCode
		s.failAndRelease(ctx, payment, failureReasonRejected, &code)
		s.notifyFailure(ctx, payment, failureReasonRejected)
		return s.recordedOutcome(ctx, payment)
	}

	return s.settle(ctx, payment, resp)
}

// settle runs the settlement unit: payment completed, order paid, revenue
// split frozen, holds consumed, tickets issued. One transaction; all of it
// happens or none of it does.
func (s *service) settle(ctx context.Context, payment *Payment, resp *ProviderConfirmResponse) (*ConfirmResult, error) {
	completedAt := s.now().UTC()
	var issued []tickets.Ticket
	var settledOrder *orders.Order
	won := false

	err := s.runInTx(ctx, func(tx *gorm.DB) error {
		var err error
		won, err = s.repo.MarkCompleted(ctx, tx, payment.ID, resp.AuthorizationCode, resp.ResponseCode, completedAt)
		if err != nil || !won {
			return err
		}
		orderWon, order, err := s.orders.Settle(ctx, tx, payment.OrderID, completedAt)
		if err != nil {
			return err
		}
		if !orderWon {
			return apperrors.Newf(apperrors.KindInvariantViolation,
				"order %s is %s, cannot settle payment %s", payment.OrderID, order.Status, payment.ID)
		}
		settledOrder = order
		if err := s.holds.Consume(ctx, tx, payment.OrderID); err != nil {
			return err
		}
		issued, err = s.tickets.IssueForOrder(ctx, tx, payment.OrderID)
		return err
	})
	if err != nil {
		if apperrors.Is(err, apperrors.KindInvariantViolation) {
			s.logger.LogInvariantViolation(ctx, err.Error(), map[string]interface{}{
				"payment_id": payment.ID,
				"order_id":   payment.OrderID,
			})
		}
		return nil, err
	}
	if !won {
		// Another confirmation settled first; hand back its outcome.
		return s.recordedOutcome(ctx, payment)
	}

	payment.Status = StatusCompleted
	payment.AuthorizationCode = resp.AuthorizationCode
	payment.ResponseCode = &resp.ResponseCode
	payment.CompletedAt = &completedAt

	numbers := make([]string, 0, len(issued))
	for _, t := range issued {
		numbers = append(numbers, t.TicketNumber)
	}
	s.notifier.TicketsIssued(ctx, recipientEmail(settledOrder, issued), payment.OrderID, numbers)
	s.logger.LogPaymentSettled(ctx, payment.BuyOrder, payment.OrderID.String(), len(issued))

	return &ConfirmResult{Payment: payment, Tickets: issued, Settled: true}, nil
}

func (s *service) Refund(ctx context.Context, paymentID uuid.UUID, amount *int64, reason string) (*Payment, error) {
	payment, err := s.repo.GetByID(ctx, nil, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != StatusCompleted && payment.Status != StatusPartiallyRefunded {
		return nil, apperrors.Newf(apperrors.KindConflict, "payment is %s, only completed payments can be refunded", payment.Status)
	}

	remaining := payment.Amount - payment.RefundedAmount
	refundAmount := remaining
	if amount != nil {
		refundAmount = *amount
	}
	if refundAmount <= 0 || refundAmount > remaining {
		return nil, apperrors.Newf(apperrors.KindValidation, "refund amount must be between 1 and %d", remaining)
	}

	resp, attemptLogs, provErr := s.provider.Refund(ctx, payment.Token, refundAmount)
	if err := s.repo.AppendTransactions(ctx, payment.ID, attemptLogs); err != nil {
		s.logger.WithError(err).Error("failed to persist payment audit rows", "payment_id", payment.ID)
	}
	if provErr != nil {
		return nil, provErr
	}
	if !resp.Approved() {
		return nil, apperrors.New(apperrors.KindProviderRejected, "provider rejected the refund")
	}

	refunded := payment.RefundedAmount + refundAmount
	status := StatusPartiallyRefunded
	if refunded == payment.Amount {
		status = StatusRefunded
	}

	var order *orders.Order
	err = s.runInTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.RecordRefund(ctx, tx, payment.ID, status, refunded); err != nil {
			return err
		}
		order, err = s.orders.RecordRefund(ctx, tx, payment.OrderID, refundAmount, reason)
		if err != nil {
			return err
		}
		if status == StatusRefunded {
			if _, err := s.tickets.CancelForOrder(ctx, tx, payment.OrderID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	payment.Status = status
	payment.RefundedAmount = refunded
	s.notifier.OrderRefunded(ctx, order.GuestEmail, payment.OrderID, refundAmount)
	return payment, nil
}

func (s *service) GetPayment(ctx context.Context, id uuid.UUID) (*Payment, []PaymentTransaction, error) {
	payment, err := s.repo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, nil, err
	}
	transactions, err := s.repo.GetTransactions(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return payment, transactions, nil
}

// failAndRelease marks the payment failed and returns the order's held
// units to availability immediately, without waiting for the sweeper.
func (s *service) failAndRelease(ctx context.Context, payment *Payment, reason string, responseCode *int) {
	err := s.runInTx(ctx, func(tx *gorm.DB) error {
		won, err := s.repo.MarkFailed(ctx, tx, payment.ID, reason, responseCode)
		if err != nil || !won {
			return err
		}
		return s.holds.ReleaseByOrder(ctx, tx, payment.OrderID)
	})
	if err != nil {
		s.logger.WithError(err).Error("failed to record payment failure", "payment_id", payment.ID)
		return
	}
	payment.Status = StatusFailed
	payment.FailureReason = reason
	s.logger.LogPaymentFailed(ctx, payment.BuyOrder, reason)
}

func (s *service) notifyFailure(ctx context.Context, payment *Payment, reason string) {
	order, err := s.orders.GetOrder(ctx, payment.OrderID)
	if err != nil {
		return
	}
	s.notifier.PaymentFailed(ctx, order.GuestEmail, payment.OrderID, reason)
}

// recordedOutcome rebuilds the ConfirmResult from persisted state, used by
// idempotent repeats and race losers.
func (s *service) recordedOutcome(ctx context.Context, payment *Payment) (*ConfirmResult, error) {
	current, err := s.repo.GetByID(ctx, nil, payment.ID)
	if err != nil {
		return nil, err
	}
	result := &ConfirmResult{Payment: current}
	if current.Status == StatusCompleted || current.Status == StatusRefunded || current.Status == StatusPartiallyRefunded {
		issued, err := s.tickets.GetByOrder(ctx, current.OrderID)
		if err != nil {
			return nil, err
		}
		result.Tickets = issued
		result.Settled = true
	}
	return result, nil
}

func recipientEmail(order *orders.Order, issued []tickets.Ticket) string {
	if order != nil && order.GuestEmail != "" {
		return order.GuestEmail
	}
	for _, t := range issued {
		if t.HolderEmail != "" {
			return t.HolderEmail
		}
	}
	return ""
}

const buyOrderSuffixAlphabet = "0123456789"

// generateBuyOrder builds the provider-facing reference:
// TK + timestamp + random suffix. The database unique constraint backs up
// the randomness.
func (s *service) generateBuyOrder() (string, error) {
	suffix := make([]byte, 8)
	max := big.NewInt(int64(len(buyOrderSuffixAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		suffix[i] = buyOrderSuffixAlphabet[n.Int64()]
	}
	return fmt.Sprintf("TK%s%s", s.now().UTC().Format("20060102150405"), suffix), nil
}
