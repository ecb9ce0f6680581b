package tickets

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"boletera/internal/holds"
	"boletera/internal/shared/apperrors"
	"boletera/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	numberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	numberLength   = 8
	numberAttempts = 5
)

type Service interface {
	// IssueForOrder mints one ticket per consumed reservation. Idempotent:
	// an order that already has tickets gets its existing set back.
	IssueForOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) ([]Ticket, error)
	GetByOrder(ctx context.Context, orderID uuid.UUID) ([]Ticket, error)
	CancelForOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (int64, error)
}

type service struct {
	repo   Repository
	holds  holds.Service
	logger *logger.Logger
}

func NewService(repo Repository, holdSvc holds.Service, log *logger.Logger) Service {
	return &service{repo: repo, holds: holdSvc, logger: log}
}

func (s *service) IssueForOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) ([]Ticket, error) {
	existing, err := s.repo.GetByOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing, nil
	}

	reservations, err := s.holds.GetReservationsByOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if len(reservations) == 0 {
		return nil, apperrors.Newf(apperrors.KindInvariantViolation,
			"order %s has no reservations to issue tickets from", orderID)
	}

	issued := make([]Ticket, 0, len(reservations))
	for _, res := range reservations {
		number, err := s.uniqueNumber(ctx, tx)
		if err != nil {
			return nil, err
		}
		ticket := Ticket{
			OrderID:      orderID,
			TierID:       res.TierID,
			TicketNumber: number,
			HolderName:   res.HolderName,
			HolderEmail:  res.HolderEmail,
			FormAnswers:  res.FormAnswers,
			Status:       StatusActive,
		}
		if err := s.repo.Create(ctx, tx, &ticket); err != nil {
			return nil, err
		}
		issued = append(issued, ticket)
	}

	if err := s.holds.DeleteReservationsByOrder(ctx, tx, orderID); err != nil {
		return nil, err
	}
	return issued, nil
}

func (s *service) GetByOrder(ctx context.Context, orderID uuid.UUID) ([]Ticket, error) {
	return s.repo.GetByOrder(ctx, nil, orderID)
}

func (s *service) CancelForOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (int64, error) {
	return s.repo.CancelByOrder(ctx, tx, orderID)
}

func (s *service) uniqueNumber(ctx context.Context, tx *gorm.DB) (string, error) {
	for i := 0; i < numberAttempts; i++ {
		number, err := generateNumber()
		if err != nil {
			return "", err
		}
		exists, err := s.repo.NumberExists(ctx, tx, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
	return "", apperrors.New(apperrors.KindInternal, "could not generate a unique ticket number")
}

func generateNumber() (string, error) {
	buf := make([]byte, numberLength)
	max := big.NewInt(int64(len(numberAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = numberAlphabet[n.Int64()]
	}
	return fmt.Sprintf("TIX-%s", buf), nil
}
