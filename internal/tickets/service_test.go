package tickets

import (
	"context"
	"regexp"
	"testing"

	"boletera/internal/holds"
	"boletera/internal/shared/apperrors"
	"boletera/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// --- Mock Repository ---

type mockTicketRepo struct {
	createFn        func(ctx context.Context, tx *gorm.DB, ticket *Ticket) error
	getByOrderFn    func(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) ([]Ticket, error)
	numberExistsFn  func(ctx context.Context, tx *gorm.DB, number string) (bool, error)
	cancelByOrderFn func(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (int64, error)
}

func (m *mockTicketRepo) Create(ctx context.Context, tx *gorm.DB, ticket *Ticket) error {
	return m.createFn(ctx, tx, ticket)
}
func (m *mockTicketRepo) GetByOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) ([]Ticket, error) {
	return m.getByOrderFn(ctx, tx, orderID)
}
func (m *mockTicketRepo) NumberExists(ctx context.Context, tx *gorm.DB, number string) (bool, error) {
	if m.numberExistsFn != nil {
		return m.numberExistsFn(ctx, tx, number)
	}
	return false, nil
}
func (m *mockTicketRepo) CancelByOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (int64, error) {
	return m.cancelByOrderFn(ctx, tx, orderID)
}

// --- Mock Holds Service ---

type mockHoldsService struct {
	getReservationsByOrderFn    func(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) ([]holds.HolderReservation, error)
	deleteReservationsByOrderFn func(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error
}

func (m *mockHoldsService) CreateHolds(ctx context.Context, items []holds.CartItem) ([]holds.Hold, error) {
	return nil, nil
}
func (m *mockHoldsService) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]holds.Hold, error) {
	return nil, nil
}
func (m *mockHoldsService) GetReservationsByHolds(ctx context.Context, tx *gorm.DB, holdIDs []uuid.UUID) ([]holds.HolderReservation, error) {
	return nil, nil
}
func (m *mockHoldsService) GetReservationsByOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) ([]holds.HolderReservation, error) {
	return m.getReservationsByOrderFn(ctx, tx, orderID)
}
func (m *mockHoldsService) DeleteReservationsByOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	if m.deleteReservationsByOrderFn != nil {
		return m.deleteReservationsByOrderFn(ctx, tx, orderID)
	}
	return nil
}
func (m *mockHoldsService) AttachToOrder(ctx context.Context, tx *gorm.DB, holdIDs []uuid.UUID, orderID uuid.UUID) error {
	return nil
}
func (m *mockHoldsService) Consume(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	return nil
}
func (m *mockHoldsService) ReleaseByOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	return nil
}
func (m *mockHoldsService) ReleaseHold(ctx context.Context, holdID uuid.UUID) error { return nil }
func (m *mockHoldsService) SweepExpired(ctx context.Context) (int, error)           { return 0, nil }

func newTestService(repo Repository, holdSvc holds.Service) Service {
	return NewService(repo, holdSvc, logger.GetDefault())
}

var ticketNumberPattern = regexp.MustCompile(`^TIX-[ABCDEFGHJKLMNPQRSTUVWXYZ23456789]{8}$`)

func TestIssueForOrder_MintsOnePerReservation(t *testing.T) {
	orderID := uuid.New()
	tierID := uuid.New()
	var created []Ticket
	reservationsDeleted := false

	repo := &mockTicketRepo{
		getByOrderFn: func(ctx context.Context, tx *gorm.DB, id uuid.UUID) ([]Ticket, error) {
			return nil, nil
		},
		createFn: func(ctx context.Context, tx *gorm.DB, ticket *Ticket) error {
			created = append(created, *ticket)
			return nil
		},
	}
	holdSvc := &mockHoldsService{
		getReservationsByOrderFn: func(ctx context.Context, tx *gorm.DB, id uuid.UUID) ([]holds.HolderReservation, error) {
			return []holds.HolderReservation{
				{TierID: tierID, HolderName: "Ana Rojas", HolderEmail: "ana@example.com"},
				{TierID: tierID},
			}, nil
		},
		deleteReservationsByOrderFn: func(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
			reservationsDeleted = true
			return nil
		},
	}
	svc := newTestService(repo, holdSvc)

	issued, err := svc.IssueForOrder(context.Background(), nil, orderID)
	require.NoError(t, err)
	require.Len(t, issued, 2)
	assert.True(t, reservationsDeleted)

	assert.Equal(t, "Ana Rojas", issued[0].HolderName)
	assert.Equal(t, "ana@example.com", issued[0].HolderEmail)
	assert.Empty(t, issued[1].HolderName)
	for _, ticket := range issued {
		assert.Equal(t, orderID, ticket.OrderID)
		assert.Equal(t, StatusActive, ticket.Status)
		assert.Regexp(t, ticketNumberPattern, ticket.TicketNumber)
	}
	assert.NotEqual(t, issued[0].TicketNumber, issued[1].TicketNumber)
	assert.Len(t, created, 2)
}

func TestIssueForOrder_Idempotent(t *testing.T) {
	orderID := uuid.New()
	existing := []Ticket{{ID: uuid.New(), OrderID: orderID, TicketNumber: "TIX-AAAA2222"}}
	createCalls := 0

	repo := &mockTicketRepo{
		getByOrderFn: func(ctx context.Context, tx *gorm.DB, id uuid.UUID) ([]Ticket, error) {
			return existing, nil
		},
		createFn: func(ctx context.Context, tx *gorm.DB, ticket *Ticket) error {
			createCalls++
			return nil
		},
	}
	svc := newTestService(repo, &mockHoldsService{})

	issued, err := svc.IssueForOrder(context.Background(), nil, orderID)
	require.NoError(t, err)
	assert.Equal(t, existing, issued)
	assert.Zero(t, createCalls)
}

func TestIssueForOrder_NoReservationsFails(t *testing.T) {
	repo := &mockTicketRepo{
		getByOrderFn: func(ctx context.Context, tx *gorm.DB, id uuid.UUID) ([]Ticket, error) {
			return nil, nil
		},
	}
	holdSvc := &mockHoldsService{
		getReservationsByOrderFn: func(ctx context.Context, tx *gorm.DB, id uuid.UUID) ([]holds.HolderReservation, error) {
			return nil, nil
		},
	}
	svc := newTestService(repo, holdSvc)

	_, err := svc.IssueForOrder(context.Background(), nil, uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.KindInvariantViolation))
}

func TestIssueForOrder_RetriesNumberCollisions(t *testing.T) {
	orderID := uuid.New()
	checks := 0

	repo := &mockTicketRepo{
		getByOrderFn: func(ctx context.Context, tx *gorm.DB, id uuid.UUID) ([]Ticket, error) {
			return nil, nil
		},
		numberExistsFn: func(ctx context.Context, tx *gorm.DB, number string) (bool, error) {
			checks++
			// First two candidates collide.
			return checks <= 2, nil
		},
		createFn: func(ctx context.Context, tx *gorm.DB, ticket *Ticket) error {
			return nil
		},
	}
	holdSvc := &mockHoldsService{
		getReservationsByOrderFn: func(ctx context.Context, tx *gorm.DB, id uuid.UUID) ([]holds.HolderReservation, error) {
			return []holds.HolderReservation{{TierID: uuid.New()}}, nil
		},
	}
	svc := newTestService(repo, holdSvc)

	issued, err := svc.IssueForOrder(context.Background(), nil, orderID)
	require.NoError(t, err)
	require.Len(t, issued, 1)
	assert.Equal(t, 3, checks)
}

func TestIssueForOrder_GivesUpAfterRepeatedCollisions(t *testing.T) {
	repo := &mockTicketRepo{
		getByOrderFn: func(ctx context.Context, tx *gorm.DB, id uuid.UUID) ([]Ticket, error) {
			return nil, nil
		},
		numberExistsFn: func(ctx context.Context, tx *gorm.DB, number string) (bool, error) {
			return true, nil
		},
	}
	holdSvc := &mockHoldsService{
		getReservationsByOrderFn: func(ctx context.Context, tx *gorm.DB, id uuid.UUID) ([]holds.HolderReservation, error) {
			return []holds.HolderReservation{{TierID: uuid.New()}}, nil
		},
	}
	svc := newTestService(repo, holdSvc)

	_, err := svc.IssueForOrder(context.Background(), nil, uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.KindInternal))
}

func TestCancelForOrder(t *testing.T) {
	orderID := uuid.New()
	repo := &mockTicketRepo{
		cancelByOrderFn: func(ctx context.Context, tx *gorm.DB, id uuid.UUID) (int64, error) {
			assert.Equal(t, orderID, id)
			return 3, nil
		},
	}
	svc := newTestService(repo, &mockHoldsService{})

	cancelled, err := svc.CancelForOrder(context.Background(), nil, orderID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), cancelled)
}

func TestGenerateNumber_Format(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		number, err := generateNumber()
		require.NoError(t, err)
		assert.Regexp(t, ticketNumberPattern, number)
		seen[number] = true
	}
	// 32^8 combinations; 50 draws colliding would be a broken generator.
	assert.Len(t, seen, 50)
}
