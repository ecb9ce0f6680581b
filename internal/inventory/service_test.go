package inventory

import (
	"context"
	"testing"
	"time"

	"boletera/internal/shared/apperrors"
	"boletera/internal/shared/config"
	"boletera/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// --- Mock Repository ---

type mockRepository struct {
	getTierFn          func(ctx context.Context, id uuid.UUID) (*TicketTier, error)
	getTierWithEventFn func(ctx context.Context, id uuid.UUID) (*TicketTier, error)
	reserveFn          func(ctx context.Context, tx *gorm.DB, tierID uuid.UUID, quantity int) error
	releaseFn          func(ctx context.Context, tx *gorm.DB, tierID uuid.UUID, quantity int) error
	commitFn           func(ctx context.Context, tx *gorm.DB, tierID uuid.UUID, quantity int) error
}

func (m *mockRepository) GetTier(ctx context.Context, id uuid.UUID) (*TicketTier, error) {
	return m.getTierFn(ctx, id)
}
func (m *mockRepository) GetTierWithEvent(ctx context.Context, id uuid.UUID) (*TicketTier, error) {
	return m.getTierWithEventFn(ctx, id)
}
func (m *mockRepository) CreateEvent(ctx context.Context, event *Event) error { return nil }
func (m *mockRepository) CreateTier(ctx context.Context, tier *TicketTier) error {
	return nil
}
func (m *mockRepository) Reserve(ctx context.Context, tx *gorm.DB, tierID uuid.UUID, quantity int) error {
	return m.reserveFn(ctx, tx, tierID, quantity)
}
func (m *mockRepository) Release(ctx context.Context, tx *gorm.DB, tierID uuid.UUID, quantity int) error {
	return m.releaseFn(ctx, tx, tierID, quantity)
}
func (m *mockRepository) Commit(ctx context.Context, tx *gorm.DB, tierID uuid.UUID, quantity int) error {
	return m.commitFn(ctx, tx, tierID, quantity)
}

// --- Mock Cache ---

type mockCache struct {
	deleted []string
}

func (m *mockCache) Get(ctx context.Context, key string, dest interface{}) error {
	return nil
}
func (m *mockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}
func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	return nil
}
func (m *mockCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	_, err := fetcher()
	return err
}
func (m *mockCache) Ping(ctx context.Context) error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Redis:   config.RedisConfig{AvailabilityCacheTTL: 30 * time.Second},
		Billing: config.BillingConfig{Currency: "CLP", PlatformFeeRateBps: 1500},
	}
}

func newTestService(repo Repository) Service {
	return NewService(repo, &mockCache{}, testConfig(), logger.GetDefault())
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

// --- Fee rate resolution ---

func TestFeeRateBps_OverrideChain(t *testing.T) {
	svc := newTestService(&mockRepository{})

	tierOverride := &TicketTier{
		FeeRateBps: intPtr(500),
		Event:      &Event{FeeRateBps: intPtr(1000), OrganizerFeeRateBps: intPtr(1200)},
	}
	assert.Equal(t, 500, svc.FeeRateBps(tierOverride))

	eventOverride := &TicketTier{
		Event: &Event{FeeRateBps: intPtr(1000), OrganizerFeeRateBps: intPtr(1200)},
	}
	assert.Equal(t, 1000, svc.FeeRateBps(eventOverride))

	organizerOverride := &TicketTier{
		Event: &Event{OrganizerFeeRateBps: intPtr(1200)},
	}
	assert.Equal(t, 1200, svc.FeeRateBps(organizerOverride))

	platformDefault := &TicketTier{Event: &Event{}}
	assert.Equal(t, 1500, svc.FeeRateBps(platformDefault))

	noEvent := &TicketTier{}
	assert.Equal(t, 1500, svc.FeeRateBps(noEvent))
}

func TestUnitFee_RoundsHalfUp(t *testing.T) {
	svc := newTestService(&mockRepository{})

	tier := &TicketTier{FeeRateBps: intPtr(1500)}
	assert.Equal(t, int64(1500), svc.UnitFee(tier, 10000))

	// 15% of 490 = 73.5, rounds up to 74.
	assert.Equal(t, int64(74), svc.UnitFee(tier, 490))

	// 15% of 10 = 1.5, rounds up to 2.
	assert.Equal(t, int64(2), svc.UnitFee(tier, 10))

	assert.Equal(t, int64(0), svc.UnitFee(tier, 0))
}

// --- Pay what you want ---

func TestUnitPrice_FixedTier(t *testing.T) {
	svc := newTestService(&mockRepository{})
	tier := &TicketTier{Price: 15000}

	price, err := svc.UnitPrice(tier, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(15000), price)

	same := int64(15000)
	price, err = svc.UnitPrice(tier, &same)
	require.NoError(t, err)
	assert.Equal(t, int64(15000), price)

	other := int64(9000)
	_, err = svc.UnitPrice(tier, &other)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestUnitPrice_PayWhatYouWant(t *testing.T) {
	svc := newTestService(&mockRepository{})
	tier := &TicketTier{
		Price:          5000,
		PayWhatYouWant: true,
		MinPrice:       int64Ptr(1000),
		MaxPrice:       int64Ptr(50000),
	}

	price, err := svc.UnitPrice(tier, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), price, "nil custom price falls back to the suggested price")

	custom := int64(20000)
	price, err = svc.UnitPrice(tier, &custom)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), price)

	tooLow := int64(500)
	_, err = svc.UnitPrice(tier, &tooLow)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	tooHigh := int64(60000)
	_, err = svc.UnitPrice(tier, &tooHigh)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	negative := int64(-1)
	_, err = svc.UnitPrice(tier, &negative)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

// --- Counter operations ---

func TestReserve_InvalidatesCache(t *testing.T) {
	tierID := uuid.New()
	reserved := 0
	repo := &mockRepository{
		reserveFn: func(ctx context.Context, tx *gorm.DB, id uuid.UUID, quantity int) error {
			assert.Equal(t, tierID, id)
			reserved = quantity
			return nil
		},
	}
	cacheMock := &mockCache{}
	svc := NewService(repo, cacheMock, testConfig(), logger.GetDefault())

	err := svc.Reserve(context.Background(), nil, tierID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, reserved)
	require.Len(t, cacheMock.deleted, 1)
	assert.Contains(t, cacheMock.deleted[0], tierID.String())
}

func TestReserve_PropagatesCapacityError(t *testing.T) {
	repo := &mockRepository{
		reserveFn: func(ctx context.Context, tx *gorm.DB, id uuid.UUID, quantity int) error {
			return apperrors.New(apperrors.KindInsufficientCapacity, "tier is full")
		},
	}
	cacheMock := &mockCache{}
	svc := NewService(repo, cacheMock, testConfig(), logger.GetDefault())

	err := svc.Reserve(context.Background(), nil, uuid.New(), 2)
	assert.True(t, apperrors.Is(err, apperrors.KindInsufficientCapacity))
	assert.Empty(t, cacheMock.deleted, "failed reservation must not touch the cache")
}

func TestReserve_RejectsNonPositiveQuantity(t *testing.T) {
	svc := newTestService(&mockRepository{})

	err := svc.Reserve(context.Background(), nil, uuid.New(), 0)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	err = svc.Reserve(context.Background(), nil, uuid.New(), -1)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestAvailable(t *testing.T) {
	unlimited := &TicketTier{}
	assert.Nil(t, unlimited.Available())

	tier := &TicketTier{Capacity: intPtr(100), HeldCount: 30, SoldCount: 50}
	require.NotNil(t, tier.Available())
	assert.Equal(t, 20, *tier.Available())

	full := &TicketTier{Capacity: intPtr(100), HeldCount: 40, SoldCount: 60}
	assert.Equal(t, 0, *full.Available())
}
