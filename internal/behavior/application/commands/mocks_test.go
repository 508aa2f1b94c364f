package commands

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
	sharedDomain "github.com/felixgeelhaar/behaviortracker/internal/shared/domain"
)

type mockBaselineRepo struct {
	mock.Mock
}

func (m *mockBaselineRepo) Save(ctx context.Context, b *domain.Baseline) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockBaselineRepo) FindByUser(ctx context.Context, userID uuid.UUID) (*domain.Baseline, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Baseline), args.Error(1)
}

func (m *mockBaselineRepo) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type mockSessionRepo struct {
	mock.Mock
}

func (m *mockSessionRepo) Create(ctx context.Context, s *domain.Session) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *mockSessionRepo) FindByUserAndRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*domain.Session, error) {
	args := m.Called(ctx, userID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Session), args.Error(1)
}

func (m *mockSessionRepo) StampByUserAndRange(ctx context.Context, userID uuid.UUID, start, end time.Time) (domain.WindowStamp, error) {
	args := m.Called(ctx, userID, start, end)
	return args.Get(0).(domain.WindowStamp), args.Error(1)
}

// mockCache only expects Invalidate; commands never read views.
type mockCache struct {
	mock.Mock
}

func (m *mockCache) GetAggregate(context.Context, uuid.UUID, string, string) (*domain.DailyAggregate, bool, error) {
	return nil, false, nil
}

func (m *mockCache) SetAggregate(context.Context, *domain.DailyAggregate, string, string) error {
	return nil
}

func (m *mockCache) GetAdvice(context.Context, uuid.UUID, string, string) ([]domain.AdviceCard, bool, error) {
	return nil, false, nil
}

func (m *mockCache) SetAdvice(context.Context, uuid.UUID, string, string, []domain.AdviceCard) error {
	return nil
}

func (m *mockCache) Invalidate(ctx context.Context, userID uuid.UUID, day string) error {
	return m.Called(ctx, userID, day).Error(0)
}

type mockDigestRepo struct {
	mock.Mock
}

func (m *mockDigestRepo) Save(ctx context.Context, d *domain.DailyDigest) error {
	return m.Called(ctx, d).Error(0)
}

func (m *mockDigestRepo) FindByUserAndDay(ctx context.Context, userID uuid.UUID, day string) (*domain.DailyDigest, error) {
	args := m.Called(ctx, userID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailyDigest), args.Error(1)
}

type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishEvents(ctx context.Context, events ...sharedDomain.DomainEvent) error {
	return m.Called(ctx, events).Error(0)
}

type txKey struct{}

func txContext() (context.Context, context.Context) {
	ctx := context.Background()
	return ctx, context.WithValue(ctx, txKey{}, "tx")
}
