package queries

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
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

var errCacheDown = errors.New("cache down")

// stubCache is a map-backed AggregateCache that can be switched to failing.
type stubCache struct {
	mu         sync.Mutex
	aggregates map[string]*domain.DailyAggregate
	advice     map[string][]domain.AdviceCard
	failing    bool
}

func newStubCache() *stubCache {
	return &stubCache{
		aggregates: make(map[string]*domain.DailyAggregate),
		advice:     make(map[string][]domain.AdviceCard),
	}
}

func (c *stubCache) key(userID uuid.UUID, day, stamp string) string {
	return userID.String() + "/" + day + "/" + stamp
}

func (c *stubCache) GetAggregate(_ context.Context, userID uuid.UUID, day, stamp string) (*domain.DailyAggregate, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return nil, false, errCacheDown
	}
	agg, ok := c.aggregates[c.key(userID, day, stamp)]
	return agg, ok, nil
}

func (c *stubCache) SetAggregate(_ context.Context, agg *domain.DailyAggregate, day, stamp string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return errCacheDown
	}
	c.aggregates[c.key(agg.UserID, day, stamp)] = agg
	return nil
}

func (c *stubCache) GetAdvice(_ context.Context, userID uuid.UUID, day, stamp string) ([]domain.AdviceCard, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return nil, false, errCacheDown
	}
	cards, ok := c.advice[c.key(userID, day, stamp)]
	return cards, ok, nil
}

func (c *stubCache) SetAdvice(_ context.Context, userID uuid.UUID, day, stamp string, cards []domain.AdviceCard) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return errCacheDown
	}
	c.advice[c.key(userID, day, stamp)] = cards
	return nil
}

func (c *stubCache) Invalidate(_ context.Context, userID uuid.UUID, day string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := userID.String() + "/" + day
	for k := range c.aggregates {
		if strings.HasPrefix(k, prefix) {
			delete(c.aggregates, k)
		}
	}
	for k := range c.advice {
		if strings.HasPrefix(k, prefix) {
			delete(c.advice, k)
		}
	}
	return nil
}

func scoredSession(userID uuid.UUID, app string, minutes int, at time.Time, raw float64) *domain.Session {
	s := domain.NewSession(userID, app, minutes, at)
	s.FormulaVersion = domain.FormulaWeightedV2
	s.RawScore = raw
	return s
}

func stampOf(start time.Time, sessions ...*domain.Session) domain.WindowStamp {
	ws := domain.WindowStamp{Start: start, Sessions: len(sessions)}
	for _, s := range sessions {
		if s.CreatedAt.After(ws.Latest) {
			ws.Latest = s.CreatedAt
		}
	}
	return ws
}

func sameInstant(want time.Time) any {
	return mock.MatchedBy(func(got time.Time) bool { return got.Equal(want) })
}
