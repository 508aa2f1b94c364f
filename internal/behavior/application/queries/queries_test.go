package queries

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
	"github.com/felixgeelhaar/behaviortracker/pkg/observability"
)

var testDate = time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

func TestGetDailyAggregateHandler_Handle(t *testing.T) {
	userID := uuid.New()
	start, end := testDate, testDate.AddDate(0, 0, 1)

	t.Run("miss computes and fills the cache, hit skips storage", func(t *testing.T) {
		baselines := new(mockBaselineRepo)
		sessions := new(mockSessionRepo)
		cache := newStubCache()
		metrics := observability.NewInMemoryMetrics()
		handler := NewGetDailyAggregateHandler(baselines, sessions, cache, metrics, observability.DiscardLogger())

		visit := scoredSession(userID, "youtube", 30, testDate.Add(20*time.Hour), 0.4)
		baselines.On("FindByUser", mock.Anything, userID).Return(nil, nil)
		sessions.On("StampByUserAndRange", mock.Anything, userID, sameInstant(start), sameInstant(end)).
			Return(stampOf(start, visit), nil)
		sessions.On("FindByUserAndRange", mock.Anything, userID, sameInstant(start), sameInstant(end)).
			Return([]*domain.Session{visit}, nil).Once()

		first, err := handler.Handle(t.Context(), GetDailyAggregateQuery{UserID: userID, Date: testDate})
		require.NoError(t, err)
		assert.Equal(t, 1, first.SessionCount)
		assert.Equal(t, 30, first.TotalMinutes)

		second, err := handler.Handle(t.Context(), GetDailyAggregateQuery{UserID: userID, Date: testDate})
		require.NoError(t, err)
		assert.Same(t, first, second)

		assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricCacheMisses, viewAggregate))
		assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricCacheHits, viewAggregate))
		sessions.AssertExpectations(t)
	})

	t.Run("a session stored elsewhere replaces the cached aggregate", func(t *testing.T) {
		baselines := new(mockBaselineRepo)
		sessions := new(mockSessionRepo)
		handler := NewGetDailyAggregateHandler(baselines, sessions, newStubCache(), nil, observability.DiscardLogger())

		evening := scoredSession(userID, "youtube", 30, testDate.Add(20*time.Hour), 0.4)
		late := scoredSession(userID, "tiktok", 45, testDate.Add(23*time.Hour), -0.5)
		late.TimeBucket = domain.TimeBucketNight

		baselines.On("FindByUser", mock.Anything, userID).Return(nil, nil)
		sessions.On("StampByUserAndRange", mock.Anything, userID, mock.Anything, mock.Anything).
			Return(stampOf(start, evening), nil).Twice()
		sessions.On("StampByUserAndRange", mock.Anything, userID, mock.Anything, mock.Anything).
			Return(stampOf(start, evening, late), nil)
		sessions.On("FindByUserAndRange", mock.Anything, userID, mock.Anything, mock.Anything).
			Return([]*domain.Session{evening}, nil).Once()
		sessions.On("FindByUserAndRange", mock.Anything, userID, mock.Anything, mock.Anything).
			Return([]*domain.Session{evening, late}, nil).Once()

		for range 2 {
			agg, err := handler.Handle(t.Context(), GetDailyAggregateQuery{UserID: userID, Date: testDate})
			require.NoError(t, err)
			assert.Equal(t, 1, agg.SessionCount)
		}

		agg, err := handler.Handle(t.Context(), GetDailyAggregateQuery{UserID: userID, Date: testDate})
		require.NoError(t, err)
		assert.Equal(t, 2, agg.SessionCount)
		assert.Equal(t, 75, agg.TotalMinutes)
		sessions.AssertExpectations(t)
	})

	t.Run("reads the day in the baseline time zone", func(t *testing.T) {
		baselines := new(mockBaselineRepo)
		sessions := new(mockSessionRepo)
		handler := NewGetDailyAggregateHandler(baselines, sessions, nil, nil, observability.DiscardLogger())

		b := domain.NewBaseline(userID, 60)
		b.Timezone = "America/New_York"
		ny := b.Location()
		localStart := time.Date(2024, 5, 10, 0, 0, 0, 0, ny)

		baselines.On("FindByUser", mock.Anything, userID).Return(b, nil)
		sessions.On("FindByUserAndRange", mock.Anything, userID, sameInstant(localStart), sameInstant(localStart.AddDate(0, 0, 1))).
			Return([]*domain.Session{}, nil)

		agg, err := handler.Handle(t.Context(), GetDailyAggregateQuery{UserID: userID, Date: testDate})
		require.NoError(t, err)
		assert.True(t, agg.IsEmpty())
		sessions.AssertExpectations(t)
	})

	t.Run("cache failures fall back to storage", func(t *testing.T) {
		baselines := new(mockBaselineRepo)
		sessions := new(mockSessionRepo)
		cache := newStubCache()
		cache.failing = true
		handler := NewGetDailyAggregateHandler(baselines, sessions, cache, nil, observability.DiscardLogger())

		baselines.On("FindByUser", mock.Anything, userID).Return(nil, nil)
		sessions.On("StampByUserAndRange", mock.Anything, userID, mock.Anything, mock.Anything).
			Return(stampOf(start), nil)
		sessions.On("FindByUserAndRange", mock.Anything, userID, mock.Anything, mock.Anything).
			Return([]*domain.Session{}, nil).Twice()

		for range 2 {
			_, err := handler.Handle(t.Context(), GetDailyAggregateQuery{UserID: userID, Date: testDate})
			require.NoError(t, err)
		}
		sessions.AssertExpectations(t)
	})

	t.Run("storage error is returned", func(t *testing.T) {
		baselines := new(mockBaselineRepo)
		sessions := new(mockSessionRepo)
		handler := NewGetDailyAggregateHandler(baselines, sessions, nil, nil, nil)

		baselines.On("FindByUser", mock.Anything, userID).Return(nil, nil)
		sessions.On("FindByUserAndRange", mock.Anything, userID, mock.Anything, mock.Anything).
			Return(nil, errors.New("db gone"))

		_, err := handler.Handle(t.Context(), GetDailyAggregateQuery{UserID: userID, Date: testDate})
		assert.EqualError(t, err, "db gone")
	})
}

func TestGetAdviceHandler_Handle(t *testing.T) {
	userID := uuid.New()
	baselines := new(mockBaselineRepo)
	sessions := new(mockSessionRepo)
	cache := newStubCache()
	metrics := observability.NewInMemoryMetrics()
	aggregates := NewGetDailyAggregateHandler(baselines, sessions, cache, metrics, observability.DiscardLogger())
	handler := NewGetAdviceHandler(baselines, sessions, aggregates, cache, metrics, observability.DiscardLogger())

	late := scoredSession(userID, "tiktok", 90, testDate.Add(23*time.Hour), -0.6)
	late.TimeBucket = domain.TimeBucketNight
	baselines.On("FindByUser", mock.Anything, userID).Return(nil, nil)
	sessions.On("StampByUserAndRange", mock.Anything, userID, mock.Anything, mock.Anything).
		Return(stampOf(testDate, late), nil)
	sessions.On("FindByUserAndRange", mock.Anything, userID, mock.Anything, mock.Anything).
		Return([]*domain.Session{late}, nil).Once()

	first, err := handler.Handle(t.Context(), GetAdviceQuery{UserID: userID, Date: testDate})
	require.NoError(t, err)
	assert.Equal(t, "2024-05-10", first.Day)
	assert.Equal(t, 1, first.SessionCount)
	assert.False(t, first.Empty)
	require.NotEmpty(t, first.Cards)
	assert.Equal(t, domain.CardFix, first.Cards[0].Kind)

	second, err := handler.Handle(t.Context(), GetAdviceQuery{UserID: userID, Date: testDate})
	require.NoError(t, err)
	assert.Equal(t, first.Cards, second.Cards)
	assert.Equal(t, 1, second.SessionCount)
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricCacheHits, viewAdvice))
	sessions.AssertExpectations(t)
}

func TestGetAdviceHandler_EmptyDayIsDistinct(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name      string
		sessions  []*domain.Session
		wantEmpty bool
		wantCount int
	}{
		{name: "no sessions", sessions: []*domain.Session{}, wantEmpty: true},
		{
			name:      "sessions without a firing rule",
			sessions:  []*domain.Session{scoredSession(userID, "maps", 10, testDate.Add(10*time.Hour), 0.2)},
			wantCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			baselines := new(mockBaselineRepo)
			sessions := new(mockSessionRepo)
			cache := newStubCache()
			aggregates := NewGetDailyAggregateHandler(baselines, sessions, cache, nil, observability.DiscardLogger())
			handler := NewGetAdviceHandler(baselines, sessions, aggregates, cache, nil, observability.DiscardLogger())

			baselines.On("FindByUser", mock.Anything, userID).Return(nil, nil)
			sessions.On("StampByUserAndRange", mock.Anything, userID, mock.Anything, mock.Anything).
				Return(stampOf(testDate, tt.sessions...), nil)
			sessions.On("FindByUserAndRange", mock.Anything, userID, mock.Anything, mock.Anything).
				Return(tt.sessions, nil).Once()

			for range 2 {
				dto, err := handler.Handle(t.Context(), GetAdviceQuery{UserID: userID, Date: testDate})
				require.NoError(t, err)
				assert.Empty(t, dto.Cards)
				assert.NotNil(t, dto.Cards)
				assert.Equal(t, tt.wantEmpty, dto.Empty)
				assert.Equal(t, tt.wantCount, dto.SessionCount)
			}
		})
	}
}

func TestGetPeriodAggregateHandler_Handle(t *testing.T) {
	userID := uuid.New()

	t.Run("spans the requested days", func(t *testing.T) {
		baselines := new(mockBaselineRepo)
		sessions := new(mockSessionRepo)
		handler := NewGetPeriodAggregateHandler(baselines, sessions)

		baselines.On("FindByUser", mock.Anything, userID).Return(nil, nil)
		sessions.On("FindByUserAndRange", mock.Anything, userID, sameInstant(testDate), sameInstant(testDate.AddDate(0, 0, 7))).
			Return([]*domain.Session{
				scoredSession(userID, "a", 10, testDate.Add(time.Hour), 0.5),
				scoredSession(userID, "b", 20, testDate.AddDate(0, 0, 6), -0.5),
			}, nil)

		agg, err := handler.Handle(t.Context(), GetPeriodAggregateQuery{UserID: userID, Start: testDate, Days: 7})
		require.NoError(t, err)
		assert.Equal(t, 2, agg.SessionCount)
		assert.Equal(t, 30, agg.TotalMinutes)
	})

	t.Run("rejects out of range periods", func(t *testing.T) {
		handler := NewGetPeriodAggregateHandler(new(mockBaselineRepo), new(mockSessionRepo))
		for _, days := range []int{0, -1, MaxPeriodDays + 1} {
			_, err := handler.Handle(t.Context(), GetPeriodAggregateQuery{UserID: userID, Start: testDate, Days: days})
			assert.ErrorIs(t, err, ErrInvalidPeriod)
		}
	})
}

func TestGetPeriodAdviceHandler_Handle(t *testing.T) {
	userID := uuid.New()

	t.Run("rules run over the whole period", func(t *testing.T) {
		baselines := new(mockBaselineRepo)
		sessions := new(mockSessionRepo)
		handler := NewGetPeriodAdviceHandler(NewGetPeriodAggregateHandler(baselines, sessions))

		baselines.On("FindByUser", mock.Anything, userID).Return(nil, nil)
		sessions.On("FindByUserAndRange", mock.Anything, userID, sameInstant(testDate), sameInstant(testDate.AddDate(0, 0, 7))).
			Return([]*domain.Session{
				scoredSession(userID, "a", 10, testDate.Add(9*time.Hour), 0.5),
				scoredSession(userID, "b", 40, testDate.AddDate(0, 0, 6).Add(20*time.Hour), -0.5),
			}, nil)

		dto, err := handler.Handle(t.Context(), GetPeriodAdviceQuery{UserID: userID, Start: testDate, Days: 7})
		require.NoError(t, err)
		assert.Equal(t, "2024-05-10", dto.Day)
		assert.Equal(t, 7, dto.Days)
		assert.Equal(t, 2, dto.SessionCount)
		assert.False(t, dto.Empty)
		require.NotEmpty(t, dto.Cards)
		assert.Equal(t, domain.RuleLongSession, dto.Cards[0].ID)
		assert.Equal(t, 40, dto.Cards[0].Impact())
	})

	t.Run("an empty period is flagged", func(t *testing.T) {
		baselines := new(mockBaselineRepo)
		sessions := new(mockSessionRepo)
		handler := NewGetPeriodAdviceHandler(NewGetPeriodAggregateHandler(baselines, sessions))

		baselines.On("FindByUser", mock.Anything, userID).Return(nil, nil)
		sessions.On("FindByUserAndRange", mock.Anything, userID, mock.Anything, mock.Anything).
			Return([]*domain.Session{}, nil)

		dto, err := handler.Handle(t.Context(), GetPeriodAdviceQuery{UserID: userID, Start: testDate, Days: 3})
		require.NoError(t, err)
		assert.True(t, dto.Empty)
		assert.Equal(t, 3, dto.Days)
		assert.NotNil(t, dto.Cards)
		assert.Empty(t, dto.Cards)
	})

	t.Run("rejects out of range periods", func(t *testing.T) {
		handler := NewGetPeriodAdviceHandler(NewGetPeriodAggregateHandler(new(mockBaselineRepo), new(mockSessionRepo)))
		_, err := handler.Handle(t.Context(), GetPeriodAdviceQuery{UserID: userID, Start: testDate, Days: MaxPeriodDays + 1})
		assert.ErrorIs(t, err, ErrInvalidPeriod)
	})
}

func TestListSessionsHandler_Handle(t *testing.T) {
	userID := uuid.New()
	baselines := new(mockBaselineRepo)
	sessions := new(mockSessionRepo)
	handler := NewListSessionsHandler(baselines, sessions)

	legacy := scoredSession(userID, "reddit", 15, testDate.Add(8*time.Hour), 0.75)
	legacy.FormulaVersion = domain.FormulaResearchV1
	baselines.On("FindByUser", mock.Anything, userID).Return(nil, nil)
	sessions.On("FindByUserAndRange", mock.Anything, userID, mock.Anything, mock.Anything).
		Return([]*domain.Session{legacy}, nil)

	dtos, err := handler.Handle(t.Context(), ListSessionsQuery{UserID: userID, Date: testDate})
	require.NoError(t, err)
	require.Len(t, dtos, 1)
	assert.Equal(t, "reddit", dtos[0].AppID)
	assert.Equal(t, string(domain.FormulaResearchV1), dtos[0].FormulaVersion)
	assert.InDelta(t, 0.75, dtos[0].Score, 1e-9)
}

func TestGetDigestHandler_Handle(t *testing.T) {
	userID := uuid.New()

	t.Run("found", func(t *testing.T) {
		repo := new(mockDigestRepo)
		digest := &domain.DailyDigest{UserID: userID, Day: "2024-05-10", FinalScore: 72}
		repo.On("FindByUserAndDay", mock.Anything, userID, "2024-05-10").Return(digest, nil)

		got, err := NewGetDigestHandler(repo).Handle(t.Context(), GetDigestQuery{UserID: userID, Date: testDate})
		require.NoError(t, err)
		assert.Equal(t, 72.0, got.FinalScore)
	})

	t.Run("missing", func(t *testing.T) {
		repo := new(mockDigestRepo)
		repo.On("FindByUserAndDay", mock.Anything, userID, "2024-05-10").Return(nil, nil)

		_, err := NewGetDigestHandler(repo).Handle(t.Context(), GetDigestQuery{UserID: userID, Date: testDate})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestGetBaselineHandler_Handle(t *testing.T) {
	userID := uuid.New()
	repo := new(mockBaselineRepo)
	repo.On("FindByUser", mock.Anything, userID).Return(nil, nil).Once()
	repo.On("FindByUser", mock.Anything, userID).Return(domain.NewBaseline(userID, 45), nil).Once()
	handler := NewGetBaselineHandler(repo)

	_, err := handler.Handle(t.Context(), GetBaselineQuery{UserID: userID})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	b, err := handler.Handle(t.Context(), GetBaselineQuery{UserID: userID})
	require.NoError(t, err)
	assert.Equal(t, 45, b.DailyMinutesGoal)
}

func TestGetProgressHandler_Handle(t *testing.T) {
	userID := uuid.New()
	now := testDate.AddDate(0, 0, 4)

	t.Run("averages since the baseline was created", func(t *testing.T) {
		baselines := new(mockBaselineRepo)
		sessions := new(mockSessionRepo)
		handler := NewGetProgressHandler(baselines, sessions)
		handler.now = func() time.Time { return now }

		baseline := domain.NewBaseline(userID, 60)
		baseline.CreatedAt = testDate
		baselines.On("FindByUser", mock.Anything, userID).Return(baseline, nil)
		sessions.On("FindByUserAndRange", mock.Anything, userID, sameInstant(testDate), sameInstant(now)).
			Return([]*domain.Session{
				scoredSession(userID, "a", 30, testDate.Add(9*time.Hour), 0.5),
				scoredSession(userID, "b", 10, testDate.AddDate(0, 0, 2), -0.5),
			}, nil)

		p, err := handler.Handle(t.Context(), GetProgressQuery{UserID: userID})
		require.NoError(t, err)
		assert.InDelta(t, 4.0, p.Days, 1e-9)
		assert.Equal(t, 2, p.SessionCount)
		assert.Equal(t, 40, p.TotalMinutes)
		assert.Equal(t, 10, p.AvgDailyMinutes)
		assert.Equal(t, 63, p.AvgScorePct)
		assert.Equal(t, domain.DefaultGoalProductivityPct, p.GoalProductivityPct)
	})

	t.Run("needs a baseline", func(t *testing.T) {
		baselines := new(mockBaselineRepo)
		sessions := new(mockSessionRepo)
		baselines.On("FindByUser", mock.Anything, userID).Return(nil, nil)

		_, err := NewGetProgressHandler(baselines, sessions).Handle(t.Context(), GetProgressQuery{UserID: userID})
		assert.True(t, domain.IsConfigurationError(err))
		sessions.AssertNotCalled(t, "FindByUserAndRange", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
