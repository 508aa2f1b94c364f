package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/behaviortracker/internal/behavior/application/commands"
	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
	"github.com/felixgeelhaar/behaviortracker/pkg/observability"
)

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) ExecuteDigest(ctx context.Context, cmd commands.RunDigestCommand) (*commands.RunDigestResult, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commands.RunDigestResult), args.Error(1)
}

func forDay(day time.Time, skip ...uuid.UUID) any {
	return mock.MatchedBy(func(cmd commands.RunDigestCommand) bool {
		return cmd.Day.Equal(day) && len(cmd.Skip) == len(skip) && containsAll(cmd.Skip, skip)
	})
}

func containsAll(got, want []uuid.UUID) bool {
	seen := make(map[uuid.UUID]bool, len(got))
	for _, id := range got {
		seen[id] = true
	}
	for _, id := range want {
		if !seen[id] {
			return false
		}
	}
	return true
}

func newTestScheduler(runner DigestRunner, now time.Time) *DigestScheduler {
	s := NewDigestScheduler(runner, Config{Interval: time.Hour}, observability.DiscardLogger())
	s.now = func() time.Time { return now }
	return s
}

func TestPreviousDay(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), previousDay(now))
}

func TestDigestScheduler_RunOnceSkipsCompletedDay(t *testing.T) {
	ctx := context.Background()
	runner := new(mockRunner)
	yesterday := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	runner.On("ExecuteDigest", ctx, forDay(yesterday)).Return(&commands.RunDigestResult{
		Day:     "2024-06-01",
		Digests: []*domain.DailyDigest{{Day: "2024-06-01"}, {Day: "2024-06-01"}},
	}, nil).Once()

	s := newTestScheduler(runner, time.Date(2024, 6, 2, 3, 0, 0, 0, time.UTC))

	ran, err := s.RunOnce(ctx)
	require.NoError(t, err)
	assert.True(t, ran)

	ran, err = s.RunOnce(ctx)
	require.NoError(t, err)
	assert.False(t, ran, "a clean day is digested once")

	stats := s.Stats()
	assert.Equal(t, int64(1), stats.Runs)
	assert.Equal(t, "2024-06-01", stats.LastDay)
	assert.Equal(t, 2, stats.LastDigested)
	assert.Zero(t, stats.LastFailures)
	runner.AssertExpectations(t)
}

func TestDigestScheduler_RetriesDayWithFailures(t *testing.T) {
	ctx := context.Background()
	runner := new(mockRunner)
	yesterday := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	runner.On("ExecuteDigest", ctx, forDay(yesterday)).Return(&commands.RunDigestResult{
		Day:      "2024-06-01",
		Failures: []commands.DigestFailure{{UserID: uuid.New(), Err: errors.New("boom")}},
	}, nil).Twice()

	s := newTestScheduler(runner, time.Date(2024, 6, 2, 3, 0, 0, 0, time.UTC))

	for i := 0; i < 2; i++ {
		ran, err := s.RunOnce(ctx)
		require.NoError(t, err)
		assert.True(t, ran)
	}
	assert.Equal(t, 1, s.Stats().LastFailures)
	runner.AssertExpectations(t)
}

func TestDigestScheduler_WaitsForDaysStillOpen(t *testing.T) {
	ctx := context.Background()
	runner := new(mockRunner)
	yesterday := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	utcUser := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	laUser := uuid.MustParse("00000000-0000-0000-0000-000000000002")

	// 00:30 UTC is still the afternoon of June 1st in Los Angeles.
	early := time.Date(2024, 6, 2, 0, 30, 0, 0, time.UTC)
	runner.On("ExecuteDigest", ctx, mock.MatchedBy(func(cmd commands.RunDigestCommand) bool {
		return cmd.Day.Equal(yesterday) && cmd.Now.Equal(early) && len(cmd.Skip) == 0
	})).Return(&commands.RunDigestResult{
		Day:     "2024-06-01",
		Digests: []*domain.DailyDigest{{UserID: utcUser, Day: "2024-06-01"}},
		Pending: []uuid.UUID{laUser},
	}, nil).Once()

	s := newTestScheduler(runner, early)
	ran, err := s.RunOnce(ctx)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 1, s.Stats().LastPending)

	late := time.Date(2024, 6, 2, 7, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return late }
	runner.On("ExecuteDigest", ctx, forDay(yesterday, utcUser)).Return(&commands.RunDigestResult{
		Day:     "2024-06-01",
		Digests: []*domain.DailyDigest{{UserID: laUser, Day: "2024-06-01"}},
	}, nil).Once()

	ran, err = s.RunOnce(ctx)
	require.NoError(t, err)
	assert.True(t, ran, "a day with pending users is not complete")

	ran, err = s.RunOnce(ctx)
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Zero(t, s.Stats().LastPending)
	runner.AssertExpectations(t)
}

func TestDigestScheduler_RecordsError(t *testing.T) {
	ctx := context.Background()
	runner := new(mockRunner)
	runner.On("ExecuteDigest", ctx, mock.Anything).Return(nil, errors.New("database down"))

	s := newTestScheduler(runner, time.Date(2024, 6, 2, 3, 0, 0, 0, time.UTC))

	ran, err := s.RunOnce(ctx)
	require.Error(t, err)
	assert.True(t, ran)
	assert.Equal(t, "database down", s.Stats().LastError)
	assert.Zero(t, s.Stats().Runs)
}

func TestDigestScheduler_StartStop(t *testing.T) {
	runner := new(mockRunner)
	done := make(chan struct{})
	runner.On("ExecuteDigest", mock.Anything, mock.Anything).
		Return(&commands.RunDigestResult{}, nil).
		Run(func(mock.Arguments) { close(done) }).
		Once()

	s := NewDigestScheduler(runner, Config{Interval: time.Hour, RunOnStart: true}, observability.DiscardLogger())
	s.Start(context.Background())
	assert.True(t, s.IsRunning())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("digest did not run on start")
	}

	s.Stop()
	assert.False(t, s.IsRunning())
	s.Stop()
	runner.AssertExpectations(t)
}
