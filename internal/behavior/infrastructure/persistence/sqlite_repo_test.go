package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
	"github.com/felixgeelhaar/behaviortracker/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/behaviortracker/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/behaviortracker/internal/shared/infrastructure/migrations"
)

func setupTestDB(t *testing.T) database.Connection {
	t.Helper()
	ctx := context.Background()

	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "behavior.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, migrations.Run(ctx, conn))
	return conn
}

func TestNewRepositories_SQLite(t *testing.T) {
	repos, err := NewRepositories(setupTestDB(t))
	require.NoError(t, err)

	assert.IsType(t, &SQLiteBaselineRepository{}, repos.Baselines)
	assert.IsType(t, &SQLiteSessionRepository{}, repos.Sessions)
	assert.IsType(t, &SQLiteDigestRepository{}, repos.Digests)
}

func TestSQLiteBaselineRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteBaselineRepository(setupTestDB(t))
	userID := uuid.New()

	missing, err := repo.FindByUser(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	b := domain.NewBaseline(userID, 90)
	b.NegativeMoodIsUnproductive = true
	b.UnproductiveTolerancePct = 15
	b.GoalProductivityPct = 70
	b.Timezone = "Europe/Berlin"
	b.SetGoal(domain.GoalWork, domain.PolarityProductive).
		SetTrigger(domain.TriggerBoredom, domain.PolarityUnproductive).
		SetActivity(domain.ActivityPost, domain.PolarityProductive).
		SetContent(domain.ContentNews, domain.PolarityProductive)
	require.NoError(t, repo.Save(ctx, b))

	got, err := repo.FindByUser(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 90, got.DailyMinutesGoal)
	assert.True(t, got.NegativeMoodIsUnproductive)
	assert.Equal(t, 15.0, got.UnproductiveTolerancePct)
	assert.Equal(t, 70, got.GoalProductivityPct)
	assert.Equal(t, "Europe/Berlin", got.Timezone)
	assert.Equal(t, b.CategoryRules, got.CategoryRules)
	assert.True(t, b.CreatedAt.Equal(got.CreatedAt))
}

func TestSQLiteBaselineRepository_SaveReplacesRules(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteBaselineRepository(setupTestDB(t))
	userID := uuid.New()

	b := domain.NewBaseline(userID, 60)
	b.SetGoal(domain.GoalWork, domain.PolarityProductive).SetContent(domain.ContentNews, domain.PolarityProductive)
	require.NoError(t, repo.Save(ctx, b))

	replacement := domain.NewBaseline(userID, 45)
	replacement.SetGoal(domain.GoalAcademic, domain.PolarityProductive)
	require.NoError(t, repo.Save(ctx, replacement))

	got, err := repo.FindByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 45, got.DailyMinutesGoal)
	assert.Equal(t, map[domain.Goal]domain.Polarity{domain.GoalAcademic: domain.PolarityProductive}, got.CategoryRules.Goals)
	assert.Empty(t, got.CategoryRules.Content)
}

func TestSQLiteBaselineRepository_ListUserIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteBaselineRepository(setupTestDB(t))

	a, b := uuid.New(), uuid.New()
	require.NoError(t, repo.Save(ctx, domain.NewBaseline(a, 30)))
	require.NoError(t, repo.Save(ctx, domain.NewBaseline(b, 30)))

	ids, err := repo.ListUserIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{a, b}, ids)
}

func TestSQLiteSessionRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteSessionRepository(setupTestDB(t))
	userID := uuid.New()
	at := time.Date(2024, 5, 10, 21, 15, 0, 0, time.FixedZone("UTC+2", 7200))

	s := domain.NewSession(userID, "instagram", 25, at).
		WithTriggers(domain.TriggerBoredom, domain.TriggerNotification).
		WithGoal(domain.GoalWork).
		WithActivities(domain.ActivityScroll).
		WithContent(domain.ContentNews, domain.ContentShopping).
		WithContext(domain.TimeBucketEvening, domain.LocationHome, domain.MultitaskTV).
		WithSelfReport(-1, 1)
	require.NoError(t, s.ApplyScore(domain.ScoreResult{FormulaVersion: domain.FormulaWeightedV2, RawScore: -0.25, DeltaPoints: -3}))
	require.NoError(t, repo.Create(ctx, s))

	got, err := repo.FindByID(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, at.Equal(got.CreatedAt))
	got.CreatedAt = s.CreatedAt
	assert.Equal(t, s, got)

	none, err := repo.FindByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestSQLiteSessionRepository_FindByUserAndRange(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteSessionRepository(setupTestDB(t))
	userID := uuid.New()
	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	for _, offset := range []time.Duration{23 * time.Hour, -time.Minute, 8 * time.Hour, 24 * time.Hour, 0} {
		s := domain.NewSession(userID, "app", 10, day.Add(offset))
		require.NoError(t, s.ApplyScore(domain.ScoreResult{FormulaVersion: domain.FormulaWeightedV2}))
		require.NoError(t, repo.Create(ctx, s))
	}
	other := domain.NewSession(uuid.New(), "app", 10, day.Add(time.Hour))
	require.NoError(t, other.ApplyScore(domain.ScoreResult{FormulaVersion: domain.FormulaWeightedV2}))
	require.NoError(t, repo.Create(ctx, other))

	got, err := repo.FindByUserAndRange(ctx, userID, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.True(t, got[0].CreatedAt.Equal(day))
	assert.True(t, got[1].CreatedAt.Equal(day.Add(8*time.Hour)))
	assert.True(t, got[2].CreatedAt.Equal(day.Add(23*time.Hour)))
	for _, s := range got {
		assert.Nil(t, s.Triggers)
	}
}

func TestSQLiteSessionRepository_StampByUserAndRange(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteSessionRepository(setupTestDB(t))
	userID := uuid.New()
	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	end := day.Add(24 * time.Hour)

	empty, err := repo.StampByUserAndRange(ctx, userID, day, end)
	require.NoError(t, err)
	assert.Zero(t, empty.Sessions)
	assert.True(t, empty.Latest.IsZero())
	assert.True(t, empty.Start.Equal(day))

	for _, offset := range []time.Duration{9 * time.Hour, 14 * time.Hour, 25 * time.Hour} {
		s := domain.NewSession(userID, "app", 10, day.Add(offset))
		require.NoError(t, s.ApplyScore(domain.ScoreResult{FormulaVersion: domain.FormulaWeightedV2}))
		require.NoError(t, repo.Create(ctx, s))
	}

	stamp, err := repo.StampByUserAndRange(ctx, userID, day, end)
	require.NoError(t, err)
	assert.Equal(t, 2, stamp.Sessions)
	assert.True(t, stamp.Latest.Equal(day.Add(14*time.Hour)))
	assert.NotEqual(t, empty.String(), stamp.String())

	again, err := repo.StampByUserAndRange(ctx, userID, day, end)
	require.NoError(t, err)
	assert.Equal(t, stamp.String(), again.String())
}

func TestSQLiteDigestRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteDigestRepository(setupTestDB(t))
	userID := uuid.New()
	impact := 45
	periods := []domain.PeriodMetrics{
		{Bucket: domain.TimeBucketMorning, TotalMinutes: 30, SessionCount: 1, TopTrigger: domain.TriggerNotification},
		{Bucket: domain.TimeBucketNight, TotalMinutes: 60, SessionCount: 1, BedtimeDoomMinutes: 60},
	}

	d := &domain.DailyDigest{
		UserID:       userID,
		Day:          "2024-05-10",
		SessionCount: 2,
		TotalMinutes: 90,
		FinalScore:   47.5,
		Status:       domain.DayStatusOffTrack,
		Periods:      periods,
		Advice:       []domain.AdviceCard{{ID: domain.RuleLongSession, Kind: domain.CardFix, Text: "t", ImpactMinutes: &impact}},
		Tips:         []string{domain.TipProductiveFirst},
		ComputedAt:   time.Now().UTC(),
	}
	require.NoError(t, repo.Save(ctx, d))

	d.FinalScore = 80
	d.Status = domain.DayStatusOnTrack
	d.Tips = nil
	require.NoError(t, repo.Save(ctx, d))

	got, err := repo.FindByUserAndDay(ctx, userID, "2024-05-10")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 80.0, got.FinalScore)
	assert.Equal(t, []string{}, got.Tips)
	require.Len(t, got.Advice, 1)
	assert.Equal(t, 45, got.Advice[0].Impact())
	assert.Equal(t, domain.DayStatusOnTrack, got.Status)
	assert.Equal(t, periods, got.Periods)

	none, err := repo.FindByUserAndDay(ctx, userID, "2024-05-11")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestFlattenRules_IsSorted(t *testing.T) {
	b := domain.NewBaseline(uuid.New(), 10)
	b.SetTrigger(domain.TriggerBoredom, domain.PolarityUnproductive).
		SetContent(domain.ContentNews, domain.PolarityProductive).
		SetContent(domain.ContentEducational, domain.PolarityProductive)

	rows := flattenRules(b.CategoryRules)

	require.Len(t, rows, 3)
	assert.Equal(t, ruleRow{categoryContent, string(domain.ContentEducational), 1}, rows[0])
	assert.Equal(t, ruleRow{categoryTrigger, string(domain.TriggerBoredom), -1}, rows[2])
}
