package persistence

import (
	"context"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
	"github.com/felixgeelhaar/behaviortracker/internal/shared/infrastructure/database"
)

// SQLiteBaselineRepository implements domain.BaselineRepository on SQLite.
type SQLiteBaselineRepository struct {
	conn database.Connection
}

// NewSQLiteBaselineRepository creates the repository.
func NewSQLiteBaselineRepository(conn database.Connection) *SQLiteBaselineRepository {
	return &SQLiteBaselineRepository{conn: conn}
}

// Save upserts the baseline and replaces its category rules in one transaction.
func (r *SQLiteBaselineRepository) Save(ctx context.Context, b *domain.Baseline) error {
	return inTx(ctx, r.conn, func(ctx context.Context, exec database.Executor) error {
		_, err := exec.Exec(ctx, `
			INSERT INTO behavior_baselines (
				user_id, daily_minutes_goal, negative_mood_is_unproductive,
				unproductive_tolerance_pct, goal_productivity_pct, timezone, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (user_id) DO UPDATE SET
				daily_minutes_goal = excluded.daily_minutes_goal,
				negative_mood_is_unproductive = excluded.negative_mood_is_unproductive,
				unproductive_tolerance_pct = excluded.unproductive_tolerance_pct,
				goal_productivity_pct = excluded.goal_productivity_pct,
				timezone = excluded.timezone,
				updated_at = excluded.updated_at`,
			b.UserID.String(),
			b.DailyMinutesGoal,
			boolToInt(b.NegativeMoodIsUnproductive),
			b.UnproductiveTolerancePct,
			b.GoalProductivityPct,
			b.Timezone,
			formatSQLiteTime(b.CreatedAt),
			formatSQLiteTime(b.UpdatedAt),
		)
		if err != nil {
			return err
		}

		if _, err := exec.Exec(ctx, `DELETE FROM behavior_category_rules WHERE user_id = ?`, b.UserID.String()); err != nil {
			return err
		}
		for _, rule := range flattenRules(b.CategoryRules) {
			if _, err := exec.Exec(ctx,
				`INSERT INTO behavior_category_rules (user_id, category, value, polarity) VALUES (?, ?, ?, ?)`,
				b.UserID.String(), rule.category, rule.value, rule.polarity,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByUser returns nil, nil when the user has no baseline.
func (r *SQLiteBaselineRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*domain.Baseline, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)

	var (
		goal               int
		negMood            int
		tolerance          float64
		goalProd           int
		timezone           string
		createdAt, updated string
	)
	err := exec.QueryRow(ctx, `
		SELECT daily_minutes_goal, negative_mood_is_unproductive, unproductive_tolerance_pct,
		       goal_productivity_pct, timezone, created_at, updated_at
		FROM behavior_baselines WHERE user_id = ?`, userID.String(),
	).Scan(&goal, &negMood, &tolerance, &goalProd, &timezone, &createdAt, &updated)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}

	b := domain.NewBaseline(userID, goal)
	b.NegativeMoodIsUnproductive = negMood != 0
	b.UnproductiveTolerancePct = tolerance
	b.GoalProductivityPct = goalProd
	b.Timezone = timezone
	if b.CreatedAt, err = parseSQLiteTime(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseSQLiteTime(updated); err != nil {
		return nil, err
	}

	err = collectRules(ctx, exec,
		`SELECT category, value, polarity FROM behavior_category_rules WHERE user_id = ?`,
		userID.String(), b)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListUserIDs returns every user with a baseline, ordered by id.
func (r *SQLiteBaselineRepository) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, `SELECT user_id FROM behavior_baselines ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
