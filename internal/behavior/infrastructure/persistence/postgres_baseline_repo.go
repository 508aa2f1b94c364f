package persistence

import (
	"context"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
	"github.com/felixgeelhaar/behaviortracker/internal/shared/infrastructure/database"
)

// PostgresBaselineRepository implements domain.BaselineRepository on PostgreSQL.
type PostgresBaselineRepository struct {
	conn database.Connection
}

// NewPostgresBaselineRepository creates the repository.
func NewPostgresBaselineRepository(conn database.Connection) *PostgresBaselineRepository {
	return &PostgresBaselineRepository{conn: conn}
}

// Save upserts the baseline and replaces its category rules in one transaction.
func (r *PostgresBaselineRepository) Save(ctx context.Context, b *domain.Baseline) error {
	return inTx(ctx, r.conn, func(ctx context.Context, exec database.Executor) error {
		_, err := exec.Exec(ctx, `
			INSERT INTO behavior_baselines (
				user_id, daily_minutes_goal, negative_mood_is_unproductive,
				unproductive_tolerance_pct, goal_productivity_pct, timezone, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (user_id) DO UPDATE SET
				daily_minutes_goal = EXCLUDED.daily_minutes_goal,
				negative_mood_is_unproductive = EXCLUDED.negative_mood_is_unproductive,
				unproductive_tolerance_pct = EXCLUDED.unproductive_tolerance_pct,
				goal_productivity_pct = EXCLUDED.goal_productivity_pct,
				timezone = EXCLUDED.timezone,
				updated_at = EXCLUDED.updated_at`,
			b.UserID, b.DailyMinutesGoal, b.NegativeMoodIsUnproductive,
			b.UnproductiveTolerancePct, b.GoalProductivityPct, b.Timezone, b.CreatedAt.UTC(), b.UpdatedAt.UTC(),
		)
		if err != nil {
			return err
		}

		if _, err := exec.Exec(ctx, `DELETE FROM behavior_category_rules WHERE user_id = $1`, b.UserID); err != nil {
			return err
		}
		for _, rule := range flattenRules(b.CategoryRules) {
			if _, err := exec.Exec(ctx,
				`INSERT INTO behavior_category_rules (user_id, category, value, polarity) VALUES ($1, $2, $3, $4)`,
				b.UserID, rule.category, rule.value, rule.polarity,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// FindByUser returns nil, nil when the user has no baseline.
func (r *PostgresBaselineRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*domain.Baseline, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)

	b := domain.NewBaseline(userID, 0)
	err := exec.QueryRow(ctx, `
		SELECT daily_minutes_goal, negative_mood_is_unproductive, unproductive_tolerance_pct,
		       goal_productivity_pct, timezone, created_at, updated_at
		FROM behavior_baselines WHERE user_id = $1`, userID,
	).Scan(&b.DailyMinutesGoal, &b.NegativeMoodIsUnproductive, &b.UnproductiveTolerancePct,
		&b.GoalProductivityPct, &b.Timezone, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}

	err = collectRules(ctx, exec,
		`SELECT category, value, polarity FROM behavior_category_rules WHERE user_id = $1`,
		userID, b)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListUserIDs returns every user with a baseline, ordered by id.
func (r *PostgresBaselineRepository) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx, `SELECT user_id FROM behavior_baselines ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
