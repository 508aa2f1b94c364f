package persistence

import (
	"context"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
	"github.com/felixgeelhaar/behaviortracker/internal/shared/infrastructure/database"
)

// PostgresDigestRepository implements domain.DigestRepository on PostgreSQL.
type PostgresDigestRepository struct {
	conn database.Connection
}

// NewPostgresDigestRepository creates the repository.
func NewPostgresDigestRepository(conn database.Connection) *PostgresDigestRepository {
	return &PostgresDigestRepository{conn: conn}
}

// Save replaces the digest for its user and day.
func (r *PostgresDigestRepository) Save(ctx context.Context, d *domain.DailyDigest) error {
	periods, advice, tips, err := encodeDigestLists(d)
	if err != nil {
		return err
	}
	_, err = database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `
		INSERT INTO behavior_daily_digests (
			user_id, day, session_count, total_minutes, weighted_mean_score,
			over_minutes_penalty, unproductive_penalty, final_score, status, periods,
			advice, tips, computed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (user_id, day) DO UPDATE SET
			session_count = EXCLUDED.session_count,
			total_minutes = EXCLUDED.total_minutes,
			weighted_mean_score = EXCLUDED.weighted_mean_score,
			over_minutes_penalty = EXCLUDED.over_minutes_penalty,
			unproductive_penalty = EXCLUDED.unproductive_penalty,
			final_score = EXCLUDED.final_score,
			status = EXCLUDED.status,
			periods = EXCLUDED.periods,
			advice = EXCLUDED.advice,
			tips = EXCLUDED.tips,
			computed_at = EXCLUDED.computed_at`,
		d.UserID, d.Day, d.SessionCount, d.TotalMinutes, d.WeightedMeanScore,
		d.OverMinutesPenalty, d.UnproductivePenalty, d.FinalScore, string(d.Status), periods,
		advice, tips, d.ComputedAt.UTC(),
	)
	return err
}

// FindByUserAndDay returns nil, nil when no digest exists.
func (r *PostgresDigestRepository) FindByUserAndDay(ctx context.Context, userID uuid.UUID, day string) (*domain.DailyDigest, error) {
	d := domain.DailyDigest{UserID: userID, Day: day}
	var status string
	var periods, advice, tips []byte

	err := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx, `
		SELECT session_count, total_minutes, weighted_mean_score, over_minutes_penalty,
		       unproductive_penalty, final_score, status, periods, advice, tips, computed_at
		FROM behavior_daily_digests WHERE user_id = $1 AND day = $2`,
		userID, day,
	).Scan(&d.SessionCount, &d.TotalMinutes, &d.WeightedMeanScore, &d.OverMinutesPenalty,
		&d.UnproductivePenalty, &d.FinalScore, &status, &periods, &advice, &tips, &d.ComputedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}

	d.Status = domain.DayStatus(status)
	if err := decodeDigestLists(&d, periods, advice, tips); err != nil {
		return nil, err
	}
	return &d, nil
}
