package persistence

import (
	"context"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
	"github.com/felixgeelhaar/behaviortracker/internal/shared/infrastructure/database"
)

// SQLiteDigestRepository implements domain.DigestRepository on SQLite.
type SQLiteDigestRepository struct {
	conn database.Connection
}

// NewSQLiteDigestRepository creates the repository.
func NewSQLiteDigestRepository(conn database.Connection) *SQLiteDigestRepository {
	return &SQLiteDigestRepository{conn: conn}
}

// Save replaces the digest for its user and day.
func (r *SQLiteDigestRepository) Save(ctx context.Context, d *domain.DailyDigest) error {
	periods, advice, tips, err := encodeDigestLists(d)
	if err != nil {
		return err
	}
	_, err = database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `
		INSERT INTO behavior_daily_digests (
			user_id, day, session_count, total_minutes, weighted_mean_score,
			over_minutes_penalty, unproductive_penalty, final_score, status, periods,
			advice, tips, computed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, day) DO UPDATE SET
			session_count = excluded.session_count,
			total_minutes = excluded.total_minutes,
			weighted_mean_score = excluded.weighted_mean_score,
			over_minutes_penalty = excluded.over_minutes_penalty,
			unproductive_penalty = excluded.unproductive_penalty,
			final_score = excluded.final_score,
			status = excluded.status,
			periods = excluded.periods,
			advice = excluded.advice,
			tips = excluded.tips,
			computed_at = excluded.computed_at`,
		d.UserID.String(), d.Day, d.SessionCount, d.TotalMinutes, d.WeightedMeanScore,
		d.OverMinutesPenalty, d.UnproductivePenalty, d.FinalScore, string(d.Status), string(periods),
		string(advice), string(tips), formatSQLiteTime(d.ComputedAt),
	)
	return err
}

// FindByUserAndDay returns nil, nil when no digest exists.
func (r *SQLiteDigestRepository) FindByUserAndDay(ctx context.Context, userID uuid.UUID, day string) (*domain.DailyDigest, error) {
	d := domain.DailyDigest{UserID: userID, Day: day}
	var status, periods, advice, tips, computed string
	err := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx, `
		SELECT session_count, total_minutes, weighted_mean_score, over_minutes_penalty,
		       unproductive_penalty, final_score, status, periods, advice, tips, computed_at
		FROM behavior_daily_digests WHERE user_id = ? AND day = ?`,
		userID.String(), day,
	).Scan(&d.SessionCount, &d.TotalMinutes, &d.WeightedMeanScore, &d.OverMinutesPenalty,
		&d.UnproductivePenalty, &d.FinalScore, &status, &periods, &advice, &tips, &computed)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}

	if d.ComputedAt, err = parseSQLiteTime(computed); err != nil {
		return nil, err
	}
	d.Status = domain.DayStatus(status)
	if err := decodeDigestLists(&d, []byte(periods), []byte(advice), []byte(tips)); err != nil {
		return nil, err
	}
	return &d, nil
}
