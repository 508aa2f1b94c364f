package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
	"github.com/felixgeelhaar/behaviortracker/internal/shared/infrastructure/database"
)

const postgresSessionColumns = sqliteSessionColumns

// PostgresSessionRepository implements domain.SessionRepository on PostgreSQL.
type PostgresSessionRepository struct {
	conn database.Connection
}

// NewPostgresSessionRepository creates the repository.
func NewPostgresSessionRepository(conn database.Connection) *PostgresSessionRepository {
	return &PostgresSessionRepository{conn: conn}
}

// Create inserts a scored session.
func (r *PostgresSessionRepository) Create(ctx context.Context, s *domain.Session) error {
	lists, err := encodeSessionLists(s)
	if err != nil {
		return err
	}
	_, err = database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		`INSERT INTO behavior_sessions (`+postgresSessionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		s.ID, s.UserID, s.AppID, s.DurationMinutes, string(s.TimeBucket),
		lists.triggers, string(s.Goal), lists.activities, lists.content,
		string(s.Location), string(s.Multitask), s.MoodDelta, s.SelfRatedProductivity,
		string(s.FormulaVersion), s.RawScore, s.DeltaPoints, s.CreatedAt.UTC(),
	)
	return err
}

// FindByID returns nil, nil when the session does not exist.
func (r *PostgresSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	row := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT `+postgresSessionColumns+` FROM behavior_sessions WHERE id = $1`, id)
	s, err := scanPostgresSession(row)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

// FindByUserAndRange returns sessions with start <= created_at < end, oldest first.
func (r *PostgresSessionRepository) FindByUserAndRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*domain.Session, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx,
		`SELECT `+postgresSessionColumns+` FROM behavior_sessions
		 WHERE user_id = $1 AND created_at >= $2 AND created_at < $3
		 ORDER BY created_at, id`,
		userID, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		s, err := scanPostgresSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// StampByUserAndRange counts the sessions of the range and reports the newest creation time.
func (r *PostgresSessionRepository) StampByUserAndRange(ctx context.Context, userID uuid.UUID, start, end time.Time) (domain.WindowStamp, error) {
	stamp := domain.WindowStamp{Start: start}
	var latest *time.Time
	err := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT COUNT(*), MAX(created_at) FROM behavior_sessions
		 WHERE user_id = $1 AND created_at >= $2 AND created_at < $3`,
		userID, start.UTC(), end.UTC(),
	).Scan(&stamp.Sessions, &latest)
	if err != nil {
		return domain.WindowStamp{}, err
	}
	if latest != nil {
		stamp.Latest = *latest
	}
	return stamp, nil
}

func scanPostgresSession(row database.Row) (*domain.Session, error) {
	var s domain.Session
	var bucket, goal, location, multitask, version string
	var lists sessionLists

	err := row.Scan(
		&s.ID, &s.UserID, &s.AppID, &s.DurationMinutes, &bucket, &lists.triggers, &goal,
		&lists.activities, &lists.content, &location, &multitask, &s.MoodDelta, &s.SelfRatedProductivity,
		&version, &s.RawScore, &s.DeltaPoints, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.TimeBucket = domain.ParseTimeBucket(bucket)
	s.Goal = domain.ParseGoal(goal)
	s.Location = domain.ParseLocation(location)
	s.Multitask = domain.ParseMultitask(multitask)
	s.FormulaVersion = domain.FormulaVersion(version)
	if err := lists.decodeInto(&s); err != nil {
		return nil, err
	}
	return &s, nil
}
