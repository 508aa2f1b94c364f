package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/behaviortracker/internal/behavior/domain"
	"github.com/felixgeelhaar/behaviortracker/internal/shared/infrastructure/database"
)

const sqliteSessionColumns = `id, user_id, app_id, duration_minutes, time_bucket, triggers, goal,
	activities, content, location, multitask, mood_delta, self_rated_productivity,
	formula_version, raw_score, delta_points, created_at`

// SQLiteSessionRepository implements domain.SessionRepository on SQLite.
type SQLiteSessionRepository struct {
	conn database.Connection
}

// NewSQLiteSessionRepository creates the repository.
func NewSQLiteSessionRepository(conn database.Connection) *SQLiteSessionRepository {
	return &SQLiteSessionRepository{conn: conn}
}

// Create inserts a scored session.
func (r *SQLiteSessionRepository) Create(ctx context.Context, s *domain.Session) error {
	lists, err := encodeSessionLists(s)
	if err != nil {
		return err
	}
	_, err = database.ExecutorFromContext(ctx, r.conn).Exec(ctx,
		`INSERT INTO behavior_sessions (`+sqliteSessionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID.String(), s.UserID.String(), s.AppID, s.DurationMinutes, string(s.TimeBucket),
		string(lists.triggers), string(s.Goal), string(lists.activities), string(lists.content),
		string(s.Location), string(s.Multitask), s.MoodDelta, s.SelfRatedProductivity,
		string(s.FormulaVersion), s.RawScore, s.DeltaPoints, formatSQLiteTime(s.CreatedAt),
	)
	return err
}

// FindByID returns nil, nil when the session does not exist.
func (r *SQLiteSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	row := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT `+sqliteSessionColumns+` FROM behavior_sessions WHERE id = ?`, id.String())
	s, err := scanSQLiteSession(row)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

// FindByUserAndRange returns sessions with start <= created_at < end, oldest first.
func (r *SQLiteSessionRepository) FindByUserAndRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*domain.Session, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx,
		`SELECT `+sqliteSessionColumns+` FROM behavior_sessions
		 WHERE user_id = ? AND created_at >= ? AND created_at < ?
		 ORDER BY created_at, id`,
		userID.String(), formatSQLiteTime(start), formatSQLiteTime(end))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		s, err := scanSQLiteSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// StampByUserAndRange counts the sessions of the range and reports the newest creation time.
func (r *SQLiteSessionRepository) StampByUserAndRange(ctx context.Context, userID uuid.UUID, start, end time.Time) (domain.WindowStamp, error) {
	stamp := domain.WindowStamp{Start: start}
	var latest sql.NullString
	err := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT COUNT(*), MAX(created_at) FROM behavior_sessions
		 WHERE user_id = ? AND created_at >= ? AND created_at < ?`,
		userID.String(), formatSQLiteTime(start), formatSQLiteTime(end),
	).Scan(&stamp.Sessions, &latest)
	if err != nil {
		return domain.WindowStamp{}, err
	}
	if latest.Valid {
		if stamp.Latest, err = parseSQLiteTime(latest.String); err != nil {
			return domain.WindowStamp{}, err
		}
	}
	return stamp, nil
}

func scanSQLiteSession(row database.Row) (*domain.Session, error) {
	var s domain.Session
	var id, userID, bucket, goal, location, multitask, version, createdAt string
	var triggers, activities, content string
	err := row.Scan(
		&id, &userID, &s.AppID, &s.DurationMinutes, &bucket, &triggers, &goal,
		&activities, &content, &location, &multitask, &s.MoodDelta, &s.SelfRatedProductivity,
		&version, &s.RawScore, &s.DeltaPoints, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	if s.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if s.UserID, err = uuid.Parse(userID); err != nil {
		return nil, err
	}
	if s.CreatedAt, err = parseSQLiteTime(createdAt); err != nil {
		return nil, err
	}
	s.TimeBucket = domain.ParseTimeBucket(bucket)
	s.Goal = domain.ParseGoal(goal)
	s.Location = domain.ParseLocation(location)
	s.Multitask = domain.ParseMultitask(multitask)
	s.FormulaVersion = domain.FormulaVersion(version)

	lists := sessionLists{triggers: []byte(triggers), activities: []byte(activities), content: []byte(content)}
	if err := lists.decodeInto(&s); err != nil {
		return nil, err
	}
	return &s, nil
}
