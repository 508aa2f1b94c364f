package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by repositories when a record does not exist.
var ErrNotFound = errors.New("not found")

// BaselineRepository stores one baseline per user.
type BaselineRepository interface {
	// Save inserts or replaces the user's baseline.
	Save(ctx context.Context, baseline *Baseline) error

	// FindByUser returns nil, nil when the user has no baseline.
	FindByUser(ctx context.Context, userID uuid.UUID) (*Baseline, error)

	// ListUserIDs returns every user with a baseline.
	ListUserIDs(ctx context.Context) ([]uuid.UUID, error)
}

// SessionRepository stores scored sessions. Sessions are append-only.
type SessionRepository interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// FindByID returns nil, nil when the session does not exist.
	FindByID(ctx context.Context, id uuid.UUID) (*Session, error)

	// FindByUserAndRange returns sessions with start <= created_at < end,
	// ordered by created_at ascending.
	FindByUserAndRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*Session, error)

	// StampByUserAndRange summarizes the same range without loading sessions.
	StampByUserAndRange(ctx context.Context, userID uuid.UUID, start, end time.Time) (WindowStamp, error)
}

// WindowStamp summarizes the stored sessions of a window. Sessions are
// append-only, so any session added to the window changes the stamp.
type WindowStamp struct {
	Start    time.Time
	Sessions int
	Latest   time.Time
}

// String encodes the stamp for comparison with the stamp a view was cached under.
func (s WindowStamp) String() string {
	var latest int64
	if !s.Latest.IsZero() {
		latest = s.Latest.UnixNano()
	}
	return fmt.Sprintf("%d:%d:%d", s.Start.Unix(), s.Sessions, latest)
}

// DigestRepository stores one digest per user per day.
type DigestRepository interface {
	// Save inserts or replaces the digest for its user and day.
	Save(ctx context.Context, digest *DailyDigest) error

	// FindByUserAndDay returns nil, nil when no digest exists.
	FindByUserAndDay(ctx context.Context, userID uuid.UUID, day string) (*DailyDigest, error)
}

// AggregateCache caches derived views keyed by user and day. Every entry is
// stored with the WindowStamp it was computed under; a Get with a different
// stamp is a miss, so entries written before a session was added by any
// process are never served.
type AggregateCache interface {
	GetAggregate(ctx context.Context, userID uuid.UUID, day, stamp string) (*DailyAggregate, bool, error)
	SetAggregate(ctx context.Context, agg *DailyAggregate, day, stamp string) error
	GetAdvice(ctx context.Context, userID uuid.UUID, day, stamp string) ([]AdviceCard, bool, error)
	SetAdvice(ctx context.Context, userID uuid.UUID, day, stamp string, cards []AdviceCard) error

	// Invalidate drops the cached views for one day, or for every day when day is empty.
	Invalidate(ctx context.Context, userID uuid.UUID, day string) error
}
