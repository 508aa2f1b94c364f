// Package scheduler runs the daily digest on an interval.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/behaviortracker/internal/behavior/application/commands"
)

// DigestRunner is the part of the behavior service the scheduler drives.
type DigestRunner interface {
	ExecuteDigest(ctx context.Context, cmd commands.RunDigestCommand) (*commands.RunDigestResult, error)
}

// Config holds configuration for the digest scheduler.
type Config struct {
	Interval time.Duration
	// RunOnStart digests immediately instead of waiting one interval.
	RunOnStart bool
}

// Stats describes the scheduler's recent work.
type Stats struct {
	IsRunning     bool      `json:"running"`
	Runs          int64     `json:"runs"`
	LastDay       string    `json:"last_day,omitempty"`
	LastRunAt     time.Time `json:"last_run_at,omitempty"`
	LastDigested  int       `json:"last_digested"`
	LastFailures  int       `json:"last_failures"`
	LastPending   int       `json:"last_pending"`
	LastErrorAt   time.Time `json:"last_error_at,omitempty"`
	LastError     string    `json:"last_error,omitempty"`
	completedDays map[string]bool
}

// DigestScheduler digests the previous day for every user. Users whose day
// is still open in their time zone are retried on later ticks, and users
// already digested are skipped. A day is complete once a run leaves nobody
// failed or pending.
type DigestScheduler struct {
	runner DigestRunner
	config Config
	logger *slog.Logger
	now    func() time.Time

	wg       sync.WaitGroup
	stopChan chan struct{}
	running  bool
	mu       sync.Mutex

	statsMu sync.Mutex
	stats   Stats
	// digested holds the users finished for digestedDay.
	digestedDay string
	digested    map[uuid.UUID]bool
}

// NewDigestScheduler creates a scheduler. A non-positive interval means hourly.
func NewDigestScheduler(runner DigestRunner, config Config, logger *slog.Logger) *DigestScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Interval <= 0 {
		config.Interval = time.Hour
	}
	return &DigestScheduler{
		runner:   runner,
		config:   config,
		logger:   logger,
		now:      time.Now,
		stopChan: make(chan struct{}),
		stats:    Stats{completedDays: make(map[string]bool)},
	}
}

// Start begins the loop in a goroutine.
func (s *DigestScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("digest scheduler started", "interval", s.config.Interval)
}

// Stop waits for the loop to exit.
func (s *DigestScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopChan)
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("digest scheduler stopped")
}

// IsRunning returns true if the loop is running.
func (s *DigestScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *DigestScheduler) run(ctx context.Context) {
	defer s.wg.Done()

	if s.config.RunOnStart {
		s.tick(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *DigestScheduler) tick(ctx context.Context) {
	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.Error("digest run failed", "error", err)
	}
}

// RunOnce digests yesterday unless it already completed. It reports whether
// a run happened.
func (s *DigestScheduler) RunOnce(ctx context.Context) (bool, error) {
	now := s.now()
	day := previousDay(now)
	label := day.Format(time.DateOnly)

	s.statsMu.Lock()
	done := s.stats.completedDays[label]
	skip := s.finishedUsers(label)
	s.statsMu.Unlock()
	if done {
		return false, nil
	}

	result, err := s.runner.ExecuteDigest(ctx, commands.RunDigestCommand{Day: day, Now: now, Skip: skip})
	if err != nil {
		s.recordError(err)
		return true, err
	}
	s.recordRun(label, result)

	s.logger.Info("digest run completed",
		"day", label,
		"digested", len(result.Digests),
		"failures", len(result.Failures),
		"pending", len(result.Pending),
	)
	return true, nil
}

// Stats returns a snapshot of the scheduler's stats.
func (s *DigestScheduler) Stats() Stats {
	s.statsMu.Lock()
	out := s.stats
	s.statsMu.Unlock()
	out.completedDays = nil
	out.IsRunning = s.IsRunning()
	return out
}

func (s *DigestScheduler) recordRun(day string, result *commands.RunDigestResult) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	s.stats.Runs++
	s.stats.LastDay = day
	s.stats.LastRunAt = s.now()
	s.stats.LastDigested = len(result.Digests)
	s.stats.LastFailures = len(result.Failures)
	s.stats.LastPending = len(result.Pending)

	if s.digestedDay != day {
		s.digestedDay, s.digested = day, make(map[uuid.UUID]bool)
	}
	for _, d := range result.Digests {
		s.digested[d.UserID] = true
	}
	if len(result.Failures) == 0 && len(result.Pending) == 0 {
		s.stats.completedDays = map[string]bool{day: true}
		s.digestedDay, s.digested = "", nil
	}
}

// finishedUsers returns the users already digested for day. statsMu must be held.
func (s *DigestScheduler) finishedUsers(day string) []uuid.UUID {
	if s.digestedDay != day {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(s.digested))
	for id := range s.digested {
		ids = append(ids, id)
	}
	return ids
}

func (s *DigestScheduler) recordError(err error) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	s.stats.LastErrorAt = s.now()
	s.stats.LastError = err.Error()
}

// previousDay is the calendar date before now, at UTC midnight. Users'
// own time zones are applied when their windows are built; west of UTC that
// day ends during the current UTC day, so those users start out pending.
func previousDay(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
}
