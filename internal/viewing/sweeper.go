package viewing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

type SweeperConfig struct {
	Store Store
	Clock Clock
	// Location must match the one sessions are stamped with.
	Location *time.Location
	// RetentionWindow is how long a round rated 1 is kept.
	RetentionWindow time.Duration
	Observer        Observer
}

// Sweeper deletes rounds that the retention rules no longer keep. Both sweeps
// are idempotent and safe to run concurrently with each other and with the
// workflow.
type Sweeper struct {
	store    Store
	clock    Clock
	location *time.Location
	window   time.Duration
	observer Observer
}

func NewSweeper(cfg *SweeperConfig) *Sweeper {
	s := &Sweeper{
		store:    cfg.Store,
		clock:    cfg.Clock,
		location: cfg.Location,
		window:   cfg.RetentionWindow,
		observer: cfg.Observer,
	}
	if s.clock == nil {
		s.clock = systemClock{}
	}
	if s.location == nil {
		s.location = time.UTC
	}
	if s.observer == nil {
		s.observer = nopObserver{}
	}
	return s
}

// Cutoff is the newest created date an expired round can have.
func (s *Sweeper) Cutoff() time.Time {
	return s.clock.Now().In(s.location).Add(-s.window)
}

// PurgeExpired deletes rounds rated 1 whose created date is at or before the cutoff.
func (s *Sweeper) PurgeExpired(ctx context.Context) (int64, error) {
	if s.window <= 0 {
		return 0, errors.New("retention window is not configured")
	}
	cutoff := s.Cutoff()
	deleted, err := s.store.DeleteWhere(ctx, Criteria{
		Rating:            intPtr(lowRating),
		CreatedAtOrBefore: cutoff,
	})
	if err != nil {
		return 0, fmt.Errorf("purge expired sessions: %w", err)
	}
	s.observer.SessionsSwept(SweepExpired, deleted)
	if deleted > 0 {
		slog.Info("expired sessions purged", "count", deleted, "cutoff", cutoff)
	}
	return deleted, nil
}

// PurgeIncomplete deletes rounds that never received a guess.
func (s *Sweeper) PurgeIncomplete(ctx context.Context) (int64, error) {
	deleted, err := s.store.DeleteWhere(ctx, Criteria{MissingGuess: true})
	if err != nil {
		return 0, fmt.Errorf("purge incomplete sessions: %w", err)
	}
	s.observer.SessionsSwept(SweepIncomplete, deleted)
	if deleted > 0 {
		slog.Info("incomplete sessions purged", "count", deleted)
	}
	return deleted, nil
}
