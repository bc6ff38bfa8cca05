package viewing

import (
	"context"
	"strings"
	"time"
)

// Store is the durable collection of sessions. Implementations must serialize
// conflicting writes to a record so the last write wins without mixing fields.
type Store interface {
	// Create inserts s and assigns s.ID. A taken UniqueIdentifier yields
	// ErrDuplicateIdentifier.
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id uint) (*Session, error)
	FindByUniqueIdentifier(ctx context.Context, code string) (*Session, error)
	// FindLatestByName returns the newest session created under name.
	FindLatestByName(ctx context.Context, name string) (*Session, error)
	// DeleteWhere removes every session matching c in one batch and returns the count.
	DeleteWhere(ctx context.Context, c Criteria) (int64, error)
	Update(ctx context.Context, id uint, changes Changes) error
	List(ctx context.Context, field SortField, dir Direction) ([]Session, error)
}

// Criteria is a conjunction of the clauses that are set. An empty Criteria
// matches nothing.
type Criteria struct {
	ID                uint
	Rating            *int
	CreatedAtOrBefore time.Time
	MissingGuess      bool
}

func (c Criteria) IsEmpty() bool {
	return c.ID == 0 && c.Rating == nil && c.CreatedAtOrBefore.IsZero() && !c.MissingGuess
}

func (c Criteria) Matches(s Session) bool {
	if c.IsEmpty() {
		return false
	}
	if c.ID != 0 && s.ID != c.ID {
		return false
	}
	if c.Rating != nil && (s.Rating == nil || *s.Rating != *c.Rating) {
		return false
	}
	if !c.CreatedAtOrBefore.IsZero() && s.CreatedDate.After(c.CreatedAtOrBefore) {
		return false
	}
	if c.MissingGuess && s.UserGuess != nil && strings.TrimSpace(*s.UserGuess) != "" {
		return false
	}
	return true
}

// Changes lists the mutable fields to overwrite. Nil fields are left alone.
type Changes struct {
	UserGuess *string
	Rating    *int
}

func (c Changes) apply(s *Session) {
	if c.UserGuess != nil {
		s.UserGuess = stringPtr(*c.UserGuess)
	}
	if c.Rating != nil {
		s.Rating = intPtr(*c.Rating)
	}
}
