package viewing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ImageSource returns the URL of a random image to hide behind a new round.
type ImageSource interface {
	FetchRandomImage(ctx context.Context) (string, error)
}

// EmptyGuessPolicy decides what SubmitGuess does with a blank guess.
type EmptyGuessPolicy string

const (
	// RejectEmptyGuess keeps the round and asks for a guess again.
	RejectEmptyGuess EmptyGuessPolicy = "reject"
	// DiscardEmptyGuess treats a blank guess as abandonment and deletes the round.
	DiscardEmptyGuess EmptyGuessPolicy = "discard"
)

type Config struct {
	Store            Store
	Images           ImageSource
	Allocator        *Allocator
	Sweeper          *Sweeper
	Clock            Clock
	Location         *time.Location
	EmptyGuessPolicy EmptyGuessPolicy
	Observer         Observer
}

// Manager runs the round workflow: start, guess, reveal, rate. The caller owns
// the active-session pointer and passes it in on every call.
type Manager struct {
	store     Store
	images    ImageSource
	allocator *Allocator
	sweeper   *Sweeper
	clock     Clock
	location  *time.Location
	policy    EmptyGuessPolicy
	observer  Observer
}

func NewManager(cfg *Config) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Store == nil {
		return nil, errors.New("store cannot be nil")
	}
	if cfg.Images == nil {
		return nil, errors.New("image source cannot be nil")
	}
	m := &Manager{
		store:     cfg.Store,
		images:    cfg.Images,
		allocator: cfg.Allocator,
		sweeper:   cfg.Sweeper,
		clock:     cfg.Clock,
		location:  cfg.Location,
		policy:    cfg.EmptyGuessPolicy,
		observer:  cfg.Observer,
	}
	if m.allocator == nil {
		m.allocator = NewAllocator(cfg.Store, AllocatorConfig{})
	}
	if m.clock == nil {
		m.clock = systemClock{}
	}
	if m.location == nil {
		m.location = time.UTC
	}
	if m.observer == nil {
		m.observer = nopObserver{}
	}
	if m.sweeper == nil {
		m.sweeper = NewSweeper(&SweeperConfig{
			Store:    cfg.Store,
			Clock:    m.clock,
			Location: m.location,
			Observer: m.observer,
		})
	}
	switch m.policy {
	case "":
		m.policy = RejectEmptyGuess
	case RejectEmptyGuess, DiscardEmptyGuess:
	default:
		return nil, fmt.Errorf("unknown empty guess policy %q", m.policy)
	}
	return m, nil
}

type StartInput struct {
	Name string
}

type StartOutput struct {
	SessionID        uint
	UniqueIdentifier string
	ImageURL         string
}

// Start creates a round for name behind a freshly fetched image. Nothing is
// stored when the image source fails.
func (m *Manager) Start(ctx context.Context, input StartInput) (*StartOutput, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	imageURL, err := m.images.FetchRandomImage(ctx)
	if err == nil && strings.TrimSpace(imageURL) == "" {
		err = errors.New("image source returned an empty url")
	}
	if err != nil {
		m.observer.ImageUnavailable()
		slog.Warn("image fetch failed", "name", name, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrImageUnavailable, err)
	}
	code, err := m.allocator.Allocate(ctx)
	if err != nil {
		return nil, err
	}
	session := &Session{
		ImageURL:         imageURL,
		Name:             name,
		UniqueIdentifier: code,
		CreatedDate:      m.now(),
	}
	if err := m.store.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	m.observer.SessionStarted()
	slog.Info("session started", "session_id", session.ID, "unique_identifier", code)
	return &StartOutput{
		SessionID:        session.ID,
		UniqueIdentifier: code,
		ImageURL:         imageURL,
	}, nil
}

type SubmitGuessInput struct {
	// ActiveID is the caller's active-session pointer; zero when it was lost.
	ActiveID uint
	// Name locates the player's latest round when ActiveID does not resolve.
	Name  string
	Guess string
}

type SubmitGuessOutput struct {
	// SessionID is the round the guess resolved to. It differs from ActiveID
	// when the name fallback was used, and callers should repoint to it.
	SessionID uint
	Guess     string
}

func (m *Manager) SubmitGuess(ctx context.Context, input SubmitGuessInput) (*SubmitGuessOutput, error) {
	session, err := m.resolveActive(ctx, input.ActiveID, input.Name)
	if err != nil {
		return nil, err
	}
	if session.HasGuess() {
		return &SubmitGuessOutput{SessionID: session.ID, Guess: *session.UserGuess}, ErrGuessAlreadySubmitted
	}
	guess := strings.TrimSpace(input.Guess)
	if guess == "" {
		if m.policy == DiscardEmptyGuess {
			// Only a round still missing its guess counts as abandoned.
			deleted, err := m.store.DeleteWhere(ctx, Criteria{ID: session.ID, MissingGuess: true})
			if err != nil {
				return nil, fmt.Errorf("discard session: %w", err)
			}
			if deleted == 0 {
				return &SubmitGuessOutput{SessionID: session.ID}, ErrGuessAlreadySubmitted
			}
			m.observer.SessionsSwept(SweepAbandoned, deleted)
			slog.Info("session abandoned with empty guess", "session_id", session.ID)
			return &SubmitGuessOutput{SessionID: session.ID}, ErrGuessAbandoned
		}
		return &SubmitGuessOutput{SessionID: session.ID}, ErrGuessRequired
	}
	if err := m.store.Update(ctx, session.ID, Changes{UserGuess: &guess}); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrNoActiveSession
		}
		return nil, fmt.Errorf("save guess: %w", err)
	}
	m.observer.GuessSubmitted()
	slog.Info("guess submitted", "session_id", session.ID)
	return &SubmitGuessOutput{SessionID: session.ID, Guess: guess}, nil
}

func (m *Manager) resolveActive(ctx context.Context, activeID uint, name string) (*Session, error) {
	if activeID != 0 {
		session, err := m.store.Get(ctx, activeID)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNoActiveSession
	}
	session, err := m.store.FindLatestByName(ctx, name)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, ErrNoActiveSession
	}
	if err != nil {
		return nil, err
	}
	slog.Debug("active session resolved by name", "name", name, "session_id", session.ID)
	return session, nil
}

type RevealOutput struct {
	SessionID        uint
	Name             string
	UniqueIdentifier string
	ImageURL         string
	UserGuess        *string
	Rating           *int
}

func (m *Manager) Reveal(ctx context.Context, activeID uint) (*RevealOutput, error) {
	session, err := m.store.Get(ctx, activeID)
	if err != nil {
		return nil, err
	}
	return &RevealOutput{
		SessionID:        session.ID,
		Name:             session.Name,
		UniqueIdentifier: session.UniqueIdentifier,
		ImageURL:         session.ImageURL,
		UserGuess:        session.UserGuess,
		Rating:           session.Rating,
	}, nil
}

// Rate records the rating for the caller's active round.
func (m *Manager) Rate(ctx context.Context, activeID uint, rating int) error {
	return m.setRating(ctx, activeID, rating)
}

// UpdateRating overwrites the rating of any round addressed by id.
func (m *Manager) UpdateRating(ctx context.Context, id uint, rating int) error {
	return m.setRating(ctx, id, rating)
}

func (m *Manager) setRating(ctx context.Context, id uint, rating int) error {
	if rating < MinRating || rating > MaxRating {
		return ErrInvalidRating
	}
	if id == 0 {
		return ErrSessionNotFound
	}
	if err := m.store.Update(ctx, id, Changes{Rating: &rating}); err != nil {
		return err
	}
	m.observer.Rated()
	slog.Info("session rated", "session_id", id, "rating", rating)
	return nil
}

// Lookup returns a single round for the results detail view.
func (m *Manager) Lookup(ctx context.Context, id uint) (*Session, error) {
	return m.store.Get(ctx, id)
}

// Landing runs the housekeeping attached to the landing page.
func (m *Manager) Landing(ctx context.Context) error {
	_, err := m.sweeper.PurgeIncomplete(ctx)
	return err
}

type ListInput struct {
	SortBy    string
	Direction string
}

type ListOutput struct {
	Sessions  []Session
	SortBy    SortField
	Direction Direction
}

// Results drops unfinished rounds and lists the rest in the requested order.
func (m *Manager) Results(ctx context.Context, input ListInput) (*ListOutput, error) {
	field, dir := NormalizeSort(input.SortBy, input.Direction)
	if _, err := m.sweeper.PurgeIncomplete(ctx); err != nil {
		return nil, err
	}
	sessions, err := m.store.List(ctx, field, dir)
	if err != nil {
		return nil, err
	}
	return &ListOutput{
		Sessions:  sessions,
		SortBy:    field,
		Direction: dir,
	}, nil
}

func (m *Manager) now() time.Time {
	return m.clock.Now().In(m.location)
}
