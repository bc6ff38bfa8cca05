package viewing

import (
	"context"
	"sync"
	"testing"
	"time"

	"remote-viewing/internal/db"

	"github.com/stretchr/testify/require"
)

var testZone = time.FixedZone("UTC+5", 5*60*60)

type stubImages struct {
	mu    sync.Mutex
	url   string
	err   error
	calls int
}

func (s *stubImages) FetchRandomImage(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

type countingObserver struct {
	mu       sync.Mutex
	started  int
	guessed  int
	rated    int
	failures int
	swept    map[string]int64
}

func newCountingObserver() *countingObserver {
	return &countingObserver{swept: make(map[string]int64)}
}

func (o *countingObserver) SessionStarted() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started++
}

func (o *countingObserver) GuessSubmitted() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.guessed++
}

func (o *countingObserver) Rated() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rated++
}

func (o *countingObserver) ImageUnavailable() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures++
}

func (o *countingObserver) SessionsSwept(reason string, count int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.swept[reason] += count
}

func newGormTestStore(t *testing.T) *GormStore {
	t.Helper()
	conn, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewGormStore(conn, testZone)
}

func storeFactories() map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore() },
		"gorm":   func(t *testing.T) Store { return newGormTestStore(t) },
	}
}

func seedSession(t *testing.T, store Store, name, code string, created time.Time, guess *string, rating *int) *Session {
	t.Helper()
	s := &Session{
		ImageURL:         "https://images.example/" + code + ".jpg",
		Name:             name,
		UniqueIdentifier: code,
		UserGuess:        guess,
		Rating:           rating,
		CreatedDate:      created,
	}
	require.NoError(t, store.Create(context.Background(), s))
	require.NotZero(t, s.ID)
	return s
}
