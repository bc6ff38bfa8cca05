package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"remote-viewing/internal/db"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	sessionCookie    = "rv_session"
	cookieWrittenKey = "rv_session_cookie_written"
)

// sessionData is what a visitor's cookie points at. CurrentID is the active
// round; zero means none.
type sessionData struct {
	CurrentID uint   `json:"current_id"`
	Flash     string `json:"flash,omitempty"`
	FlashKind string `json:"flash_kind,omitempty"`
	Name      string `json:"name,omitempty"`
}

// SessionBackend persists web session data by cookie id. Unknown or expired
// ids load as the zero value. Prune drops expired entries and reports how many
// were removed.
type SessionBackend interface {
	Load(ctx context.Context, id string) (sessionData, error)
	Save(ctx context.Context, id string, data sessionData) error
	Prune(ctx context.Context) (int64, error)
}

type sessionStore struct {
	backend  SessionBackend
	lifetime time.Duration
	secure   bool
}

func newSessionStore(backend SessionBackend, lifetime time.Duration, secure bool) *sessionStore {
	if backend == nil {
		backend = NewMemorySessions(lifetime)
	}
	return &sessionStore{
		backend:  backend,
		lifetime: lifetime,
		secure:   secure,
	}
}

func (s *sessionStore) load(c *gin.Context) (string, sessionData) {
	id := s.ensureSessionID(c)
	data, err := s.backend.Load(c.Request.Context(), id)
	if err != nil {
		slog.Error("web session load failed", "error", err)
		return id, sessionData{}
	}
	return id, data
}

func (s *sessionStore) update(c *gin.Context, mutate func(*sessionData)) {
	id, data := s.load(c)
	mutate(&data)
	s.save(c, id, data)
}

// save stores data and refreshes the cookie so it expires with the backend entry.
func (s *sessionStore) save(c *gin.Context, id string, data sessionData) {
	if err := s.backend.Save(c.Request.Context(), id, data); err != nil {
		slog.Error("web session save failed", "error", err)
		return
	}
	s.writeCookie(c, id)
}

func (s *sessionStore) SetFlash(c *gin.Context, kind, message string) {
	if message == "" {
		return
	}
	s.update(c, func(data *sessionData) {
		data.Flash = message
		data.FlashKind = kind
	})
}

func (s *sessionStore) PopFlash(c *gin.Context) (string, string) {
	id, data := s.load(c)
	if data.Flash == "" {
		return "", ""
	}
	kind, message := data.FlashKind, data.Flash
	data.Flash = ""
	data.FlashKind = ""
	s.save(c, id, data)
	return kind, message
}

// SetCurrent points the visitor at round id and remembers their name.
func (s *sessionStore) SetCurrent(c *gin.Context, id uint, name string) {
	s.update(c, func(data *sessionData) {
		data.CurrentID = id
		if name != "" {
			data.Name = name
		}
	})
}

func (s *sessionStore) ClearCurrent(c *gin.Context) {
	s.update(c, func(data *sessionData) {
		data.CurrentID = 0
	})
}

func (s *sessionStore) Current(c *gin.Context) (uint, string) {
	_, data := s.load(c)
	return data.CurrentID, data.Name
}

func (s *sessionStore) ensureSessionID(c *gin.Context) string {
	if id, ok := c.Get(sessionCookie); ok {
		return id.(string)
	}
	if cookie, err := c.Request.Cookie(sessionCookie); err == nil {
		if _, err := uuid.Parse(cookie.Value); err == nil {
			c.Set(sessionCookie, cookie.Value)
			return cookie.Value
		}
	}
	id := uuid.NewString()
	c.Set(sessionCookie, id)
	s.writeCookie(c, id)
	return id
}

func (s *sessionStore) writeCookie(c *gin.Context, id string) {
	if c.GetBool(cookieWrittenKey) {
		return
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.lifetime / time.Second),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	c.Set(cookieWrittenKey, true)
}

type memorySessions struct {
	mu       sync.Mutex
	lifetime time.Duration
	now      func() time.Time
	sessions map[string]memoryEntry
}

type memoryEntry struct {
	data      sessionData
	updatedAt time.Time
}

func NewMemorySessions(lifetime time.Duration) SessionBackend {
	return &memorySessions{
		lifetime: lifetime,
		now:      time.Now,
		sessions: make(map[string]memoryEntry),
	}
}

func (m *memorySessions) Load(_ context.Context, id string) (sessionData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.sessions[id]
	if !ok {
		return sessionData{}, nil
	}
	if m.lifetime > 0 && m.now().Sub(entry.updatedAt) > m.lifetime {
		delete(m.sessions, id)
		return sessionData{}, nil
	}
	return entry.data, nil
}

func (m *memorySessions) Save(_ context.Context, id string, data sessionData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = memoryEntry{data: data, updatedAt: m.now()}
	return nil
}

func (m *memorySessions) Prune(context.Context) (int64, error) {
	if m.lifetime <= 0 {
		return 0, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	var pruned int64
	for id, entry := range m.sessions {
		if now.Sub(entry.updatedAt) > m.lifetime {
			delete(m.sessions, id)
			pruned++
		}
	}
	return pruned, nil
}

type gormSessions struct {
	db       *gorm.DB
	lifetime time.Duration
	now      func() time.Time
}

func NewGormSessions(conn *gorm.DB, lifetime time.Duration) SessionBackend {
	return &gormSessions{db: conn, lifetime: lifetime, now: time.Now}
}

func (g *gormSessions) Load(ctx context.Context, id string) (sessionData, error) {
	var record db.WebSession
	err := g.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sessionData{}, nil
	}
	if err != nil {
		return sessionData{}, fmt.Errorf("load web session: %w", err)
	}
	if g.lifetime > 0 && g.now().Sub(record.UpdatedAt) > g.lifetime {
		return sessionData{}, nil
	}
	return sessionData{
		CurrentID: record.CurrentID,
		Flash:     record.Flash,
		FlashKind: record.FlashKind,
		Name:      record.Name,
	}, nil
}

func (g *gormSessions) Save(ctx context.Context, id string, data sessionData) error {
	now := g.now().UTC()
	record := db.WebSession{
		ID:        id,
		CurrentID: data.CurrentID,
		Flash:     data.Flash,
		FlashKind: data.FlashKind,
		Name:      data.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"current_id", "flash", "flash_kind", "name", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("save web session: %w", err)
	}
	return nil
}

func (g *gormSessions) Prune(ctx context.Context) (int64, error) {
	if g.lifetime <= 0 {
		return 0, nil
	}
	cutoff := g.now().UTC().Add(-g.lifetime)
	result := g.db.WithContext(ctx).Where("updated_at < ?", cutoff).Delete(&db.WebSession{})
	if result.Error != nil {
		return 0, fmt.Errorf("prune web sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}

const redisSessionPrefix = "rv:web_session:"

type redisSessions struct {
	client   *redis.Client
	lifetime time.Duration
}

func NewRedisSessions(client *redis.Client, lifetime time.Duration) SessionBackend {
	return &redisSessions{client: client, lifetime: lifetime}
}

func (r *redisSessions) Load(ctx context.Context, id string) (sessionData, error) {
	raw, err := r.client.Get(ctx, redisSessionPrefix+id).Result()
	if err != nil {
		if err == redis.Nil {
			return sessionData{}, nil
		}
		return sessionData{}, fmt.Errorf("failed to get web session: %w", err)
	}
	var data sessionData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return sessionData{}, fmt.Errorf("failed to unmarshal web session: %w", err)
	}
	return data, nil
}

func (r *redisSessions) Save(ctx context.Context, id string, data sessionData) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal web session: %w", err)
	}
	if err := r.client.Set(ctx, redisSessionPrefix+id, payload, r.lifetime).Err(); err != nil {
		return fmt.Errorf("failed to save web session: %w", err)
	}
	return nil
}

// Prune is a no-op: redis expires keys on its own TTL.
func (r *redisSessions) Prune(context.Context) (int64, error) {
	return 0, nil
}
