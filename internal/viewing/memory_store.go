package viewing

import (
	"cmp"
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore keeps sessions in process memory. It is used when no database
// is configured and by tests.
type MemoryStore struct {
	mu       sync.Mutex
	nextID   uint
	sessions map[uint]Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:   1,
		sessions: make(map[uint]Session),
	}
}

func (m *MemoryStore) Create(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.sessions {
		if existing.UniqueIdentifier == s.UniqueIdentifier {
			return ErrDuplicateIdentifier
		}
	}
	s.ID = m.nextID
	m.nextID++
	m.sessions[s.ID] = s.clone()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id uint) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	out := s.clone()
	return &out, nil
}

func (m *MemoryStore) FindByUniqueIdentifier(_ context.Context, code string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.UniqueIdentifier == code {
			out := s.clone()
			return &out, nil
		}
	}
	return nil, ErrSessionNotFound
}

func (m *MemoryStore) FindLatestByName(_ context.Context, name string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *Session
	for _, s := range m.sessions {
		if s.Name != name {
			continue
		}
		if latest == nil || s.CreatedDate.After(latest.CreatedDate) ||
			(s.CreatedDate.Equal(latest.CreatedDate) && s.ID > latest.ID) {
			candidate := s.clone()
			latest = &candidate
		}
	}
	if latest == nil {
		return nil, ErrSessionNotFound
	}
	return latest, nil
}

func (m *MemoryStore) DeleteWhere(_ context.Context, c Criteria) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	for id, s := range m.sessions {
		if c.Matches(s) {
			delete(m.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *MemoryStore) Update(_ context.Context, id uint, changes Changes) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	changes.apply(&s)
	m.sessions[id] = s
	return nil
}

func (m *MemoryStore) List(_ context.Context, field SortField, dir Direction) ([]Session, error) {
	field, dir = NormalizeSort(string(field), string(dir))
	m.mu.Lock()
	list := make([]Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		list = append(list, s.clone())
	}
	m.mu.Unlock()

	sort.Slice(list, func(i, j int) bool {
		order := compareSessions(list[i], list[j], field)
		if order == 0 {
			order = cmp.Compare(list[i].ID, list[j].ID)
		}
		if dir == Descending {
			return order > 0
		}
		return order < 0
	})
	return list, nil
}

// compareSessions orders nil values after every value, matching postgres.
func compareSessions(a, b Session, field SortField) int {
	switch field {
	case SortByName:
		return strings.Compare(a.Name, b.Name)
	case SortByUniqueIdentifier:
		return strings.Compare(a.UniqueIdentifier, b.UniqueIdentifier)
	case SortByUserGuess:
		switch {
		case a.UserGuess == nil && b.UserGuess == nil:
			return 0
		case a.UserGuess == nil:
			return 1
		case b.UserGuess == nil:
			return -1
		}
		return strings.Compare(*a.UserGuess, *b.UserGuess)
	case SortByRating:
		switch {
		case a.Rating == nil && b.Rating == nil:
			return 0
		case a.Rating == nil:
			return 1
		case b.Rating == nil:
			return -1
		}
		return cmp.Compare(*a.Rating, *b.Rating)
	default:
		return a.CreatedDate.Compare(b.CreatedDate)
	}
}
