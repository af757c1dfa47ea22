package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"falim/pkg/domain"
)

// MemoryStore is an in-memory Store used by tests and local development.
type MemoryStore struct {
	mu         sync.RWMutex
	users      map[string]domain.User
	readings   map[string]domain.Reading
	horoscopes map[string]domain.DailyHoroscope
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[string]domain.User),
		readings:   make(map[string]domain.Reading),
		horoscopes: make(map[string]domain.DailyHoroscope),
	}
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) SaveUser(u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return nil
}

func (s *MemoryStore) HasUserEmail(email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, true, nil
		}
	}
	return domain.User{}, false, nil
}

func (s *MemoryStore) GetUserByID(id string) (domain.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok, nil
}

func (s *MemoryStore) GetUserByVerificationToken(token string) (domain.User, bool, error) {
	if token == "" {
		return domain.User{}, false, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.VerificationToken == token {
			return u, true, nil
		}
	}
	return domain.User{}, false, nil
}

func (s *MemoryStore) SaveReading(r domain.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings[r.ID] = r
	return nil
}

func (s *MemoryStore) GetReading(id string) (domain.Reading, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.readings[id]
	return r, ok, nil
}

func (s *MemoryStore) ListReadingsBySession(userID, sessionID string, readingType domain.ReadingType) ([]domain.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []domain.Reading
	for _, r := range s.readings {
		if r.UserID != userID || r.SessionID != sessionID {
			continue
		}
		if readingType != "" && r.Type != readingType {
			continue
		}
		res = append(res, r)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Timestamp.After(res[j].Timestamp)
	})
	return res, nil
}

func (s *MemoryStore) PutDailyHoroscope(h domain.DailyHoroscope) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := h.Sign + "|" + h.Date + "|" + h.Language
	if _, ok := s.horoscopes[key]; ok {
		return false, nil
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}
	s.horoscopes[key] = h
	return true, nil
}

func (s *MemoryStore) GetDailyHoroscope(sign, date, language string) (domain.DailyHoroscope, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.horoscopes[sign+"|"+date+"|"+language]
	return h, ok, nil
}

func (s *MemoryStore) ListDailyHoroscopes(sign, language string, limit int) ([]domain.DailyHoroscope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []domain.DailyHoroscope
	for _, h := range s.horoscopes {
		if h.Sign == sign && h.Language == language {
			res = append(res, h)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Date > res[j].Date
	})
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}
