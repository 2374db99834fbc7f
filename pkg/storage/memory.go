package storage

import (
	"context"
	"sync"
	"time"

	"rdt_go/models"
)

// MemoryStore — хранилище ботов в памяти с той же семантикой, что и DB.
// Используется в тестах и при db.driver=memory.
type MemoryStore struct {
	mu     sync.Mutex
	rows   map[string]models.BotSession
	nextID int64
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]models.BotSession), now: time.Now}
}

// Put кладёт строку как есть, назначая ID при необходимости. Удобно для подготовки данных.
func (m *MemoryStore) Put(s models.BotSession) models.BotSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == 0 {
		m.nextID++
		s.ID = m.nextID
	} else if s.ID > m.nextID {
		m.nextID = s.ID
	}
	m.rows[s.UserName] = s
	return s
}

func (m *MemoryStore) FindByID(_ context.Context, id int64) (*models.BotSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.rows {
		if s.ID == id {
			row := s
			return &row, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) FindByUserName(_ context.Context, name string) (*models.BotSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[name]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) Exists(_ context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[name]
	return ok, nil
}

func (m *MemoryStore) Update(_ context.Context, name, hash, cookie, data string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[name]
	if !ok {
		return 0, nil
	}
	s.SessionHash, s.SessionCookie, s.Data = hash, cookie, data
	s.LastUpdated = m.now()
	m.rows[name] = s
	return 1, nil
}

func (m *MemoryStore) Insert(_ context.Context, name, password, hash, cookie string, enabled bool) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[name]; ok {
		return 0, ErrExists
	}
	m.nextID++
	now := m.now()
	m.rows[name] = models.BotSession{
		ID:            m.nextID,
		UserName:      name,
		Password:      password,
		SessionHash:   hash,
		SessionCookie: cookie,
		Enabled:       enabled,
		CreatedAt:     now,
		LastUpdated:   now,
	}
	return 1, nil
}

func (m *MemoryStore) SetCallback(_ context.Context, name, callback string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[name]
	if !ok {
		return ErrNotFound
	}
	s.Callback = callback
	m.rows[name] = s
	return nil
}

func (m *MemoryStore) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows), nil
}
