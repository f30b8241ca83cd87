package store

import (
	"context"
	"sync"

	"github.com/vishalsinha2004/Indora-Customer/internal/models"
)

// SessionRecord is the durable slice of a booking session: enough to
// resume polling after a restart, deliberately not enough to reconstruct
// pickup/dropoff. Values are plain strings on disk, no schema version.
type SessionRecord struct {
	Phase   models.Phase `json:"phase"`
	OrderID string       `json:"order_id"`
}

// Store is the narrow persistence contract. Components never read the
// backing storage directly; the machine externalizes through this
// interface and restores once at startup.
type Store interface {
	LoadSession(ctx context.Context) (SessionRecord, bool, error)
	SaveSession(ctx context.Context, rec SessionRecord) error
	ClearSession(ctx context.Context) error

	LoadToken(ctx context.Context) (string, error)
	SaveToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// MemoryStore keeps everything in-process. Used in tests and as the
// fallback when neither redis nor a state file is configured.
type MemoryStore struct {
	mu     sync.RWMutex
	rec    SessionRecord
	hasRec bool
	token  string
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) LoadSession(ctx context.Context) (SessionRecord, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rec, m.hasRec, nil
}

func (m *MemoryStore) SaveSession(ctx context.Context, rec SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = rec
	m.hasRec = true
	return nil
}

func (m *MemoryStore) ClearSession(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rec = SessionRecord{}
	m.hasRec = false
	return nil
}

func (m *MemoryStore) LoadToken(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

func (m *MemoryStore) SaveToken(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStore) ClearToken(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
