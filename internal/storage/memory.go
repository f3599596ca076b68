package storage

import (
	"context"
	"sync"
	"time"

	"github.com/xaenox/osint-chat/internal/models"
)

type memoryEntry struct {
	context   models.ConversationContext
	updatedAt time.Time
}

type MemoryStorage struct {
	mu    sync.RWMutex
	items map[string]memoryEntry
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryStorage keeps contexts in process. Entries older than ttl are
// treated as missing; a zero ttl keeps them forever.
func NewMemoryStorage(ttl time.Duration) *MemoryStorage {
	return &MemoryStorage{
		items: make(map[string]memoryEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *MemoryStorage) LoadContext(ctx context.Context, conversationID string) (models.ConversationContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.items[conversationID]
	if !exists || s.expired(entry) {
		return models.ConversationContext{}, nil
	}
	return entry.context, nil
}

func (s *MemoryStorage) SaveContext(ctx context.Context, conversationID string, cc models.ConversationContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[conversationID] = memoryEntry{context: cc, updatedAt: s.now()}
	s.evictExpired()
	return nil
}

func (s *MemoryStorage) DeleteContext(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, conversationID)
	return nil
}

func (s *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}

func (s *MemoryStorage) expired(e memoryEntry) bool {
	return s.ttl > 0 && s.now().Sub(e.updatedAt) > s.ttl
}

// evictExpired must be called with mu held for writing.
func (s *MemoryStorage) evictExpired() {
	if s.ttl <= 0 {
		return
	}
	for id, e := range s.items {
		if s.expired(e) {
			delete(s.items, id)
		}
	}
}
