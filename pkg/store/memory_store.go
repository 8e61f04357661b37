package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"genai-chatbot-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const DriverMemory = "memory"

// MemoryStore keeps turns in process memory, one cache entry per session.
// Entries expire ttl after the last append; a zero ttl never expires them.
type MemoryStore struct {
	mu    sync.Mutex
	cache *cache.Cache
}

var _ ContextStore = (*MemoryStore)(nil)

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	var c *cache.Cache
	if ttl > 0 {
		c = cache.New(ttl, 10*time.Minute)
	} else {
		c = cache.New(cache.NoExpiration, 0)
	}
	return &MemoryStore{cache: c}
}

func (s *MemoryStore) Name() string {
	return DriverMemory
}

func (s *MemoryStore) AppendTurn(ctx context.Context, turn *entity.ChatTurn) (uuid.UUID, error) {
	if turn.Id == uuid.Nil {
		turn.Id = uuid.New()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.load(turn.SessionId)
	turns := make([]*entity.ChatTurn, len(existing), len(existing)+1)
	copy(turns, existing)
	turns = append(turns, cloneTurn(turn))
	sortTurns(turns)

	s.cache.Set(turn.SessionId, turns, cache.DefaultExpiration)
	return turn.Id, nil
}

func (s *MemoryStore) GetTurns(ctx context.Context, sessionID string) ([]*entity.ChatTurn, error) {
	return s.snapshot(sessionID, 0), nil
}

func (s *MemoryStore) GetRecentTurns(ctx context.Context, sessionID string, limit int) ([]*entity.ChatTurn, error) {
	return s.snapshot(sessionID, limit), nil
}

func (s *MemoryStore) GetLatestDocumentContext(ctx context.Context, sessionID string) (*string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return latestDocumentContext(s.load(sessionID)), nil
}

func (s *MemoryStore) ListSessionIDs(ctx context.Context) ([]string, error) {
	items := s.cache.Items()
	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) Close() error {
	s.cache.Flush()
	return nil
}

// load must be called with the lock held.
func (s *MemoryStore) load(sessionID string) []*entity.ChatTurn {
	if x, found := s.cache.Get(sessionID); found {
		return x.([]*entity.ChatTurn)
	}
	return nil
}

func (s *MemoryStore) snapshot(sessionID string, limit int) []*entity.ChatTurn {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := tailTurns(s.load(sessionID), limit)
	out := make([]*entity.ChatTurn, len(turns))
	for i, t := range turns {
		out[i] = cloneTurn(t)
	}
	return out
}
