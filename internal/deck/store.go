package deck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a deck id has no stored deck.
var ErrNotFound = errors.New("deck not found")

// Store persists generated decks for later retrieval and export.
type Store interface {
	Save(ctx context.Context, d *LessonDeck) error
	Get(ctx context.Context, id string) (*LessonDeck, error)
}

// MemoryStore keeps decks in process memory. It is the default backend and
// the fallback when redis is unreachable at startup.
type MemoryStore struct {
	mu    sync.RWMutex
	decks map[string]*LessonDeck
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{decks: make(map[string]*LessonDeck)}
}

func (s *MemoryStore) Save(ctx context.Context, d *LessonDeck) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decks[d.ID] = d
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*LessonDeck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.decks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

const redisDeckKeyPrefix = "deck:"

// RedisStore persists decks as JSON documents with a TTL, letting multiple
// replicas serve decks generated by any of them.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

func (s *RedisStore) Save(ctx context.Context, d *LessonDeck) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal deck %s: %w", d.ID, err)
	}
	if err := s.client.Set(ctx, redisDeckKeyPrefix+d.ID, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("store deck %s: %w", d.ID, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*LessonDeck, error) {
	raw, err := s.client.Get(ctx, redisDeckKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load deck %s: %w", id, err)
	}
	var d LessonDeck
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode deck %s: %w", id, err)
	}
	return &d, nil
}
