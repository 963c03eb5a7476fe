package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sandeepkv93/recipe-sharing-backend/internal/observability"
)

const (
	categoryListNamespace = "categories"
	recipeListNamespace   = "recipes"
)

// ListCacheStore holds serialized list pages grouped by namespace so a
// write can drop every page of one entity at once.
type ListCacheStore interface {
	Get(ctx context.Context, namespace, key string) ([]byte, bool, error)
	Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error
	InvalidateNamespace(ctx context.Context, namespace string) error
}

type NoopListCacheStore struct{}

func NewNoopListCacheStore() *NoopListCacheStore {
	return &NoopListCacheStore{}
}

func (s *NoopListCacheStore) Get(context.Context, string, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (s *NoopListCacheStore) Set(context.Context, string, string, []byte, time.Duration) error {
	return nil
}

func (s *NoopListCacheStore) InvalidateNamespace(context.Context, string) error {
	return nil
}

type memoryCacheEntry struct {
	payload   []byte
	expiresAt time.Time
}

type InMemoryListCacheStore struct {
	mu    sync.RWMutex
	store map[string]map[string]memoryCacheEntry
	now   func() time.Time
}

func NewInMemoryListCacheStore() *InMemoryListCacheStore {
	return &InMemoryListCacheStore{
		store: make(map[string]map[string]memoryCacheEntry),
		now:   time.Now,
	}
}

func (s *InMemoryListCacheStore) Get(_ context.Context, namespace, key string) ([]byte, bool, error) {
	now := s.now()
	s.mu.RLock()
	entry, ok := s.store[namespace][key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !now.Before(entry.expiresAt) {
		s.mu.Lock()
		if ns, ok := s.store[namespace]; ok {
			delete(ns, key)
			if len(ns) == 0 {
				delete(s.store, namespace)
			}
		}
		s.mu.Unlock()
		return nil, false, nil
	}
	return append([]byte(nil), entry.payload...), true, nil
}

func (s *InMemoryListCacheStore) Set(_ context.Context, namespace, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.store[namespace]
	if !ok {
		ns = make(map[string]memoryCacheEntry)
		s.store[namespace] = ns
	}
	ns[key] = memoryCacheEntry{
		payload:   append([]byte(nil), value...),
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

func (s *InMemoryListCacheStore) InvalidateNamespace(_ context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.store, namespace)
	return nil
}

// ListCache is a read-through cache in front of paged list queries.
// Concurrent misses for the same page share one load.
type ListCache struct {
	store ListCacheStore
	ttl   time.Duration
	group singleflight.Group
}

func NewListCache(store ListCacheStore, ttl time.Duration) *ListCache {
	if store == nil {
		store = NewNoopListCacheStore()
	}
	return &ListCache{store: store, ttl: ttl}
}

func (c *ListCache) Invalidate(ctx context.Context, namespace string) {
	if c == nil {
		return
	}
	if err := c.store.InvalidateNamespace(ctx, namespace); err != nil {
		observability.RecordListCacheEvent(ctx, namespace, "invalidate_error")
		observability.Logger().WarnContext(ctx, "list cache invalidation failed", "namespace", namespace, "error", err)
		return
	}
	observability.RecordListCacheEvent(ctx, namespace, "invalidate")
}

// cachedList serves namespace/key from c, falling back to load. Cache
// failures degrade to a direct load.
func cachedList[T any](ctx context.Context, c *ListCache, namespace, key string, load func(context.Context) (T, error)) (T, error) {
	if c == nil || c.ttl <= 0 {
		return load(ctx)
	}
	if raw, ok, err := c.store.Get(ctx, namespace, key); err != nil {
		observability.RecordListCacheEvent(ctx, namespace, "error")
	} else if ok {
		var out T
		if err := json.Unmarshal(raw, &out); err == nil {
			observability.RecordListCacheEvent(ctx, namespace, "hit")
			return out, nil
		}
		observability.RecordListCacheEvent(ctx, namespace, "decode_error")
	}

	observability.RecordListCacheEvent(ctx, namespace, "miss")
	v, err, _ := c.group.Do(namespace+"|"+key, func() (any, error) {
		out, err := load(ctx)
		if err != nil {
			return out, err
		}
		if raw, err := json.Marshal(out); err == nil {
			if err := c.store.Set(ctx, namespace, key, raw, c.ttl); err != nil {
				observability.RecordListCacheEvent(ctx, namespace, "set_error")
			}
		}
		return out, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
