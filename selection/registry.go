package selection

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultMaxSessions = 10000
	DefaultSessionTTL  = 10 * time.Minute
)

// Registry hands out one Manager per session so each session has a single
// writer in this process. Managers are loaded from the store on first use and
// cached for at most ttl; the least recently used are dropped once more than
// size sessions are cached.
type Registry struct {
	mu       sync.Mutex
	store    Store
	prefix   string
	managers *expirable.LRU[string, *Manager]
}

// NewRegistry caches up to size managers for ttl each. Non-positive values
// take DefaultMaxSessions and DefaultSessionTTL.
func NewRegistry(store Store, prefix string, size int, ttl time.Duration) *Registry {
	if size <= 0 {
		size = DefaultMaxSessions
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Registry{
		store:    store,
		prefix:   prefix,
		managers: expirable.NewLRU[string, *Manager](size, nil, ttl),
	}
}

func (r *Registry) Get(ctx context.Context, session string) *Manager {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.managers.Get(session); ok {
		return m
	}
	m := Load(ctx, r.store, r.prefix+session+":")
	r.managers.Add(session, m)
	return m
}

// Forget drops the cached manager; the next Get reloads from the store.
func (r *Registry) Forget(session string) {
	r.mu.Lock()
	r.managers.Remove(session)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	return r.managers.Len()
}
