package selection

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"rowlly_listings/logging"
	"rowlly_listings/models"
)

// Store is the key-value storage selections are persisted to.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

func FavoritesKey(scope string) string { return scope + "favorites" }

func CompareKey(scope string) string { return scope + "compare" }

// Manager owns one client's selection state and writes every change through
// to its store before returning. The store is authoritative: each toggle
// re-reads the collection it changes and writes the result back.
type Manager struct {
	mu    sync.Mutex
	store Store
	scope string
	state models.SelectionState
}

// Load restores a client's selections. A missing or unreadable key yields an
// empty collection and never affects the other key.
func Load(ctx context.Context, store Store, scope string) *Manager {
	m := &Manager{store: store, scope: scope}
	m.state.Favorites = m.read(ctx, FavoritesKey(scope), -1)
	m.state.Compare = m.read(ctx, CompareKey(scope), models.MaxCompare)
	return m
}

func (m *Manager) read(ctx context.Context, key string, capacity int) []string {
	ids, err := m.load(ctx, key, capacity)
	if err != nil {
		logging.Warnf("selection: read %s: %v", key, err)
		return []string{}
	}
	return ids
}

// load returns an error only when the store itself fails; a corrupt value is
// logged and read as empty.
func (m *Manager) load(ctx context.Context, key string, capacity int) ([]string, error) {
	raw, found, err := m.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return []string{}, nil
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		logging.Warnf("selection: discarding corrupt value under %s: %v", key, err)
		return []string{}, nil
	}

	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if capacity >= 0 && len(out) > capacity {
		logging.Warnf("selection: %s holds %d ids, keeping the first %d", key, len(out), capacity)
		out = out[:capacity]
	}
	return out, nil
}

// refresh re-reads one collection before it is changed, so a change written
// by another instance sharing the store is built on rather than overwritten.
// If the store cannot be read the cached ids are used. Must be called with mu
// held.
func (m *Manager) refresh(ctx context.Context, kind models.SelectionKind) {
	switch kind {
	case models.SelectionFavorites:
		ids, err := m.load(ctx, FavoritesKey(m.scope), -1)
		if err != nil {
			logging.Warnf("selection: refresh %s: %v", FavoritesKey(m.scope), err)
			return
		}
		m.state.Favorites = ids
	case models.SelectionCompare:
		ids, err := m.load(ctx, CompareKey(m.scope), models.MaxCompare)
		if err != nil {
			logging.Warnf("selection: refresh %s: %v", CompareKey(m.scope), err)
			return
		}
		m.state.Compare = ids
	}
}

// State returns a copy of the current selections.
func (m *Manager) State() models.SelectionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

func (m *Manager) ToggleFavorite(ctx context.Context, id string) (models.SelectionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.refresh(ctx, models.SelectionFavorites)
	m.state = ToggleFavorite(m.state, id)
	return m.state.Clone(), m.write(ctx, models.SelectionFavorites)
}

// ToggleCompare persists only when the list actually changed, so a rejected
// fourth add costs nothing.
func (m *Manager) ToggleCompare(ctx context.Context, id string) (models.SelectionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.refresh(ctx, models.SelectionCompare)
	before := len(m.state.Compare)
	m.state = ToggleCompare(m.state, id)
	if len(m.state.Compare) == before {
		return m.state.Clone(), nil
	}
	return m.state.Clone(), m.write(ctx, models.SelectionCompare)
}

func (m *Manager) ClearAll(ctx context.Context, kind models.SelectionKind) (models.SelectionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = Clear(m.state, kind)
	return m.state.Clone(), m.write(ctx, kind)
}

// write must be called with mu held.
func (m *Manager) write(ctx context.Context, kind models.SelectionKind) error {
	var key string
	var ids []string
	switch kind {
	case models.SelectionFavorites:
		key, ids = FavoritesKey(m.scope), m.state.Favorites
	case models.SelectionCompare:
		key, ids = CompareKey(m.scope), m.state.Compare
	default:
		return fmt.Errorf("unknown selection %q", kind)
	}

	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}
	if err := m.store.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("persist %s: %w", kind, err)
	}
	return nil
}
