package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"tradeview/internal/feature/watchlist/domain/entity"
)

// Registry hands out one Store per storage key for the whole process,
// so every caller touching the same key shares the same list and subscribers.
type Registry struct {
	storage  Storage
	notifier Notifier

	mu      sync.Mutex
	entries map[string]*registryEntry
}

type registryEntry struct {
	mu    sync.Mutex
	store *Store
}

// NewRegistry creates a Registry whose stores persist to storage.
func NewRegistry(storage Storage, notifier Notifier) *Registry {
	return &Registry{
		storage:  storage,
		notifier: notifier,
		entries:  make(map[string]*registryEntry),
	}
}

// Store returns the Store for key, creating it on first use. Until a load has
// succeeded every call reads storage again, so a transient read error is not
// cached. The load is detached from ctx cancellation because the result is
// shared with every later caller.
func (r *Registry) Store(ctx context.Context, key string) *Store {
	r.mu.Lock()
	e, ok := r.entries[key]
	if !ok {
		e = &registryEntry{store: NewStore(r.storage, key, r.notifier)}
		r.entries[key] = e
	}
	r.mu.Unlock()

	e.mu.Lock()
	if !e.store.Loaded() {
		e.store.Load(context.WithoutCancel(ctx))
	}
	e.mu.Unlock()
	return e.store
}

// UserKey returns the storage key of a user's watchlist.
func UserKey(base string, userID uint) string {
	return fmt.Sprintf("%s:%d", base, userID)
}

// Symbols returns the union of every loaded store's symbols, in first-seen order.
// Before any store is loaded it returns the default symbols.
func (r *Registry) Symbols() []string {
	r.mu.Lock()
	stores := make([]*Store, 0, len(r.entries))
	for _, e := range r.entries {
		stores = append(stores, e.store)
	}
	r.mu.Unlock()

	if len(stores) == 0 {
		return slices.Clone(entity.DefaultSymbols)
	}

	// map順に依存しないようキーでソートしてから結合する
	slices.SortFunc(stores, func(a, b *Store) int { return strings.Compare(a.Key(), b.Key()) })

	seen := make(map[string]struct{})
	var out []string
	for _, s := range stores {
		for _, sym := range s.Symbols() {
			if _, ok := seen[sym]; ok {
				continue
			}
			seen[sym] = struct{}{}
			out = append(out, sym)
		}
	}
	return out
}
