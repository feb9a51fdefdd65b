package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"tradeview/internal/feature/watchlist/domain/entity"
)

// Storage abstracts the key-value store the watchlist is persisted to.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type Storage interface {
	// Get returns the raw value stored under key. found is false when the key does not exist.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	// Set overwrites the value stored under key.
	Set(ctx context.Context, key, value string) error
}

// Store is the ordered, duplicate-free list of watched symbols.
// Each mutation is written to Storage before it returns, so the in-memory list
// and the persisted value are equal whenever no call is in progress.
type Store struct {
	mu       sync.Mutex
	storage  Storage
	key      string
	notifier Notifier
	symbols  []string
	loaded   bool

	subMu   sync.Mutex
	subs    map[uint64]func([]string)
	nextSub uint64
}

// NewStore creates a Store seeded with the default symbols.
// Call Load to replace them with the persisted list.
func NewStore(storage Storage, key string, notifier Notifier) *Store {
	if key == "" {
		key = entity.StorageKey
	}
	return &Store{
		storage:  storage,
		key:      key,
		notifier: orDiscard(notifier),
		symbols:  slices.Clone(entity.DefaultSymbols),
		subs:     make(map[uint64]func([]string)),
	}
}

// Key returns the storage key of this store.
func (s *Store) Key() string {
	return s.key
}

// Load reads the persisted list. A missing or malformed value falls back to the
// default symbols and is written back. When storage cannot be read the current
// list is kept, nothing is written and Load reports false; Add and Remove then
// read storage again before changing anything.
func (s *Store) Load(ctx context.Context) bool {
	s.mu.Lock()
	err := s.readLocked(ctx)
	snapshot := slices.Clone(s.symbols)
	s.mu.Unlock()

	s.publish(snapshot)
	return err == nil
}

// Loaded reports whether the persisted list has been read successfully.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// readLocked replaces s.symbols with the persisted list and marks the store loaded.
// s.mu must be held.
func (s *Store) readLocked(ctx context.Context) error {
	raw, found, err := s.storage.Get(ctx, s.key)
	if err != nil {
		// 一時的な読み込み失敗で保存値を上書きしない
		slog.Warn("watchlist storage read failed", "key", s.key, "loaded", s.loaded, "error", err)
		return err
	}

	symbols := slices.Clone(entity.DefaultSymbols)
	writeBack := true
	if !found {
		slog.Debug("watchlist not persisted yet, using defaults", "key", s.key)
	} else {
		if decoded, ok := decodeSymbols(raw); ok {
			symbols = decoded
		} else {
			slog.Warn("malformed watchlist in storage, using defaults", "key", s.key)
		}
		writeBack = encodeSymbols(symbols) != raw
	}

	s.symbols = symbols
	s.loaded = true
	if writeBack {
		if err := s.storage.Set(ctx, s.key, encodeSymbols(symbols)); err != nil {
			slog.Warn("failed to write back watchlist", "key", s.key, "error", err)
		}
	}
	return nil
}

// ensureLoadedLocked reads storage when no load has succeeded yet, so a
// mutation never overwrites a list it has not seen. reloaded is true when
// s.symbols was replaced. s.mu must be held.
func (s *Store) ensureLoadedLocked(ctx context.Context) (reloaded bool, err error) {
	if s.loaded {
		return false, nil
	}
	if err := s.readLocked(ctx); err != nil {
		s.notifier.Notify(entity.Notification{
			Title:       "Watchlist not saved",
			Description: "Unable to read the saved watchlist",
			Variant:     entity.VariantDestructive,
		})
		return false, fmt.Errorf("%w: watchlist not loaded: %w", ErrPersist, err)
	}
	return true, nil
}

// Symbols returns a copy of the current list in insertion order.
func (s *Store) Symbols() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.symbols)
}

// Len returns the number of watched symbols.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.symbols)
}

// Contains reports whether symbol is watched. Matching is exact and case-sensitive.
func (s *Store) Contains(symbol string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.symbols, symbol)
}

// Add appends symbol to the end of the list. It returns false without
// touching storage when the symbol is already present.
func (s *Store) Add(ctx context.Context, symbol string) (bool, error) {
	if strings.TrimSpace(symbol) == "" {
		return false, ErrEmptySymbol
	}

	s.mu.Lock()
	reloaded, err := s.ensureLoadedLocked(ctx)
	if err != nil {
		s.mu.Unlock()
		return false, err
	}
	if slices.Contains(s.symbols, symbol) {
		snapshot := slices.Clone(s.symbols)
		s.mu.Unlock()
		if reloaded {
			s.publish(snapshot)
		}
		s.notifier.Notify(entity.Notification{
			Title:       "Already in watchlist",
			Description: fmt.Sprintf("%s is already in your watchlist", symbol),
			Variant:     entity.VariantDefault,
		})
		return false, nil
	}

	next := append(slices.Clone(s.symbols), symbol)
	if err := s.persistLocked(ctx, next); err != nil {
		snapshot := slices.Clone(s.symbols)
		s.mu.Unlock()
		if reloaded {
			s.publish(snapshot)
		}
		return false, err
	}
	snapshot := slices.Clone(next)
	s.mu.Unlock()

	s.notifier.Notify(entity.Notification{
		Title:       "Symbol added",
		Description: fmt.Sprintf("%s added to watchlist", symbol),
		Variant:     entity.VariantDefault,
	})
	s.publish(snapshot)
	return true, nil
}

// Remove deletes every occurrence of symbol. Removing an absent symbol is not an error.
func (s *Store) Remove(ctx context.Context, symbol string) error {
	s.mu.Lock()
	if _, err := s.ensureLoadedLocked(ctx); err != nil {
		s.mu.Unlock()
		return err
	}
	next := make([]string, 0, len(s.symbols))
	for _, sym := range s.symbols {
		if sym != symbol {
			next = append(next, sym)
		}
	}
	if err := s.persistLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	snapshot := slices.Clone(next)
	s.mu.Unlock()

	s.notifier.Notify(entity.Notification{
		Title:       "Symbol removed",
		Description: fmt.Sprintf("%s removed from watchlist", symbol),
		Variant:     entity.VariantDefault,
	})
	s.publish(snapshot)
	return nil
}

// Subscribe registers fn to receive the list after every change.
// fn runs on the mutating goroutine and must not call back into the store's mutators.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(symbols []string)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// persistLocked writes next and swaps it in only when the write succeeded.
// s.mu must be held.
func (s *Store) persistLocked(ctx context.Context, next []string) error {
	if err := s.storage.Set(ctx, s.key, encodeSymbols(next)); err != nil {
		slog.Error("failed to persist watchlist", "key", s.key, "error", err)
		s.notifier.Notify(entity.Notification{
			Title:       "Watchlist not saved",
			Description: err.Error(),
			Variant:     entity.VariantDestructive,
		})
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	s.symbols = next
	return nil
}

func (s *Store) publish(symbols []string) {
	s.subMu.Lock()
	fns := make([]func([]string), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(slices.Clone(symbols))
	}
}

// decodeSymbols parses a JSON array of strings, dropping repeated entries.
// ok is false for anything that is not an array of strings.
func decodeSymbols(raw string) ([]string, bool) {
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil || list == nil {
		return nil, false
	}
	out := make([]string, 0, len(list))
	for _, sym := range list {
		if !slices.Contains(out, sym) {
			out = append(out, sym)
		}
	}
	return out, true
}

func encodeSymbols(symbols []string) string {
	if symbols == nil {
		symbols = []string{}
	}
	// []string のMarshalは失敗しない
	b, _ := json.Marshal(symbols)
	return string(b)
}
