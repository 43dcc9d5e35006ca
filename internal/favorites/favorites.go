// Package favorites keeps the user's favorited movies in a durable
// key-value storage.
package favorites

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/handsomefox/moodflix/internal/logger"
	"github.com/handsomefox/moodflix/internal/tmdb"
)

// StorageKey is the single key the favorites list is serialized under.
const StorageKey = "moodflix-favorites"

// Storage is a string-keyed byte store. Get returns (nil, nil) for a key
// that was never set; Delete returns sql.ErrNoRows for one.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type Item struct {
	MovieID    int64   `json:"movieId"`
	Title      string  `json:"title"`
	PosterPath *string `json:"posterPath"`
	AddedAt    string  `json:"addedAt"`
}

type Store struct {
	mu      sync.RWMutex
	items   []Item
	storage Storage
	now     func() time.Time
	log     *slog.Logger
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// Open loads the persisted list. Read or parse failures are logged and
// leave the store empty.
func Open(ctx context.Context, storage Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		now:     time.Now,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	raw, err := storage.Get(ctx, StorageKey)
	if err != nil {
		s.log.Error("Error loading favorites", logger.Error(err))
		return s
	}
	if len(raw) == 0 {
		return s
	}
	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		s.log.Error("Error loading favorites", logger.Error(err))
		return s
	}
	s.items = items
	return s
}

func (s *Store) IsFavorite(movieID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(movieID) >= 0
}

// Add appends movie unless it is already a favorite.
func (s *Store) Add(movie *tmdb.Movie) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.add(movie)
}

func (s *Store) Remove(movieID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(movieID)
}

// Toggle flips membership and reports whether movie is now a favorite.
func (s *Store) Toggle(movie *tmdb.Movie) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(movie.ID) >= 0 {
		s.remove(movie.ID)
		return false
	}
	s.add(movie)
	return true
}

// Clear drops every favorite and removes the stored key, which reads back
// as an empty list.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	err := s.storage.Delete(context.Background(), StorageKey)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		s.log.Error("Error saving favorites", logger.Error(err))
	}
}

// List returns the favorites in insertion order.
func (s *Store) List() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

func (s *Store) IDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]int64, 0, len(s.items))
	for _, it := range s.items {
		ids = append(ids, it.MovieID)
	}
	return ids
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) indexOf(movieID int64) int {
	return slices.IndexFunc(s.items, func(it Item) bool { return it.MovieID == movieID })
}

func (s *Store) add(movie *tmdb.Movie) {
	if s.indexOf(movie.ID) >= 0 {
		return
	}
	s.items = append(s.items, Item{
		MovieID:    movie.ID,
		Title:      movie.Title,
		PosterPath: movie.PosterPath,
		AddedAt:    s.now().UTC().Format(time.RFC3339Nano),
	})
	s.persist()
}

func (s *Store) remove(movieID int64) {
	n := len(s.items)
	s.items = slices.DeleteFunc(s.items, func(it Item) bool { return it.MovieID == movieID })
	if len(s.items) != n {
		s.persist()
	}
}

// persist must be called with mu held. Write failures are logged only.
func (s *Store) persist() {
	items := s.items
	if items == nil {
		items = []Item{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		s.log.Error("Error encoding favorites", logger.Error(err))
		return
	}
	if err := s.storage.Set(context.Background(), StorageKey, raw); err != nil {
		s.log.Error("Error saving favorites", logger.Error(err))
	}
}

// MemoryStorage is an in-process Storage, used by tests and ephemeral
// sessions.
type MemoryStorage struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: map[string][]byte{}}
}

func (m *MemoryStorage) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return slices.Clone(v), nil
}

func (m *MemoryStorage) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = slices.Clone(value)
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; !ok {
		return sql.ErrNoRows
	}
	delete(m.data, key)
	return nil
}
