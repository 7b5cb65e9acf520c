// Package history keeps the bounded, in-memory list of completed calculations
// and assistant queries. Entries are ordered newest first.
package history

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultLimit is the number of entries kept when no limit is configured.
const DefaultLimit = 50

// AIResult is the result text stored for assistant queries.
const AIResult = "AI Generated"

// Kind discriminates plain calculations from assistant queries.
type Kind string

const (
	KindCalculation Kind = "calculation"
	KindAI          Kind = "ai"
)

// Item is a single history record.
type Item struct {
	ID         string    `json:"id"`
	Expression string    `json:"expression"`
	Result     string    `json:"result"`
	Timestamp  time.Time `json:"timestamp"`
	Kind       Kind      `json:"kind"`
}

// Store is a concurrency-safe bounded history. When full, adding an entry
// evicts the oldest one.
type Store struct {
	mu    sync.RWMutex
	items []Item // newest first
	limit int
	now   func() time.Time
	// onChange is invoked after every mutation, outside the lock
	onChange func()
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithOnChange registers a callback fired after Add, Clear or SetLimit.
func WithOnChange(fn func()) Option {
	return func(s *Store) {
		s.onChange = fn
	}
}

// New creates a store holding at most limit entries. A non-positive limit
// falls back to DefaultLimit.
func New(limit int, opts ...Option) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	s := &Store{
		limit: limit,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddCalculation records a successful evaluation.
func (s *Store) AddCalculation(expression, result string) Item {
	return s.add(expression, result, KindCalculation)
}

// AddAI records an assistant query.
func (s *Store) AddAI(query string) Item {
	return s.add(query, AIResult, KindAI)
}

func (s *Store) add(expression, result string, kind Kind) Item {
	item := Item{
		ID:         uuid.NewString(),
		Expression: expression,
		Result:     result,
		Timestamp:  s.now(),
		Kind:       kind,
	}

	s.mu.Lock()
	s.items = append([]Item{item}, s.items...)
	if len(s.items) > s.limit {
		s.items = s.items[:s.limit]
	}
	s.mu.Unlock()

	s.notify()
	return item
}

// Items returns a copy of the entries, newest first.
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Get returns the entry with the given ID.
func (s *Store) Get(id string) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Limit returns the capacity of the store.
func (s *Store) Limit() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.limit
}

// SetLimit changes the capacity, evicting the oldest entries if needed.
func (s *Store) SetLimit(limit int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	s.mu.Lock()
	s.limit = limit
	if len(s.items) > limit {
		s.items = s.items[:limit]
	}
	s.mu.Unlock()
	s.notify()
}

// Clear removes every entry.
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
	s.notify()
}

func (s *Store) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}
