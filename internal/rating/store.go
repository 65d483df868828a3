package rating

import (
	"fmt"
	"sync"

	"github.com/samber/lo"
)

// Store keeps every rating a name has received, in arrival order. Ratings
// outlive sessions: they are keyed by name and never removed.
type Store struct {
	mu      sync.RWMutex
	ratings map[string][]int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{ratings: make(map[string][]int)}
}

// Ensure creates an empty sequence for name if none exists.
func (s *Store) Ensure(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ratings[name]; !ok {
		s.ratings[name] = []int{}
	}
}

// Append records value for name and returns the new average over the
// full history.
func (s *Store) Append(name string, value int) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratings[name] = append(s.ratings[name], value)
	return mean(s.ratings[name])
}

// Average returns the mean rating for name, 0 when it has none.
func (s *Store) Average(name string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return mean(s.ratings[name])
}

// Count returns how many ratings name has received.
func (s *Store) Count(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ratings[name])
}

// Known reports whether name has ever registered or been rated.
func (s *Store) Known(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ratings[name]
	return ok
}

// History returns a copy of the ratings for name.
func (s *Store) History(name string) []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]int(nil), s.ratings[name]...)
}

// Format renders an average with exactly two fraction digits.
func Format(avg float64) string {
	return fmt.Sprintf("%.2f", avg)
}

func mean(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	return float64(lo.Sum(values)) / float64(len(values))
}
