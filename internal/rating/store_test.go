package rating

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore_AverageOverFullHistory(t *testing.T) {
	s := NewStore()

	s.Append("Alice", 3)
	avg := s.Append("Alice", 5)
	assert.Equal(t, "4.00", Format(avg))

	avg = s.Append("Alice", 4)
	assert.Equal(t, "4.00", Format(avg))
	assert.Equal(t, 3, s.Count("Alice"))
	assert.Equal(t, []int{3, 5, 4}, s.History("Alice"))
}

func TestStore_EmptyIsZero(t *testing.T) {
	s := NewStore()
	assert.Equal(t, "0.00", Format(s.Average("nobody")))
	assert.False(t, s.Known("nobody"))

	s.Ensure("Bob")
	assert.True(t, s.Known("Bob"))
	assert.Equal(t, "0.00", Format(s.Average("Bob")))

	s.Append("Bob", 2)
	s.Ensure("Bob")
	assert.Equal(t, 1, s.Count("Bob"), "Ensure must not reset existing ratings")
}

func TestStore_OutOfRangeValuesAreKept(t *testing.T) {
	s := NewStore()
	s.Append("Carol", 9)
	avg := s.Append("Carol", 0)
	assert.Equal(t, "4.50", Format(avg))
}

func TestStore_NotDeduplicated(t *testing.T) {
	s := NewStore()
	s.Append("Dan", 5)
	s.Append("Dan", 5)
	assert.Equal(t, []int{5, 5}, s.History("Dan"))
}

func TestStore_ConcurrentAppends(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			s.Append("Erin", v%5+1)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, s.Count("Erin"))
	assert.Equal(t, "3.00", Format(s.Average("Erin")))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "3.67", Format(11.0/3.0))
	assert.Equal(t, "5.00", Format(5))
}
