package matchmaking

import (
	"github.com/samber/lo"

	"rendezvous/internal/session"
)

// Queue is the FIFO of sessions waiting to be paired. A session appears at
// most once. Queue is not safe for concurrent use; the hub serializes access.
type Queue struct {
	items   []*session.Session
	members map[string]struct{}
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{members: make(map[string]struct{})}
}

// Push appends s and returns its 1-based position. A session already
// queued keeps its place and reports false.
func (q *Queue) Push(s *session.Session) (int, bool) {
	if _, ok := q.members[s.ID()]; ok {
		return q.Position(s.ID()), false
	}
	q.items = append(q.items, s)
	q.members[s.ID()] = struct{}{}
	return len(q.items), true
}

// PopPair removes and returns the two longest-waiting sessions, oldest
// first. It reports false and leaves the queue untouched when fewer than
// two are waiting.
func (q *Queue) PopPair() (*session.Session, *session.Session, bool) {
	if len(q.items) < 2 {
		return nil, nil, false
	}
	first, second := q.items[0], q.items[1]
	q.items[0], q.items[1] = nil, nil
	q.items = q.items[2:]
	delete(q.members, first.ID())
	delete(q.members, second.ID())
	return first, second, true
}

// Remove drops the session with id from the queue, reporting whether it was queued.
func (q *Queue) Remove(id string) bool {
	if _, ok := q.members[id]; !ok {
		return false
	}
	delete(q.members, id)
	q.items = lo.Reject(q.items, func(s *session.Session, _ int) bool {
		return s.ID() == id
	})
	return true
}

// Contains reports whether the session with id is queued.
func (q *Queue) Contains(id string) bool {
	_, ok := q.members[id]
	return ok
}

// Position returns the 1-based position of id, or 0 if it is not queued.
func (q *Queue) Position(id string) int {
	_, idx, ok := lo.FindIndexOf(q.items, func(s *session.Session) bool {
		return s.ID() == id
	})
	if !ok {
		return 0
	}
	return idx + 1
}

// Len returns the number of waiting sessions.
func (q *Queue) Len() int {
	return len(q.items)
}
