package session

import (
	"sync"

	"github.com/cockroachdb/errors"
)

// ErrNameTaken is returned when a name is already held by a connected session.
var ErrNameTaken = errors.New("name already in use by a connected session")

// Directory indexes connected sessions by id and by claimed name.
type Directory struct {
	mu     sync.RWMutex
	byID   map[string]*Session
	byName map[string]*Session
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		byID:   make(map[string]*Session),
		byName: make(map[string]*Session),
	}
}

// Add indexes s by its id.
func (d *Directory) Add(s *Session) {
	if s == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byID[s.ID()] = s
}

// ClaimName binds name to s. A name held by another connected session is refused.
func (d *Directory) ClaimName(s *Session, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if holder, ok := d.byName[name]; ok && holder != s {
		return ErrNameTaken
	}
	d.byName[name] = s
	return nil
}

// Remove drops s from both indexes. It is idempotent and only removes the
// name binding if s still holds it.
func (d *Directory) Remove(s *Session) {
	if s == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if registered, ok := d.byID[s.ID()]; ok && registered == s {
		delete(d.byID, s.ID())
	}
	if s.Name != "" {
		if holder, ok := d.byName[s.Name]; ok && holder == s {
			delete(d.byName, s.Name)
		}
	}
}

// ByID looks up a connected session by id.
func (d *Directory) ByID(id string) (*Session, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.byID[id]
	return s, ok
}

// ByName looks up a connected session by claimed name.
func (d *Directory) ByName(name string) (*Session, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.byName[name]
	return s, ok
}

// Count returns the number of connected sessions.
func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byID)
}

// Range calls fn for a snapshot of connected sessions until fn returns false.
func (d *Directory) Range(fn func(s *Session) bool) {
	d.mu.RLock()
	snapshot := make([]*Session, 0, len(d.byID))
	for _, s := range d.byID {
		snapshot = append(snapshot, s)
	}
	d.mu.RUnlock()

	for _, s := range snapshot {
		if !fn(s) {
			return
		}
	}
}
