package matchmaking

import "github.com/cockroachdb/errors"

// ErrAlreadyPaired is returned when either side of a new pair is still registered.
var ErrAlreadyPaired = errors.New("session already registered in a match")

// Registry is the symmetric match table: if a maps to b then b maps to a.
// Like Queue it relies on the hub for serialization.
type Registry struct {
	peers map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{peers: make(map[string]string)}
}

// Pair registers a and b with each other.
func (r *Registry) Pair(a, b string) error {
	if a == b {
		return errors.Wrapf(ErrAlreadyPaired, "cannot pair %s with itself", a)
	}
	if _, ok := r.peers[a]; ok {
		return errors.Wrapf(ErrAlreadyPaired, "session %s", a)
	}
	if _, ok := r.peers[b]; ok {
		return errors.Wrapf(ErrAlreadyPaired, "session %s", b)
	}
	r.peers[a] = b
	r.peers[b] = a
	return nil
}

// Peer returns the session currently paired with id.
func (r *Registry) Peer(id string) (string, bool) {
	peer, ok := r.peers[id]
	return peer, ok
}

// Unpair removes both entries of the pair containing id and returns the
// peer. Calling it for an unregistered id is a no-op.
func (r *Registry) Unpair(id string) (string, bool) {
	peer, ok := r.peers[id]
	if !ok {
		return "", false
	}
	delete(r.peers, id)
	if back, ok := r.peers[peer]; ok && back == id {
		delete(r.peers, peer)
	}
	return peer, true
}

// Matches returns the number of active pairs.
func (r *Registry) Matches() int {
	return len(r.peers) / 2
}
