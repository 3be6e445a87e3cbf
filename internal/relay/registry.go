// Package relay implements the connection registry, the broadcast relay that
// fans messages out to every registered peer, and the classifier that decides
// how an inbound payload is presented to them.
package relay

import (
	"sync"

	"github.com/samber/lo"
)

// Peer is one open, bidirectional connection to a client.
//
// Send must not block: an implementation that cannot accept the message right
// away returns errors.ErrPeerUnreachable. Close must be safe to call more
// than once.
type Peer interface {
	ID() string
	Username() string
	Send(message string) error
	Close() error
}

// Registry is the live set of peers eligible to receive broadcasts. Peers are
// keyed by identity, so several peers may share a username.
type Registry struct {
	mu      sync.RWMutex
	members map[Peer]struct{}
}

func NewRegistry() *Registry {
	return &Registry{members: make(map[Peer]struct{})}
}

// Admit adds a peer that has completed its handshake. Admitting a peer twice
// is a no-op.
func (r *Registry) Admit(p Peer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[p] = struct{}{}
}

// Evict removes a peer and reports whether this call removed it. Evicting an
// absent peer is not an error; concurrent callers race safely and exactly one
// of them observes true.
func (r *Registry) Evict(p Peer) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[p]; !ok {
		return false
	}
	delete(r.members, p)
	return true
}

// Snapshot returns a copy of the current members in no particular order.
func (r *Registry) Snapshot() []Peer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Keys(r.members)
}

func (r *Registry) Contains(p Peer) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[p]
	return ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}
