package relay

import (
	"errors"
	"log/slog"

	chaterrors "github.com/Tyrowin/cipherchat/internal/errors"
)

// Relay delivers messages to every member of a Registry. Send failures are
// handled locally and never reported to the sender.
type Relay struct {
	registry *Registry
	log      *slog.Logger
}

func NewRelay(registry *Registry, log *slog.Logger) *Relay {
	return &Relay{registry: registry, log: log}
}

// Registry returns the registry the relay broadcasts to.
func (r *Relay) Registry() *Registry {
	return r.registry
}

// Broadcast sends message to every current member and returns how many
// deliveries succeeded. Members that report errors.ErrPeerUnreachable are
// evicted and closed once the sweep is over; the rest still receive the
// message.
func (r *Relay) Broadcast(message string) int {
	peers := r.registry.Snapshot()
	delivered, dead := r.sendToPeers(peers, message)
	r.removeDeadPeers(dead)

	r.log.Debug("Broadcast completed",
		"targets", len(peers), "delivered", delivered, "evicted", len(dead))
	return delivered
}

// sendToPeers attempts delivery to each peer and collects the unreachable ones.
func (r *Relay) sendToPeers(peers []Peer, message string) (int, []Peer) {
	var dead []Peer
	delivered := 0

	for _, p := range peers {
		err := p.Send(message)
		switch {
		case err == nil:
			delivered++
		case errors.Is(err, chaterrors.ErrPeerUnreachable):
			dead = append(dead, p)
		default:
			r.log.Warn("Unexpected send failure, keeping peer",
				"conn_id", p.ID(), "username", p.Username(), "error", err)
		}
	}
	return delivered, dead
}

// removeDeadPeers evicts peers that failed delivery. No leave message is
// announced for them.
func (r *Relay) removeDeadPeers(dead []Peer) {
	for _, p := range dead {
		if !r.registry.Evict(p) {
			continue
		}
		if err := p.Close(); err != nil {
			r.log.Debug("Closing unreachable peer failed", "conn_id", p.ID(), "error", err)
		}
		r.log.Info("Peer removed after failed delivery",
			"conn_id", p.ID(), "username", p.Username())
	}
}

// Join admits p and announces it to every member, p included.
func (r *Relay) Join(p Peer) {
	r.registry.Admit(p)
	r.log.Info("Peer joined",
		"conn_id", p.ID(), "username", p.Username(), "total", r.registry.Len())
	r.Broadcast(JoinedMessage(p.Username()))
}

// Leave evicts and closes p. The departure is announced to the remaining
// members only when this call performed the eviction; a peer already dropped
// by a failed send leaves silently.
func (r *Relay) Leave(p Peer) {
	removed := r.registry.Evict(p)
	if err := p.Close(); err != nil {
		r.log.Debug("Closing departing peer failed", "conn_id", p.ID(), "error", err)
	}
	if !removed {
		return
	}
	r.log.Info("Peer left",
		"conn_id", p.ID(), "username", p.Username(), "total", r.registry.Len())
	r.Broadcast(LeftMessage(p.Username()))
}

// Forward classifies an inbound payload from p and broadcasts the result.
func (r *Relay) Forward(p Peer, payload string) int {
	return r.Broadcast(Classify(p.Username(), payload))
}
