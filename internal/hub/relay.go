package hub

import (
	"go.uber.org/zap"

	"rendezvous/internal/metrics"
	"rendezvous/internal/session"
	"rendezvous/pkg/log"
	"rendezvous/pkg/types"
)

// relayLocked forwards a negotiation payload to the sender's registered
// peer unchanged. Without a registered peer the message is dropped.
func (h *Hub) relayLocked(s *session.Session, in *types.Inbound) {
	peerID, ok := h.registry.Peer(s.ID())
	if !ok {
		h.dropStale(s, in.Action)
		return
	}
	peer, ok := h.directory.ByID(peerID)
	if !ok || peer.Closed {
		h.dropStale(s, in.Action)
		return
	}

	h.send(peer, types.Relay(in.Action, in.Message))
	metrics.RelayedMessages.WithLabelValues(in.Action).Inc()
}

func (h *Hub) dropStale(s *session.Session, action string) {
	metrics.DroppedMessages.WithLabelValues(metrics.DropStaleRelay).Inc()
	h.logger.Debug("relay target gone",
		log.FieldSessionID(s.ID()),
		zap.String("action", action))
}
