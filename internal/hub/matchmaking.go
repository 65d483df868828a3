package hub

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"rendezvous/internal/metrics"
	"rendezvous/internal/session"
	"rendezvous/pkg/log"
	"rendezvous/pkg/types"
)

func (h *Hub) enqueueLocked(s *session.Session, action string) {
	position, _ := h.queue.Push(s)
	s.Phase = session.PhaseInQueue
	metrics.QueueLength.Set(float64(h.queue.Len()))

	h.send(s, types.Notice(types.ActionQueueJoined, queueText(action, position)))
	h.pairLocked()
}

// pairLocked pairs the two longest-waiting sessions, if there are two.
// The first one dequeued is the initiator.
func (h *Hub) pairLocked() {
	first, second, ok := h.queue.PopPair()
	if !ok {
		return
	}
	metrics.QueueLength.Set(float64(h.queue.Len()))

	if err := h.registry.Pair(first.ID(), second.ID()); err != nil {
		h.logger.Error("pairing failed",
			log.FieldSessionID(first.ID()),
			zap.String("peer_session_id", second.ID()),
			zap.Error(err))
		for _, s := range []*session.Session{first, second} {
			s.Phase = session.PhaseReady
			h.send(s, types.Notice(types.ActionAskToRejoin, msgAskToRejoin))
		}
		return
	}

	m := &match{
		id:     uuid.NewString(),
		first:  first,
		second: second,
	}
	first.PeerName, second.PeerName = second.Name, first.Name
	first.Phase, second.Phase = session.PhaseMatched, session.PhaseMatched

	h.send(first, types.Matched(matchedText(first.Name, second.Name), second.Name, true))
	h.send(second, types.Matched(matchedText(second.Name, first.Name), first.Name, false))

	metrics.MatchesTotal.Inc()
	metrics.ActiveMatches.Set(float64(h.registry.Matches()))
	h.logger.Info("match formed",
		log.FieldMatchID(m.id),
		zap.String("initiator", first.Name),
		zap.String("responder", second.Name))

	h.startLifecycleLocked(m)
}
