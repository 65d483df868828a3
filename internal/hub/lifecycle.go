package hub

import (
	"context"

	"go.uber.org/zap"

	"rendezvous/internal/lifecycle"
	"rendezvous/internal/metrics"
	"rendezvous/internal/session"
	"rendezvous/pkg/log"
	"rendezvous/pkg/types"
)

type match struct {
	id     string
	first  *session.Session
	second *session.Session
	timer  *lifecycle.Timer
}

// live reports whether the match may still emit anything. Callers hold h.mu.
func (m *match) live(ctx context.Context) bool {
	return ctx.Err() == nil && !m.timer.Cancelled()
}

// startLifecycleLocked announces the match and launches its countdown and
// conversation timer. The task handle is recorded on both sessions before
// the lock is released, so the task cannot observe a half-built match.
func (h *Hub) startLifecycleLocked(m *match) {
	h.send(m.first, types.Notice(types.ActionStartMatch, msgStartMatch))
	h.send(m.second, types.Notice(types.ActionStartMatch, msgStartMatch))

	h.tasks.Add(1)
	m.timer = lifecycle.Start(h.ctx, func(ctx context.Context) {
		defer h.tasks.Done()
		h.runLifecycle(ctx, m)
	})
	m.first.Timer = m.timer
	m.second.Timer = m.timer
}

func (h *Hub) runLifecycle(ctx context.Context, m *match) {
	for i := h.cfg.CountdownFrom; i >= 1; i-- {
		if !h.broadcast(ctx, m, types.Notice(types.ActionCountdown, countdownText(i))) {
			return
		}
		if !lifecycle.Wait(ctx, h.clock, h.cfg.CountdownInterval) {
			return
		}
	}

	if !h.broadcast(ctx, m,
		types.Notice(types.ActionCountdown, msgStartingNow),
		&types.Outbound{Action: types.ActionStartTimer}) {
		return
	}

	for remaining := h.cfg.ConversationDuration; remaining > 0; remaining -= h.cfg.TickInterval {
		tick := types.Notice(types.ActionTimerUpdate, timerText(lifecycle.FormatRemaining(remaining)))
		if !h.broadcast(ctx, m, tick) {
			return
		}
		if !lifecycle.Wait(ctx, h.clock, h.cfg.TickInterval) {
			return
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if !m.live(ctx) {
		return
	}
	h.endCallLocked(m.first, m.second, metrics.EndExpired)
}

// broadcast delivers msgs to both sides in order, unless the match has
// been torn down in the meantime.
func (h *Hub) broadcast(ctx context.Context, m *match, msgs ...*types.Outbound) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !m.live(ctx) {
		return false
	}
	for _, out := range msgs {
		h.send(m.first, out)
		h.send(m.second, out)
	}
	return true
}

// endCallRequestLocked handles an explicit endCall. Once the match has
// already ended there is no registered peer and the request is a no-op.
func (h *Hub) endCallRequestLocked(s *session.Session) {
	peerID, ok := h.registry.Peer(s.ID())
	if !ok {
		return
	}
	peer, ok := h.directory.ByID(peerID)
	if !ok || peer.Closed {
		h.registry.Unpair(s.ID())
		return
	}
	h.endCallLocked(s, peer, metrics.EndCall)
}

// endCallLocked tears the match down and hands both sides the survey.
// The registry entry is what makes this run at most once per match.
func (h *Hub) endCallLocked(a, b *session.Session, reason string) {
	if _, ok := h.registry.Unpair(a.ID()); !ok {
		return
	}
	a.Timer.Cancel()
	a.Timer, b.Timer = nil, nil

	ended := types.Notice(types.ActionEndCall, msgCallEnded)
	h.send(a, ended)
	h.send(b, ended)

	for _, s := range []*session.Session{a, b} {
		h.send(s, types.Notice(types.ActionSurvey, surveyText(s.PeerName)))
		s.Phase = session.PhaseAwaitingRating
	}

	metrics.MatchEndings.WithLabelValues(reason).Inc()
	metrics.ActiveMatches.Set(float64(h.registry.Matches()))
	h.logger.Info("match ended",
		zap.String("reason", reason),
		log.FieldName(a.Name),
		zap.String("peer", b.Name))
}
