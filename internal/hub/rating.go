package hub

import (
	"encoding/json"

	"go.uber.org/zap"

	"rendezvous/internal/metrics"
	"rendezvous/internal/rating"
	"rendezvous/internal/session"
	"rendezvous/pkg/log"
	"rendezvous/pkg/types"
)

// submitRatingLocked records a rating for the session's last peer. The
// rated participant, if connected under that name, gets the new average
// immediately. Either way the rater is returned to Ready.
func (h *Hub) submitRatingLocked(s *session.Session, raw json.RawMessage) {
	value, err := types.ParseRating(raw)
	if err != nil {
		metrics.DroppedMessages.WithLabelValues(metrics.DropMalformed).Inc()
		h.logger.Warn("unparseable rating dropped", log.FieldSessionID(s.ID()), zap.Error(err))
		return
	}

	if peerName := s.PeerName; peerName == "" {
		h.send(s, types.Notice(types.ActionError, msgNoPeerToRate))
	} else {
		avg := h.ratings.Append(peerName, value)
		metrics.RatingsTotal.Inc()
		h.send(s, types.Notice(types.ActionRatingSubmitted, ratedText(peerName)))

		if rated, ok := h.directory.ByName(peerName); ok && !rated.Closed {
			h.send(rated, types.WithRating(types.ActionYourRatingUpdated, msgRatingUpdated, rating.Format(avg)))
		}
		h.logger.Info("rating recorded",
			log.FieldName(s.Name),
			zap.String("rated", peerName),
			zap.Int("rating", value))
	}

	s.PeerName = ""
	s.Phase = session.PhaseReady
	h.send(s, types.Notice(types.ActionAskToRejoin, msgAskToRejoin))
}
