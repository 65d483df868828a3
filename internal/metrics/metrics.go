package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "rendezvous"

	reasonLabelName = "reason"
	actionLabelName = "action"
)

// Match ending reasons.
const (
	EndExpired      = "expired"
	EndCall         = "end_call"
	EndDisconnected = "disconnected"
	EndShutdown     = "shutdown"
)

// Dropped message reasons.
const (
	DropMalformed   = "malformed"
	DropRateLimited = "rate_limited"
	DropSendFailed  = "send_failed"
	DropStaleRelay  = "stale_relay"
)

var (
	ConnectedSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected_sessions",
			Help:      "number of open client connections",
		})

	QueueLength = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_length",
			Help:      "sessions waiting to be paired",
		})

	ActiveMatches = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_matches",
			Help:      "matches with a live lifecycle",
		})

	MatchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_total",
			Help:      "pairs formed by the matchmaking engine",
		})

	MatchEndings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_endings_total",
			Help:      "matches torn down, by reason",
		}, []string{reasonLabelName})

	RatingsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratings_total",
			Help:      "ratings recorded",
		})

	RelayedMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relayed_messages_total",
			Help:      "negotiation messages forwarded to a peer",
		}, []string{actionLabelName})

	DroppedMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_messages_total",
			Help:      "inbound or outbound messages discarded, by reason",
		}, []string{reasonLabelName})
)

// Register adds every collector to r.
func Register(r prometheus.Registerer) {
	r.MustRegister(ConnectedSessions)
	r.MustRegister(QueueLength)
	r.MustRegister(ActiveMatches)
	r.MustRegister(MatchesTotal)
	r.MustRegister(MatchEndings)
	r.MustRegister(RatingsTotal)
	r.MustRegister(RelayedMessages)
	r.MustRegister(DroppedMessages)
}

// Handler serves the collectors registered in g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
