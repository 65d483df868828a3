package hub

import (
	"context"
	"sync"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"rendezvous/internal/config"
	"rendezvous/internal/matchmaking"
	"rendezvous/internal/metrics"
	"rendezvous/internal/rating"
	"rendezvous/internal/session"
	"rendezvous/pkg/interfaces"
	"rendezvous/pkg/log"
	"rendezvous/pkg/types"
)

// Hub owns every piece of shared state: the session directory, the
// matchmaking queue, the match registry and the rating store. A single
// mutex serializes all of it, including the per-match lifecycle tasks.
// Sends never block (connections buffer or drop), so sending while
// holding the lock is safe.
type Hub struct {
	mu sync.Mutex

	directory *session.Directory
	queue     *matchmaking.Queue
	registry  *matchmaking.Registry
	ratings   *rating.Store

	cfg    config.MatchConfig
	clock  clockwork.Clock
	logger *zap.Logger

	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	tasks   sync.WaitGroup
}

// Option customizes a Hub.
type Option func(*Hub)

// WithClock drives countdowns and timers from clock.
func WithClock(clock clockwork.Clock) Option {
	return func(h *Hub) { h.clock = clock }
}

// WithLogger replaces the hub logger.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Hub) { h.logger = logger }
}

// WithRatingStore shares an existing rating store with the hub.
func WithRatingStore(store *rating.Store) Option {
	return func(h *Hub) { h.ratings = store }
}

// New creates a stopped hub.
func New(cfg config.MatchConfig, opts ...Option) *Hub {
	h := &Hub{
		directory: session.NewDirectory(),
		queue:     matchmaking.NewQueue(),
		registry:  matchmaking.NewRegistry(),
		ratings:   rating.NewStore(),
		cfg:       cfg,
		clock:     clockwork.NewRealClock(),
		logger:    log.L().Named("hub"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Start makes the hub accept sessions. Lifecycle tasks are bound to ctx.
func (h *Hub) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.running {
		return ErrHubAlreadyRunning
	}
	h.ctx, h.cancel = context.WithCancel(ctx)
	h.running = true

	h.logger.Info("hub started")
	return nil
}

// Stop cancels every live match, unpairs both sides and waits for the
// lifecycle tasks to exit.
func (h *Hub) Stop() error {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return ErrHubNotRunning
	}
	h.running = false

	stopped := 0
	h.directory.Range(func(s *session.Session) bool {
		if _, ok := h.registry.Unpair(s.ID()); ok {
			stopped++
			metrics.MatchEndings.WithLabelValues(metrics.EndShutdown).Inc()
		}
		if s.Phase == session.PhaseMatched {
			s.PeerName = ""
			s.Phase = session.PhaseReady
		}
		s.Timer.Cancel()
		s.Timer = nil
		return true
	})
	metrics.ActiveMatches.Set(float64(h.registry.Matches()))
	h.cancel()
	h.mu.Unlock()

	h.tasks.Wait()
	h.logger.Info("hub stopped", zap.Int("cancelled_matches", stopped))
	return nil
}

// Connect registers a new session for conn in PhaseAwaitingName.
func (h *Hub) Connect(conn interfaces.Connection) (*session.Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.running {
		return nil, ErrHubNotRunning
	}

	s := session.New(conn)
	h.directory.Add(s)
	metrics.ConnectedSessions.Inc()

	h.logger.Debug("session connected",
		log.FieldSessionID(s.ID()),
		zap.String("remote_addr", conn.RemoteAddr()))
	return s, nil
}

// Handle processes one decoded inbound message from s. Actions that are
// not valid in the session's current phase are ignored.
func (h *Hub) Handle(s *session.Session, in *types.Inbound) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.running {
		return ErrHubNotRunning
	}
	if s.Closed {
		return ErrSessionClosed
	}
	if !s.Phase.Allows(in.Action) {
		h.logger.Debug("action ignored in current phase",
			log.FieldSessionID(s.ID()),
			zap.String("action", in.Action),
			zap.Stringer("phase", s.Phase))
		return nil
	}

	if types.IsNegotiationAction(in.Action) {
		h.relayLocked(s, in)
		return nil
	}

	switch in.Action {
	case types.ActionSubmitName:
		h.submitNameLocked(s, *in.Name)
	case types.ActionJoinQueue, types.ActionRejoinQueue:
		h.enqueueLocked(s, in.Action)
	case types.ActionSubmitRating:
		h.submitRatingLocked(s, in.Rating)
	case types.ActionEndCall:
		h.endCallRequestLocked(s)
	}
	return nil
}

// Disconnect scrubs s from every shared structure. It is safe to call
// more than once and in any phase.
func (h *Hub) Disconnect(s *session.Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s.Closed {
		return
	}
	s.Closed = true

	if h.queue.Remove(s.ID()) {
		metrics.QueueLength.Set(float64(h.queue.Len()))
	}

	if peerID, ok := h.registry.Unpair(s.ID()); ok {
		s.Timer.Cancel()
		if peer, ok := h.directory.ByID(peerID); ok && !peer.Closed {
			peer.Timer = nil
			peer.PeerName = ""
			peer.Phase = session.PhaseReady
			h.send(peer, types.Notice(types.ActionPeerDisconnected, msgPeerDisconnected))
		}
		metrics.MatchEndings.WithLabelValues(metrics.EndDisconnected).Inc()
		metrics.ActiveMatches.Set(float64(h.registry.Matches()))
		h.logger.Info("match ended by disconnect",
			log.FieldSessionID(s.ID()),
			zap.String("peer_session_id", peerID))
	}
	s.Timer.Cancel()
	s.Timer = nil

	h.directory.Remove(s)
	metrics.ConnectedSessions.Dec()

	h.logger.Debug("session disconnected", log.FieldSessionID(s.ID()), log.FieldName(s.Name))
}

// Stats is a point-in-time view of the hub.
type Stats struct {
	ConnectedSessions int `json:"connected_sessions"`
	QueueLength       int `json:"queue_length"`
	ActiveMatches     int `json:"active_matches"`
}

// Stats reports current occupancy.
func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{
		ConnectedSessions: h.directory.Count(),
		QueueLength:       h.queue.Len(),
		ActiveMatches:     h.registry.Matches(),
	}
}

// Running reports whether the hub has been started and not stopped.
func (h *Hub) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.running
}

// Ratings exposes the rating store for read-only lookups.
func (h *Hub) Ratings() *rating.Store {
	return h.ratings
}

func (h *Hub) submitNameLocked(s *session.Session, raw string) {
	name, err := types.NormalizeName(raw)
	if err != nil {
		h.send(s, types.Notice(types.ActionError, msgInvalidName))
		return
	}
	if err := h.directory.ClaimName(s, name); err != nil {
		h.send(s, types.Notice(types.ActionError, msgNameInUse))
		return
	}

	s.Name = name
	s.Phase = session.PhaseReady
	h.ratings.Ensure(name)

	avg := rating.Format(h.ratings.Average(name))
	h.send(s, types.WithRating(types.ActionNameSubmitted, welcomeText(name), avg))
	h.logger.Info("name registered", log.FieldSessionID(s.ID()), log.FieldName(name))
}

func (h *Hub) send(s *session.Session, out *types.Outbound) {
	if err := s.Send(out); err != nil {
		metrics.DroppedMessages.WithLabelValues(metrics.DropSendFailed).Inc()
		h.logger.Debug("send failed",
			log.FieldSessionID(s.ID()),
			zap.String("action", out.Action),
			zap.Error(err))
	}
}
