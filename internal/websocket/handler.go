package websocket

import (
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"rendezvous/internal/config"
	"rendezvous/internal/hub"
	"rendezvous/internal/metrics"
	"rendezvous/internal/session"
	"rendezvous/pkg/interfaces"
	"rendezvous/pkg/log"
	"rendezvous/pkg/types"
)

// Dispatcher is the core the handler feeds. *hub.Hub implements it.
type Dispatcher interface {
	Connect(conn interfaces.Connection) (*session.Session, error)
	Handle(s *session.Session, in *types.Inbound) error
	Disconnect(s *session.Session)
}

// Handler upgrades HTTP requests and runs one read loop per connection.
type Handler struct {
	dispatcher Dispatcher
	cfg        config.WebSocketConfig
	upgrader   websocket.Upgrader
	logger     *zap.Logger
}

// NewHandler creates a handler feeding d.
func NewHandler(d Dispatcher, cfg config.WebSocketConfig) *Handler {
	return &Handler{
		dispatcher: d,
		cfg:        cfg,
		upgrader: websocket.Upgrader{
			// Browsers connect from arbitrary static hosts.
			CheckOrigin:      func(r *http.Request) bool { return true },
			HandshakeTimeout: 10 * time.Second,
		},
		logger: log.L().Named("websocket"),
	}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("upgrade failed", zap.Error(err))
		return
	}

	conn := NewConnection(ws, h.cfg.BufferSize, h.cfg.WriteTimeout)
	s, err := h.dispatcher.Connect(conn)
	if err != nil {
		h.logger.Warn("connection refused", zap.String("remote_addr", conn.RemoteAddr()), zap.Error(err))
		_ = conn.Close()
		return
	}

	go h.handleConnection(conn, s)
}

// handleConnection reads until the socket fails or closes, then runs the
// disconnect cleanup exactly once.
func (h *Handler) handleConnection(conn *Connection, s *session.Session) {
	defer func() {
		h.dispatcher.Disconnect(s)
		_ = conn.Close()
	}()

	ws := conn.conn
	ws.SetReadLimit(h.cfg.MaxMessageSize)
	if err := ws.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout)); err != nil {
		return
	}
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	})

	go h.heartbeat(conn)

	limiter := rate.NewLimiter(rate.Limit(h.cfg.MessageRate), h.cfg.MessageBurst)
	for {
		messageType, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("read failed", log.FieldSessionID(s.ID()), zap.Error(err))
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		if !limiter.Allow() {
			metrics.DroppedMessages.WithLabelValues(metrics.DropRateLimited).Inc()
			continue
		}

		in, err := types.DecodeInbound(data)
		if err != nil {
			metrics.DroppedMessages.WithLabelValues(metrics.DropMalformed).Inc()
			h.logger.Debug("malformed message dropped", log.FieldSessionID(s.ID()), zap.Error(err))
			continue
		}

		if err := h.dispatcher.Handle(s, in); err != nil {
			if errors.Is(err, hub.ErrHubNotRunning) || errors.Is(err, hub.ErrSessionClosed) {
				return
			}
			h.logger.Warn("handle failed", log.FieldSessionID(s.ID()), zap.Error(err))
		}
	}
}

func (h *Handler) heartbeat(conn *Connection) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := conn.Ping(); err != nil {
				_ = conn.Close()
				return
			}
		case <-conn.Done():
			return
		}
	}
}
