package app

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"rendezvous/internal/api"
	"rendezvous/internal/config"
	"rendezvous/internal/hub"
	"rendezvous/internal/metrics"
	"rendezvous/internal/rating"
	"rendezvous/internal/websocket"
	"rendezvous/pkg/log"
)

const shutdownTimeout = 10 * time.Second

// Application wires config, hub, transport and HTTP endpoints together.
type Application struct {
	config     *config.Config
	hub        *hub.Hub
	httpServer *http.Server
	logger     *zap.Logger

	mu    sync.Mutex
	addr  net.Addr
	ready chan struct{}
}

// NewApplication builds every component. Nothing listens until Run.
func NewApplication(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.Register(registry)

	ratings := rating.NewStore()
	h := hub.New(cfg.Match, hub.WithRatingStore(ratings))

	mux := http.NewServeMux()
	apiServer := api.NewServer(h, ratings)
	mux.Handle("/api/", apiServer)
	mux.Handle("/health", apiServer)
	mux.Handle("/ws", websocket.NewHandler(h, cfg.WebSocket))
	mux.Handle("/metrics", metrics.Handler(registry))

	return &Application{
		config: cfg,
		hub:    h,
		httpServer: &http.Server{
			Addr:         net.JoinHostPort(cfg.HTTP.Host, strconv.Itoa(cfg.HTTP.Port)),
			Handler:      mux,
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		},
		logger: log.L().Named("app"),
		ready:  make(chan struct{}),
	}, nil
}

// Run starts the hub and serves HTTP until ctx is cancelled or the
// server fails, then shuts both down.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.httpServer.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", a.httpServer.Addr)
	}
	if err := a.hub.Start(ctx); err != nil {
		_ = ln.Close()
		return errors.Wrap(err, "start hub")
	}

	a.mu.Lock()
	a.addr = ln.Addr()
	a.mu.Unlock()
	close(a.ready)
	a.logger.Info("serving", zap.Stringer("addr", ln.Addr()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return a.shutdown()
	})
	return g.Wait()
}

func (a *Application) shutdown() error {
	a.logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs error
	if err := a.httpServer.Shutdown(ctx); err != nil {
		errs = errors.CombineErrors(errs, errors.Wrap(err, "http shutdown"))
	}
	if err := a.hub.Stop(); err != nil {
		errs = errors.CombineErrors(errs, errors.Wrap(err, "stop hub"))
	}
	return errs
}

// Ready is closed once the listener is bound and the hub is running.
func (a *Application) Ready() <-chan struct{} {
	return a.ready
}

// Addr returns the bound listen address, nil before Ready.
func (a *Application) Addr() net.Addr {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.addr
}
