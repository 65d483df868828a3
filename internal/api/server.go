package api

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"rendezvous/internal/hub"
	"rendezvous/internal/rating"
	"rendezvous/pkg/log"
)

// HubStatus is the read-only view of the hub the API reports on.
type HubStatus interface {
	Stats() hub.Stats
	Running() bool
}

// RatingLookup is the read-only view of the rating store.
type RatingLookup interface {
	Known(name string) bool
	Average(name string) float64
	Count(name string) int
}

// Server serves the JSON endpoints next to the websocket.
type Server struct {
	hub     HubStatus
	ratings RatingLookup
	router  *http.ServeMux
	started time.Time
	logger  *zap.Logger
}

// NewServer wires the routes.
func NewServer(h HubStatus, ratings RatingLookup) *Server {
	s := &Server{
		hub:     h,
		ratings: ratings,
		router:  http.NewServeMux(),
		started: time.Now(),
		logger:  log.L().Named("api"),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Handle("GET /health", s.corsMiddleware(s.jsonMiddleware(http.HandlerFunc(s.healthCheck))))
	s.router.Handle("GET /api/ratings/{name}", s.corsMiddleware(s.jsonMiddleware(http.HandlerFunc(s.getRating))))
	s.router.Handle("OPTIONS /api/", s.corsMiddleware(http.NotFoundHandler()))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Uptime      string    `json:"uptime"`
	Connections hub.Stats `json:"connections"`
}

type RatingResponse struct {
	Name      string `json:"name"`
	AvgRating string `json:"avgRating"`
	Count     int    `json:"count"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// healthCheck reports 503 once the hub has stopped accepting sessions.
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	status, code := "healthy", http.StatusOK
	if !s.hub.Running() {
		status, code = "stopped", http.StatusServiceUnavailable
	}

	s.writeJSON(w, code, HealthResponse{
		Status:      status,
		Timestamp:   time.Now().UTC(),
		Uptime:      time.Since(s.started).Truncate(time.Second).String(),
		Connections: s.hub.Stats(),
	})
}

func (s *Server) getRating(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !s.ratings.Known(name) {
		s.sendError(w, "No participant with that name", http.StatusNotFound)
		return
	}

	s.writeJSON(w, http.StatusOK, RatingResponse{
		Name:      name,
		AvgRating: rating.Format(s.ratings.Average(name)),
		Count:     s.ratings.Count(name),
	})
}

func (s *Server) sendError(w http.ResponseWriter, message string, code int) {
	s.writeJSON(w, code, ErrorResponse{
		Error:   http.StatusText(code),
		Code:    code,
		Message: message,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("write response", zap.Error(err))
	}
}

// corsMiddleware lets browser clients served from other origins query the API.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
