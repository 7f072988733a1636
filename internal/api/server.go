// Package api implements the REST server for the duel service.
package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/cardduel/cardduel/internal/api/handlers"
	"github.com/cardduel/cardduel/internal/api/response"
	"github.com/cardduel/cardduel/internal/api/websocket"
	"github.com/cardduel/cardduel/internal/clients"
)

// IdentityVerifier validates bearer tokens against the identity
// service. Implemented by clients.AuthClient.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*clients.VerifiedIdentity, error)
}

// Server is the REST API server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	port       int

	wsHub    *websocket.Hub
	engine   handlers.MatchEngine
	verifier IdentityVerifier
	limiter  *rate.Limiter
}

// Config holds configuration for the API server.
type Config struct {
	Port           int
	RequestTimeout time.Duration

	// RateLimit is the sustained requests-per-second budget across all
	// clients; RateBurst is the burst allowance. Zero disables limiting.
	RateLimit float64
	RateBurst int
}

// DefaultConfig returns the default API server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:           8080,
		RequestTimeout: 30 * time.Second,
		RateLimit:      50,
		RateBurst:      100,
	}
}

// NewServer creates a new API server.
func NewServer(cfg *Config, eng handlers.MatchEngine, verifier IdentityVerifier) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	s := &Server{
		router:   chi.NewRouter(),
		port:     cfg.Port,
		wsHub:    websocket.NewHub(),
		engine:   eng,
		verifier: verifier,
	}
	if cfg.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}

	s.setupMiddleware(cfg)
	s.setupRoutes()

	return s
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware(cfg *Config) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(cfg.RequestTimeout))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*", "https://localhost:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s.router.Use(s.rateLimitMiddleware)
	s.router.Use(s.jsonContentTypeMiddleware)
}

// rateLimitMiddleware sheds load once the global request budget is
// exhausted.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			response.Error(w, http.StatusTooManyRequests, errors.New("rate limit exceeded"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// jsonContentTypeMiddleware enforces application/json for requests with bodies.
func (s *Server) jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if contentType != "application/json" && !strings.HasPrefix(contentType, "application/json;") {
				http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// authMiddleware verifies the bearer token on every request in its
// subtree and attaches the resulting identity to the request context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			response.Unauthorized(w, errors.New("missing bearer token"))
			return
		}

		identity, err := s.verifier.Verify(r.Context(), token)
		if err != nil {
			response.AuthError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(handlers.WithIdentity(r.Context(), identity)))
	})
}

// Start starts the API server in a goroutine.
func (s *Server) Start() error {
	go s.wsHub.Run()

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Printf("[api] server starting on port %d", s.port)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[api] server error: %v", err)
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the API server and the websocket hub.
func (s *Server) Shutdown(ctx context.Context) error {
	s.wsHub.Stop()
	if s.httpServer == nil {
		return nil
	}

	log.Println("[api] shutting down")
	return s.httpServer.Shutdown(ctx)
}

// Port returns the port the server is configured to listen on.
func (s *Server) Port() int {
	return s.port
}

// WebSocketHub returns the hub so an observer can be registered with
// the event dispatcher.
func (s *Server) WebSocketHub() *websocket.Hub {
	return s.wsHub
}

// NewWebSocketObserver creates an observer that forwards match events
// to connected spectators.
func (s *Server) NewWebSocketObserver() *websocket.Observer {
	return websocket.NewObserver(s.wsHub)
}
