// Package server provides the HTTP REST API for title matching, salary
// evaluation, and the evaluation session wizard.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/jobeval/jobeval/internal/db"
	"github.com/jobeval/jobeval/internal/feedback"
	"github.com/jobeval/jobeval/internal/occupation"
	"github.com/jobeval/jobeval/internal/server/ratelimit"
)

// SessionStore is the persistence surface the session handlers need.
type SessionStore interface {
	CreateSession(ctx context.Context, s db.EvalSession) (*db.EvalSession, error)
	GetSession(ctx context.Context, id uuid.UUID) (*db.EvalSession, error)
	UpdateSession(ctx context.Context, s db.EvalSession) (*db.EvalSession, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error
}

// FeedbackStore is the persistence surface the feedback handler needs.
type FeedbackStore interface {
	SaveFeedback(ctx context.Context, f db.FeedbackRecord) (uuid.UUID, error)
	MarkFeedbackForwarded(ctx context.Context, id uuid.UUID, issueURL string) error
}

// IssueForwarder turns feedback submissions into tracker issues.
type IssueForwarder interface {
	Forward(ctx context.Context, sub feedback.Submission) (*feedback.Issue, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	db          *db.DB
	sessions    SessionStore
	feedback    FeedbackStore
	forwarder   IssueForwarder
	matcher     *occupation.Matcher
	dataset     *occupation.Dataset
	rateLimiter *ratelimit.Limiter
	metrics     *Metrics

	payrollRatio  float64
	maxResults    int
	minConfidence float64
}

// Config holds server configuration
type Config struct {
	Port            int
	DatabaseURL     string
	OccupationsPath string
	TitleIndexPath  string

	// MaxResults and MinConfidence are the matcher defaults applied when
	// requests do not supply their own. Zero means the package defaults.
	MaxResults    int
	MinConfidence float64

	// PayrollRatio overrides the default payroll share of revenue used
	// when requests do not supply one. Zero means the package default.
	PayrollRatio float64

	// RateLimit overrides the environment-derived rate limit config.
	RateLimit *ratelimit.Config

	// Feedback holds the GitHub App credentials for issue forwarding.
	// Leave AppID zero to store feedback without forwarding.
	Feedback feedback.Config
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	database, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.EnsureSchema(context.Background()); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	matcher, dataset, err := occupation.NewMatcherFromFiles(cfg.OccupationsPath, cfg.TitleIndexPath)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to load occupation dataset: %w", err)
	}

	s := &Server{
		db:            database,
		sessions:      database,
		feedback:      database,
		matcher:       matcher,
		dataset:       dataset,
		metrics:       NewMetrics(),
		payrollRatio:  cfg.PayrollRatio,
		maxResults:    cfg.MaxResults,
		minConfidence: cfg.MinConfidence,
	}

	rateCfg := cfg.RateLimit
	if rateCfg == nil {
		rateCfg = ratelimit.LoadConfig()
	}
	s.rateLimiter = ratelimit.NewLimiter(rateCfg)

	if cfg.Feedback.AppID != 0 {
		forwarder, err := feedback.NewForwarder(cfg.Feedback)
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to configure feedback forwarding: %w", err)
		}
		s.forwarder = forwarder
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// handler builds the routed and middleware-wrapped HTTP handler.
func (s *Server) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /match", s.handleMatch)
	mux.HandleFunc("POST /evaluate", s.handleEvaluate)
	mux.HandleFunc("GET /occupations/{code}", s.handleGetOccupation)
	mux.HandleFunc("GET /dataset", s.handleDataset)

	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("GET /sessions/{id}", s.handleGetSession)
	mux.HandleFunc("PUT /sessions/{id}", s.handleUpdateSession)
	mux.HandleFunc("DELETE /sessions/{id}", s.handleDeleteSession)

	mux.HandleFunc("POST /feedback", s.handleFeedback)

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	return s.withRateLimit(s.withLogging(s.withMetrics(s.withCORS(mux))))
}

// Abandoned wizard sessions are purged on this cadence.
const (
	sessionPurgeInterval = time.Hour
	sessionMaxAge        = 24 * time.Hour
)

// Start begins listening for requests
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	purgeDone := make(chan struct{})
	go s.purgeStaleSessions(purgeDone)

	<-stop
	close(purgeDone)
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	s.db.Close()
	log.Println("Server stopped")
	return nil
}

// purgeStaleSessions periodically clears abandoned evaluation sessions.
func (s *Server) purgeStaleSessions(done <-chan struct{}) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			purged, err := s.db.PurgeStaleSessions(ctx, sessionMaxAge)
			cancel()
			if err != nil {
				log.Printf("[sessions] purge failed: %v", err)
			} else if purged > 0 {
				log.Printf("[sessions] purged %d stale session(s)", purged)
			}
		case <-done:
			return
		}
	}
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)

		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	occupations, entries := s.matcher.Size()
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"occupations":   occupations,
		"index_entries": entries,
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID extracts the client identifier from the request.
// Uses the IP address from RemoteAddr; X-Forwarded-For is deliberately
// ignored until the server sits behind a trusted proxy.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
