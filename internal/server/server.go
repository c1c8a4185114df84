package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jonathan/talent-manager/internal/config"
	"github.com/jonathan/talent-manager/internal/logger"
	"github.com/jonathan/talent-manager/internal/onboarding"
	"github.com/jonathan/talent-manager/internal/server/middleware"
	"github.com/jonathan/talent-manager/internal/server/ratelimit"
	"github.com/jonathan/talent-manager/internal/types"
	"go.uber.org/zap"
)

// staffRoles may change jobs and onboarding records.
var staffRoles = []string{
	types.RoleAdmin,
	types.RoleHRManager,
	types.RoleRecruitmentSpecialist,
	types.RoleHiringManager,
}

// Server represents the HTTP server
type Server struct {
	httpServer      *http.Server
	store           Store
	log             *zap.Logger
	rateLimiter     *ratelimit.Limiter
	jwtService      *JWTService
	shutdownTimeout time.Duration

	users      *UserService
	jobs       *JobService
	candidates *CandidateService
	onboarding *OnboardingService
}

// New wires the services over store and builds the router. The caller owns store.
func New(cfg *config.Config, store Store, log *zap.Logger) (*Server, error) {
	log = logger.OrNop(log)

	passwordConfig, err := cfg.Password()
	if err != nil {
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}
	jwtConfig, err := cfg.JWT()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}
	tmpl, err := onboarding.LoadTemplate(cfg.Onboarding.ChecklistTemplate)
	if err != nil {
		return nil, err
	}

	rateLimit := cfg.RateLimit
	s := &Server{
		store:           store,
		log:             log,
		rateLimiter:     ratelimit.NewLimiter(&rateLimit),
		jwtService:      NewJWTService(jwtConfig),
		shutdownTimeout: cfg.Server.ShutdownTimeout,
		users:           NewUserService(store, passwordConfig),
		jobs:            NewJobService(store, log),
		candidates:      NewCandidateService(store, cfg.ScoringMode(), log),
		onboarding:      NewOnboardingService(store, tmpl, log),
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler returns the full middleware chain around the API routes.
func (s *Server) Handler() http.Handler {
	return s.withRateLimit(s.withLogging(s.withCORS(s.routes())))
}

func (s *Server) routes() *http.ServeMux {
	authed := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	staffOnly := middleware.RequireRole(staffRoles...)

	protected := func(h http.HandlerFunc) http.Handler { return authed(h) }
	staff := func(h http.HandlerFunc) http.Handler { return authed(staffOnly(h)) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)

	// Auth
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.Handle("GET /api/auth/me", protected(s.handleMe))

	// Jobs
	mux.Handle("GET /api/jobs", protected(s.handleListJobs))
	mux.Handle("POST /api/jobs", staff(s.handleCreateJob))
	mux.Handle("GET /api/jobs/stats/overview", protected(s.handleJobStats))
	mux.Handle("GET /api/jobs/{id}", protected(s.handleGetJob))
	mux.Handle("PUT /api/jobs/{id}", staff(s.handleUpdateJob))
	mux.Handle("DELETE /api/jobs/{id}", staff(s.handleDeleteJob))

	// Candidates
	mux.Handle("GET /api/candidates", protected(s.handleListCandidates))
	mux.Handle("POST /api/candidates", protected(s.handleCreateCandidate))
	mux.Handle("POST /api/candidates/shortlist", protected(s.handleShortlistCandidates))
	mux.Handle("GET /api/candidates/stats/overview", protected(s.handleCandidateStats))
	mux.Handle("GET /api/candidates/{id}", protected(s.handleGetCandidate))
	mux.Handle("PUT /api/candidates/{id}", protected(s.handleUpdateCandidate))
	mux.Handle("DELETE /api/candidates/{id}", protected(s.handleDeleteCandidate))
	mux.Handle("PATCH /api/candidates/{id}/status", protected(s.handleUpdateCandidateStatus))
	mux.Handle("POST /api/candidates/{id}/notes", protected(s.handleAddCandidateNote))
	mux.Handle("POST /api/candidates/{id}/interviews", protected(s.handleScheduleInterview))
	mux.Handle("POST /api/candidates/{id}/rescore", protected(s.handleRescoreCandidate))
	mux.Handle("GET /api/candidates/{id}/score", protected(s.handleExplainScore))

	// Onboarding
	mux.Handle("GET /api/onboarding", protected(s.handleListOnboarding))
	mux.Handle("POST /api/onboarding", staff(s.handleCreateOnboarding))
	mux.Handle("GET /api/onboarding/stats/overview", protected(s.handleOnboardingStats))
	mux.Handle("GET /api/onboarding/{id}", protected(s.handleGetOnboarding))
	mux.Handle("PUT /api/onboarding/{id}", staff(s.handleUpdateOnboarding))
	mux.Handle("PUT /api/onboarding/{id}/checklist/{item_id}", protected(s.handleUpdateChecklistItem))
	mux.Handle("POST /api/onboarding/{id}/documents", protected(s.handleSubmitDocument))

	// Dashboard
	mux.Handle("GET /api/dashboard/stats", protected(s.handleDashboardStats))

	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			s.rateLimiter.Stop()
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	timeout := s.shutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.rateLimiter.Stop()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}

// Close releases the background resources of a server that was never started.
func (s *Server) Close() {
	s.rateLimiter.Stop()
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
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
			s.rateLimitResponse(w, clientID, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging logs every request once it completes
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote", r.RemoteAddr),
		}
		if rec.status >= http.StatusInternalServerError {
			s.log.Warn("request", fields...)
			return
		}
		s.log.Debug("request", fields...)
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID uses the IP address from RemoteAddr.
// X-Forwarded-For is ignored because no trusted proxy list is configured.
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
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, clientID string, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Round(time.Second).Seconds())
		if seconds < 1 {
			seconds = 1
		}
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	s.log.Info("rate limit exceeded",
		zap.String("client", clientID),
		zap.Int("limit", info.Limit),
		zap.Time("reset_at", info.ResetTime))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
