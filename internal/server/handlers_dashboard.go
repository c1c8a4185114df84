package server

import (
	"context"
	"net/http"
	"time"

	"github.com/jonathan/talent-manager/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const healthTimeout = 2 * time.Second

// dashboardStats loads the three overviews concurrently. The first failure cancels the rest.
func (s *Server) dashboardStats(ctx context.Context) (*types.DashboardStats, error) {
	var out types.DashboardStats
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := s.jobs.Stats(ctx)
		out.Jobs = stats
		return err
	})
	g.Go(func() error {
		stats, err := s.candidates.Stats(ctx)
		out.Candidates = stats
		return err
	})
	g.Go(func() error {
		stats, err := s.onboarding.Stats(ctx)
		out.Onboarding = stats
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.dashboardStats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, stats)
}

// handleHealth reports liveness and database reachability
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.log.Warn("health check failed", zap.Error(err))
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": "unreachable"})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok", "database": "ok"})
}
