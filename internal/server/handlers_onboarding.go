package server

import (
	"net/http"

	"github.com/jonathan/talent-manager/internal/db"
	"github.com/jonathan/talent-manager/internal/server/middleware"
	"github.com/jonathan/talent-manager/internal/types"
)

func (s *Server) handleListOnboarding(w http.ResponseWriter, r *http.Request) {
	resp, err := s.onboarding.List(r.Context(), db.OnboardingFilter{
		Status: types.OnboardingStatus(r.URL.Query().Get("status")),
		Page:   parsePage(r),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleCreateOnboarding(w http.ResponseWriter, r *http.Request) {
	var req types.CreateOnboardingRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	rec, err := s.onboarding.Create(r.Context(), &req, actorFrom(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, rec)
}

func (s *Server) handleGetOnboarding(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id", "onboarding")
	if !ok {
		return
	}
	rec, err := s.onboarding.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, rec)
}

func (s *Server) handleUpdateOnboarding(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id", "onboarding")
	if !ok {
		return
	}
	var req types.UpdateOnboardingRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	rec, err := s.onboarding.Update(r.Context(), id, &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, rec)
}

func (s *Server) handleUpdateChecklistItem(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id", "onboarding")
	if !ok {
		return
	}
	itemID, ok := s.pathID(w, r, "item_id", "checklist item")
	if !ok {
		return
	}
	var req types.UpdateChecklistItemRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	rec, err := s.onboarding.UpdateChecklistItem(r.Context(), id, itemID, &req, actorFrom(r), middleware.GetRole(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, rec)
}

func (s *Server) handleSubmitDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id", "onboarding")
	if !ok {
		return
	}
	var req types.SubmitDocumentRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	rec, err := s.onboarding.SubmitDocument(r.Context(), id, &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, rec)
}

func (s *Server) handleOnboardingStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.onboarding.Stats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, stats)
}
