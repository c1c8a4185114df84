package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/talent-manager/internal/db"
	"github.com/jonathan/talent-manager/internal/types"
)

func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := db.CandidateFilter{
		Status: types.CandidateStatus(q.Get("status")),
		Source: q.Get("source"),
		Search: q.Get("search"),
		Page:   parsePage(r),
	}
	if raw := q.Get("job_id"); raw != "" {
		jobID, err := uuid.Parse(raw)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "Invalid job ID")
			return
		}
		f.JobID = &jobID
	}

	resp, err := s.candidates.List(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleCreateCandidate(w http.ResponseWriter, r *http.Request) {
	var req types.CreateCandidateRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	c, err := s.candidates.Create(r.Context(), &req, actorFrom(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, c)
}

func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id", "candidate")
	if !ok {
		return
	}
	c, err := s.candidates.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, c)
}

func (s *Server) handleUpdateCandidate(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id", "candidate")
	if !ok {
		return
	}
	var req types.UpdateCandidateRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	c, err := s.candidates.Update(r.Context(), id, &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCandidate(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id", "candidate")
	if !ok {
		return
	}
	if err := s.candidates.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleUpdateCandidateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id", "candidate")
	if !ok {
		return
	}
	var req types.UpdateCandidateStatusRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := validateRequest(&req); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.candidates.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, c)
}

func (s *Server) handleAddCandidateNote(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id", "candidate")
	if !ok {
		return
	}
	var req types.AddNoteRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	c, err := s.candidates.AddNote(r.Context(), id, &req, actorFrom(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, c)
}

func (s *Server) handleScheduleInterview(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id", "candidate")
	if !ok {
		return
	}
	var req types.ScheduleInterviewRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	c, err := s.candidates.ScheduleInterview(r.Context(), id, &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, c)
}

func (s *Server) handleRescoreCandidate(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id", "candidate")
	if !ok {
		return
	}
	c, err := s.candidates.Rescore(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, c)
}

func (s *Server) handleExplainScore(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id", "candidate")
	if !ok {
		return
	}
	b, err := s.candidates.Explain(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, b)
}

func (s *Server) handleShortlistCandidates(w http.ResponseWriter, r *http.Request) {
	var req types.ShortlistRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	results, err := s.candidates.Shortlist(r.Context(), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	shortlisted := 0
	for _, res := range results {
		if res.Error == "" {
			shortlisted++
		}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"shortlisted": shortlisted,
		"failed":      len(results) - shortlisted,
		"results":     results,
	})
}

func (s *Server) handleCandidateStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.candidates.Stats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, stats)
}
