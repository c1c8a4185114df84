package server

import (
	"net/http"

	"github.com/jonathan/talent-manager/internal/server/middleware"
	"github.com/jonathan/talent-manager/internal/types"
)

func (s *Server) respondWithToken(w http.ResponseWriter, r *http.Request, status int, user *types.User) {
	token, err := s.jwtService.GenerateToken(user.ID, user.Role)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, status, types.LoginResponse{User: user, Token: token})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req types.CreateUserRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := validateRequest(&req); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.users.Register(r.Context(), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondWithToken(w, r, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := validateRequest(&req); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.users.Login(r.Context(), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respondWithToken(w, r, http.StatusOK, user)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	user, err := s.users.Me(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, user)
}
