package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/jonathan/talent-manager/internal/db"
	"github.com/jonathan/talent-manager/internal/server/middleware"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// parseQueryInt parses an integer query parameter with default and max values
func parseQueryInt(r *http.Request, key string, defaultValue, maxValue int) int {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < 0 {
		return defaultValue
	}
	if maxValue > 0 && val > maxValue {
		return maxValue
	}
	return val
}

// parsePage reads limit and offset from the query string.
func parsePage(r *http.Request) db.Page {
	return db.Page{
		Limit:  parseQueryInt(r, "limit", db.DefaultLimit, db.MaxLimit),
		Offset: parseQueryInt(r, "offset", 0, 0),
	}
}

// pathID parses the named path value as a UUID, answering 400 when it is not one.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request, name, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid "+resource+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// decodeJSON reads a JSON body into dst. Unknown fields are rejected so derived fields can
// never be smuggled in.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		msg := "Invalid request body"
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			msg = "Request body is empty"
		case errors.As(err, &maxErr):
			msg = "Request body too large"
		default:
			msg += ": " + err.Error()
		}
		s.errorResponse(w, http.StatusBadRequest, msg)
		return false
	}
	return true
}

// actorFrom returns the authenticated caller, or nil on anonymous routes.
func actorFrom(r *http.Request) *uuid.UUID {
	id, err := middleware.GetUserID(r)
	if err != nil {
		return nil
	}
	return &id
}

// writeError maps err to its HTTP status. Internal errors are logged and not echoed.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		s.errorResponse(w, status, "internal server error")
		return
	}
	s.errorResponse(w, status, err.Error())
}
