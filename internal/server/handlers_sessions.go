package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jobeval/jobeval/internal/db"
)

// ---------------------------------------------------------------------
// Evaluation Session Handlers
// ---------------------------------------------------------------------

type CreateSessionRequest struct {
	CompanyName   string `json:"company_name" validate:"required"`
	Employees     int    `json:"employees" validate:"required,gt=0"`
	AnnualRevenue int64  `json:"annual_revenue" validate:"required,gt=0"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	session, err := s.sessions.CreateSession(r.Context(), db.EvalSession{
		CompanyName:   req.CompanyName,
		Employees:     req.Employees,
		AnnualRevenue: req.AnnualRevenue,
	})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, session)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid session ID")
		return
	}

	session, err := s.sessions.GetSession(r.Context(), sessionID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if session == nil {
		s.errorResponse(w, http.StatusNotFound, "Session not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, session)
}

type UpdateSessionRequest struct {
	CompanyName    string  `json:"company_name" validate:"required"`
	Employees      int     `json:"employees" validate:"required,gt=0"`
	AnnualRevenue  int64   `json:"annual_revenue" validate:"required,gt=0"`
	PositionTitle  string  `json:"position_title"`
	OccupationCode *string `json:"occupation_code"`
	ProposedSalary int64   `json:"proposed_salary" validate:"omitempty,gt=0"`
	Step           string  `json:"step" validate:"required,oneof=company position salary result"`
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid session ID")
		return
	}

	var req UpdateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	if req.OccupationCode != nil {
		if _, ok := s.matcher.Lookup(*req.OccupationCode); !ok {
			s.errorResponse(w, http.StatusBadRequest, "Unknown occupation code")
			return
		}
	}

	session, err := s.sessions.UpdateSession(r.Context(), db.EvalSession{
		ID:             sessionID,
		CompanyName:    req.CompanyName,
		Employees:      req.Employees,
		AnnualRevenue:  req.AnnualRevenue,
		PositionTitle:  req.PositionTitle,
		OccupationCode: req.OccupationCode,
		ProposedSalary: req.ProposedSalary,
		Step:           req.Step,
	})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if session == nil {
		s.errorResponse(w, http.StatusNotFound, "Session not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid session ID")
		return
	}

	if err := s.sessions.DeleteSession(r.Context(), sessionID); err != nil {
		if strings.Contains(err.Error(), "session not found") {
			s.errorResponse(w, http.StatusNotFound, "Session not found")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}
