package server

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/jobeval/jobeval/internal/occupation"
	"github.com/jobeval/jobeval/internal/salary"
)

// ---------------------------------------------------------------------
// Title Matching
// ---------------------------------------------------------------------

type MatchRequest struct {
	Query         string  `json:"query" validate:"required"`
	MaxResults    int     `json:"max_results" validate:"omitempty,gte=1,lte=20"`
	MinConfidence float64 `json:"min_confidence" validate:"omitempty,gt=0,lt=1"`
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	maxResults := req.MaxResults
	if maxResults == 0 {
		maxResults = s.maxResults
	}
	minConfidence := req.MinConfidence
	if minConfidence == 0 {
		minConfidence = s.minConfidence
	}

	var opts []occupation.MatchOption
	if maxResults > 0 {
		opts = append(opts, occupation.WithMaxResults(maxResults))
	}
	if minConfidence > 0 {
		opts = append(opts, occupation.WithMinConfidence(minConfidence))
	}

	matches := s.matcher.Match(req.Query, opts...)

	s.metrics.matchQueries.Inc()
	if len(matches) == 0 {
		s.metrics.matchEmpty.Inc()
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"query":   req.Query,
		"matches": matches,
		"count":   len(matches),
	})
}

// ---------------------------------------------------------------------
// Salary Evaluation
// ---------------------------------------------------------------------

type EvaluateRequest struct {
	Code           string  `json:"code" validate:"required"`
	ProposedSalary int64   `json:"proposed_salary" validate:"required,gt=0"`
	AnnualRevenue  int64   `json:"annual_revenue" validate:"required,gt=0"`
	Employees      int     `json:"employees" validate:"required,gt=0"`
	PayrollRatio   float64 `json:"payroll_ratio" validate:"omitempty,gt=0,lte=1"`
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	occ, ok := s.matcher.Lookup(req.Code)
	if !ok {
		s.errorResponse(w, http.StatusNotFound, "Occupation not found")
		return
	}

	ratio := req.PayrollRatio
	if ratio == 0 {
		ratio = s.payrollRatio
	}

	eval, err := salary.Evaluate(occ, decimal.NewFromInt(req.ProposedSalary), salary.CompanyProfile{
		AnnualRevenue: decimal.NewFromInt(req.AnnualRevenue),
		Employees:     req.Employees,
		PayrollRatio:  ratio,
	})
	if err != nil {
		s.errorResponse(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.metrics.evaluationsTotal.WithLabelValues(string(eval.Verdict)).Inc()

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"evaluation":           eval,
		"proposed_salary":      req.ProposedSalary,
		"proposed_formatted":   salary.FormatUSD(decimal.NewFromInt(req.ProposedSalary)),
		"budget_cap_formatted": salary.FormatUSD(eval.BudgetCap),
	})
}

// ---------------------------------------------------------------------
// Occupation Reads
// ---------------------------------------------------------------------

func (s *Server) handleGetOccupation(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	occ, ok := s.matcher.Lookup(code)
	if !ok {
		s.errorResponse(w, http.StatusNotFound, "Occupation not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, occ)
}

func (s *Server) handleDataset(w http.ResponseWriter, _ *http.Request) {
	occupations, entries := s.matcher.Size()

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"version":       s.dataset.Version,
		"generated_at":  s.dataset.GeneratedAt,
		"occupations":   occupations,
		"index_entries": entries,
	})
}
