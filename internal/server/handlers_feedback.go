package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/jobeval/jobeval/internal/db"
	"github.com/jobeval/jobeval/internal/feedback"
)

// ---------------------------------------------------------------------
// Feedback Handler
// ---------------------------------------------------------------------

const forwardTimeout = 15 * time.Second

type FeedbackRequest struct {
	Category string `json:"category" validate:"required,oneof=bug idea data other"`
	Message  string `json:"message" validate:"required,min=3,max=4000"`
	Email    string `json:"email" validate:"omitempty,email"`
	Page     string `json:"page" validate:"omitempty,max=200"`
}

// handleFeedback stores the submission and forwards it to the issue
// tracker. The stored row is the source of truth; a tracker outage must
// not lose feedback, so forwarding failures still return 202.
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	id, err := s.feedback.SaveFeedback(r.Context(), db.FeedbackRecord{
		Category: req.Category,
		Message:  req.Message,
		Email:    req.Email,
		Page:     req.Page,
	})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	response := map[string]any{
		"id":     id.String(),
		"status": "accepted",
	}

	if s.forwarder != nil {
		ctx, cancel := context.WithTimeout(context.Background(), forwardTimeout)
		defer cancel()

		issue, err := s.forwarder.Forward(ctx, feedback.Submission{
			Category: req.Category,
			Message:  req.Message,
			Email:    req.Email,
			Page:     req.Page,
		})
		if err != nil {
			log.Printf("[feedback] forwarding failed for %s: %v", id, err)
			s.metrics.feedbackTotal.WithLabelValues("stored_only").Inc()
		} else {
			if err := s.feedback.MarkFeedbackForwarded(r.Context(), id, issue.HTMLURL); err != nil {
				log.Printf("[feedback] failed to record issue url for %s: %v", id, err)
			}
			response["issue_url"] = issue.HTMLURL
			s.metrics.feedbackTotal.WithLabelValues("forwarded").Inc()
		}
	} else {
		s.metrics.feedbackTotal.WithLabelValues("stored_only").Inc()
	}

	s.jsonResponse(w, http.StatusAccepted, response)
}
