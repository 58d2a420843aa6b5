package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vitraforge/atelier/internal/database"
	"github.com/vitraforge/atelier/internal/pagination"
	"github.com/vitraforge/atelier/internal/realtime"
)

type createReviewPayload struct {
	ProjectID string `json:"projectId"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// handleListApprovedReviews returns one public page of approved reviews,
// optionally narrowed to a single project.
func (s *Server) handleListApprovedReviews(w http.ResponseWriter, r *http.Request) {
	view := listQuery(r, pagination.DefaultPageSize)

	reviews, total, err := s.db.ListReviews(r.Context(), s.db.DB(),
		"approved", r.URL.Query().Get("projectId"), view.PageSize(), view.Offset())
	if err != nil {
		s.storeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{
		"reviews":    toReviewResponseList(reviews),
		"pagination": pagination.NewMeta(view.Page(), view.PageSize(), total),
	})
}

// handleCreateReview accepts a public review submission. New reviews always
// enter the moderation queue; they never appear on the site until approved.
func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	var payload createReviewPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.errorJSON(w, errors.New("bad request: could not decode JSON"), http.StatusBadRequest)
		return
	}

	review := &database.Review{
		Rating:  payload.Rating,
		Comment: payload.Comment,
	}
	if payload.ProjectID != "" {
		review.ProjectID = sql.NullString{String: payload.ProjectID, Valid: true}
	}
	// Logged-in submitters get attributed; the endpoint stays open to anonymous
	// visitors, so a missing user id is fine.
	if userID, err := s.getUserIDFromContext(r); err == nil && userID != "" {
		review.UserID = sql.NullString{String: userID, Valid: true}
	}

	var created *database.Review
	err := s.db.Write(func(tx *sql.Tx) error {
		var createErr error
		created, createErr = s.db.CreateReview(r.Context(), tx, review)
		if createErr != nil {
			return createErr
		}
		_, notifyErr := s.db.CreateNotification(r.Context(), tx, "review",
			"New review awaiting moderation",
			fmt.Sprintf("A %d-star review was submitted.", created.Rating))
		return notifyErr
	})
	if err != nil {
		s.storeError(w, err)
		return
	}

	s.broker.Broadcast(realtime.Message{Type: "review", Payload: toReviewResponse(created)})
	s.writeJSON(w, http.StatusCreated, envelope{"review": toReviewResponse(created)})
}

// handleListReviews is the admin moderation queue. The filter query parameter
// selects the moderation state: all, pending, approved, or rejected.
func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	view := listQuery(r, pagination.AdminPageSize)

	reviews, total, err := s.db.ListReviews(r.Context(), s.db.DB(),
		view.Filter(), r.URL.Query().Get("projectId"), view.PageSize(), view.Offset())
	if err != nil {
		s.storeError(w, err)
		return
	}

	pending, err := s.db.PendingReviewCount(r.Context(), s.db.DB())
	if err != nil {
		s.storeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, envelope{
		"reviews":      toReviewResponseList(reviews),
		"pendingCount": pending,
		"pagination":   pagination.NewMeta(view.Page(), view.PageSize(), total),
	})
}

func (s *Server) handleApproveReview(w http.ResponseWriter, r *http.Request) {
	s.setReviewApproval(w, r, true)
}

func (s *Server) handleRejectReview(w http.ResponseWriter, r *http.Request) {
	s.setReviewApproval(w, r, false)
}

// setReviewApproval records a moderation decision. Repeating a decision is a
// no-op that still returns the review, so double-clicks in the admin UI are
// harmless.
func (s *Server) setReviewApproval(w http.ResponseWriter, r *http.Request, approved bool) {
	reviewID := chi.URLParam(r, "reviewID")

	err := s.db.Write(func(tx *sql.Tx) error {
		return s.db.SetReviewApproval(r.Context(), tx, reviewID, approved)
	})
	if err != nil {
		s.storeError(w, err)
		return
	}

	review, err := s.db.GetReviewByID(r.Context(), s.db.DB(), reviewID)
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, envelope{"review": toReviewResponse(review)})
}
