package database

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// --- Review Queries ---
//
// Review moderation is a tri-state: is_approved is NULL while a review waits
// in the queue, and true/false once an admin has decided. "Pending" always
// means exactly the NULL rows; rejected reviews are not pending.

func (s *Service) CreateReview(ctx context.Context, db DBorTx, review *Review) (*Review, error) {
	if review.Rating < 1 || review.Rating > 5 {
		return nil, &ValidationError{Field: "rating", Reason: "must be between 1 and 5"}
	}
	// Anonymous reviews are allowed: both ids are optional.
	if err := ValidateOptionalID("user id", review.UserID.String); err != nil {
		return nil, err
	}
	if err := ValidateOptionalID("project id", review.ProjectID.String); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	// is_approved is deliberately left out of the INSERT so it defaults to
	// NULL: every new review enters the moderation queue.
	query := `INSERT INTO reviews (id, user_id, project_id, rating, comment) VALUES (?, ?, ?, ?, ?);`
	if _, err := db.ExecContext(ctx, query, id, review.UserID, review.ProjectID, review.Rating, review.Comment); err != nil {
		return nil, classify(err)
	}
	return s.GetReviewByID(ctx, db, id)
}

func (s *Service) GetReviewByID(ctx context.Context, db DBorTx, id string) (*Review, error) {
	if err := ValidateID("review id", id); err != nil {
		return nil, err
	}
	query := `SELECT id, user_id, project_id, rating, comment, is_approved, created_at FROM reviews WHERE id = ?;`
	r := &Review{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&r.ID, &r.UserID, &r.ProjectID, &r.Rating, &r.Comment, &r.IsApproved, &r.CreatedAt)
	if err != nil {
		return nil, classify(err)
	}
	return r, nil
}

// ListReviews returns one page of reviews, newest first, narrowed by
// moderation state: "pending", "approved", "rejected", or "" / "all".
func (s *Service) ListReviews(ctx context.Context, db DBorTx, state, projectID string, limit, offset int) ([]*Review, int, error) {
	var conds []string
	var args []interface{}

	switch state {
	case "", "all":
	case "pending":
		conds = append(conds, "is_approved IS NULL")
	case "approved":
		conds = append(conds, "is_approved = 1")
	case "rejected":
		conds = append(conds, "is_approved = 0")
	default:
		return nil, 0, &ValidationError{Field: "state", Reason: "unknown moderation state " + state}
	}
	if projectID != "" {
		if err := ValidateID("project id", projectID); err != nil {
			return nil, 0, err
		}
		conds = append(conds, "project_id = ?")
		args = append(args, projectID)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews`+where+`;`, args...).Scan(&total); err != nil {
		return nil, 0, classify(err)
	}

	query := `SELECT id, user_id, project_id, rating, comment, is_approved, created_at
			  FROM reviews` + where + ` ORDER BY created_at DESC LIMIT ? OFFSET ?;`
	rows, err := db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, classify(err)
	}
	defer rows.Close()

	var reviews []*Review
	for rows.Next() {
		r := &Review{}
		if err := rows.Scan(&r.ID, &r.UserID, &r.ProjectID, &r.Rating, &r.Comment, &r.IsApproved, &r.CreatedAt); err != nil {
			return nil, 0, classify(err)
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, classify(err)
	}
	return reviews, total, nil
}

// SetReviewApproval records a moderation decision. Repeating the same
// decision is a no-op, not an error.
func (s *Service) SetReviewApproval(ctx context.Context, db DBorTx, id string, approved bool) error {
	if err := ValidateID("review id", id); err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `UPDATE reviews SET is_approved = ? WHERE id = ?;`, approved, id)
	if err != nil {
		return classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// PendingReviewCount counts exactly the NULL approvals. Rejected (false)
// reviews are excluded: they have been decided.
func (s *Service) PendingReviewCount(ctx context.Context, db DBorTx) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews WHERE is_approved IS NULL;`).Scan(&count)
	if err != nil {
		return 0, classify(err)
	}
	return count, nil
}

// RatingSummaries fetches average rating and review count for a page of
// projects in one IN(...) query, instead of one lookup per row. Only approved
// reviews count toward the public rating.
func (s *Service) RatingSummaries(ctx context.Context, db DBorTx, projectIDs []string) (map[string]RatingSummary, error) {
	summaries := make(map[string]RatingSummary)
	if len(projectIDs) == 0 {
		return summaries, nil
	}

	args := make([]interface{}, 0, len(projectIDs))
	for _, id := range projectIDs {
		if err := ValidateID("project id", id); err != nil {
			return nil, err
		}
		args = append(args, id)
	}

	query := `SELECT project_id, AVG(rating), COUNT(*) FROM reviews
			  WHERE is_approved = 1 AND project_id IN (?` + strings.Repeat(",?", len(args)-1) + `)
			  GROUP BY project_id;`
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	for rows.Next() {
		var sum RatingSummary
		if err := rows.Scan(&sum.ProjectID, &sum.Average, &sum.Count); err != nil {
			return nil, classify(err)
		}
		summaries[sum.ProjectID] = sum
	}
	return summaries, classify(rows.Err())
}
