package database

import (
	"context"
	"time"
)

// --- Dashboard Aggregation Queries ---
//
// Each stats method is an independent point-in-time snapshot of one table.
// The dashboard handler fans them out and tolerates individual failures, so
// none of these methods depend on any other.

// sqlite stores CURRENT_TIMESTAMP as UTC 'YYYY-MM-DD HH:MM:SS'.
const sqliteTimeLayout = "2006-01-02 15:04:05"

func rollingWindow(d time.Duration) string {
	return time.Now().UTC().Add(-d).Format(sqliteTimeLayout)
}

// CollectionStats summarizes one collection table for the dashboard.
type CollectionStats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Featured  int `json:"featured"`
	ThisMonth int `json:"thisMonth"`
}

func (s *Service) GetCollectionStats(ctx context.Context, db DBorTx, table string) (*CollectionStats, error) {
	if err := checkCollectionTable(table); err != nil {
		return nil, err
	}
	stats := &CollectionStats{}
	// "Active" means the status flag is not explicitly inactive.
	query := `SELECT COUNT(*),
				COUNT(CASE WHEN status != 'inactive' THEN 1 END),
				COUNT(CASE WHEN featured = 1 THEN 1 END),
				COUNT(CASE WHEN created_at >= ? THEN 1 END)
			  FROM ` + table + `;`
	err := db.QueryRowContext(ctx, query, rollingWindow(30*24*time.Hour)).
		Scan(&stats.Total, &stats.Active, &stats.Featured, &stats.ThisMonth)
	if err != nil {
		return nil, classify(err)
	}
	return stats, nil
}

// ReviewStats summarizes the moderation queue.
type ReviewStats struct {
	Total    int     `json:"total"`
	Pending  int     `json:"pending"`
	Approved int     `json:"approved"`
	Average  float64 `json:"average"` // Over approved reviews only
}

func (s *Service) GetReviewStats(ctx context.Context, db DBorTx) (*ReviewStats, error) {
	stats := &ReviewStats{}
	query := `SELECT COUNT(*),
				COUNT(CASE WHEN is_approved IS NULL THEN 1 END),
				COUNT(CASE WHEN is_approved = 1 THEN 1 END),
				COALESCE(AVG(CASE WHEN is_approved = 1 THEN rating END), 0)
			  FROM reviews;`
	err := db.QueryRowContext(ctx, query).
		Scan(&stats.Total, &stats.Pending, &stats.Approved, &stats.Average)
	if err != nil {
		return nil, classify(err)
	}
	return stats, nil
}

// MeetingStats summarizes meetings and their registrations.
type MeetingStats struct {
	Total                int `json:"total"`
	Upcoming             int `json:"upcoming"`
	Registrations        int `json:"registrations"`
	PendingRegistrations int `json:"pendingRegistrations"`
	ThisWeek             int `json:"thisWeek"` // Registrations created in the last 7 days
}

func (s *Service) GetMeetingStats(ctx context.Context, db DBorTx) (*MeetingStats, error) {
	stats := &MeetingStats{}
	today := time.Now().Format("2006-01-02")
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(CASE WHEN date >= ? THEN 1 END) FROM meetings;`, today).
		Scan(&stats.Total, &stats.Upcoming)
	if err != nil {
		return nil, classify(err)
	}
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*),
			COUNT(CASE WHEN status = 'pending' THEN 1 END),
			COUNT(CASE WHEN created_at >= ? THEN 1 END)
		 FROM meeting_registrations;`, rollingWindow(7*24*time.Hour)).
		Scan(&stats.Registrations, &stats.PendingRegistrations, &stats.ThisWeek)
	if err != nil {
		return nil, classify(err)
	}
	return stats, nil
}

// ContactStats summarizes the contact mailbox.
type ContactStats struct {
	Total    int `json:"total"`
	New      int `json:"new"`
	ThisWeek int `json:"thisWeek"`
}

func (s *Service) GetContactStats(ctx context.Context, db DBorTx) (*ContactStats, error) {
	stats := &ContactStats{}
	query := `SELECT COUNT(*),
				COUNT(CASE WHEN status = 'new' THEN 1 END),
				COUNT(CASE WHEN created_at >= ? THEN 1 END)
			  FROM contact_messages;`
	err := db.QueryRowContext(ctx, query, rollingWindow(7*24*time.Hour)).
		Scan(&stats.Total, &stats.New, &stats.ThisWeek)
	if err != nil {
		return nil, classify(err)
	}
	return stats, nil
}

// ProfileStats summarizes registered profiles.
type ProfileStats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	ThisMonth int `json:"thisMonth"`
}

func (s *Service) GetProfileStats(ctx context.Context, db DBorTx) (*ProfileStats, error) {
	stats := &ProfileStats{}
	query := `SELECT COUNT(*),
				COUNT(CASE WHEN is_active = 1 THEN 1 END),
				COUNT(CASE WHEN created_at >= ? THEN 1 END)
			  FROM profiles;`
	err := db.QueryRowContext(ctx, query, rollingWindow(30*24*time.Hour)).
		Scan(&stats.Total, &stats.Active, &stats.ThisMonth)
	if err != nil {
		return nil, classify(err)
	}
	return stats, nil
}
