package database

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionStats(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	createTestProject(t, svc, "Canal House Facade", CategoryResidential, true)
	second := createTestProject(t, svc, "Warehouse Partition", CategoryCommercial, false)

	inactive := "inactive"
	require.NoError(t, svc.Write(func(tx *sql.Tx) error {
		return svc.UpdateCollectionItem(ctx, tx, TableProjects, second.ID, CollectionUpdate{Status: &inactive})
	}))

	stats, err := svc.GetCollectionStats(ctx, svc.DB(), TableProjects)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Active)
	assert.Equal(t, 1, stats.Featured)
	assert.Equal(t, 2, stats.ThisMonth)

	_, err = svc.GetCollectionStats(ctx, svc.DB(), "meetings")
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestReviewStats(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	var approved *Review
	require.NoError(t, svc.Write(func(tx *sql.Tx) error {
		var err error
		if approved, err = svc.CreateReview(ctx, tx, &Review{Rating: 4, Comment: "good"}); err != nil {
			return err
		}
		if _, err = svc.CreateReview(ctx, tx, &Review{Rating: 1, Comment: "meh"}); err != nil {
			return err
		}
		return svc.SetReviewApproval(ctx, tx, approved.ID, true)
	}))

	stats, err := svc.GetReviewStats(ctx, svc.DB())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 1, stats.Approved)
	// The average covers approved reviews only; the pending 1-star is excluded.
	assert.InDelta(t, 4.0, stats.Average, 0.001)
}

func TestMeetingStats(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	meeting := createTestMeeting(t, svc, 10)
	require.NoError(t, svc.Write(func(tx *sql.Tx) error {
		_, err := svc.CreateRegistration(ctx, tx, &Registration{
			MeetingID: sql.NullString{String: meeting.ID, Valid: true},
			Name:      "frank",
			Email:     "frank@example.com",
		})
		return err
	}))

	stats, err := svc.GetMeetingStats(ctx, svc.DB())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Upcoming)
	assert.Equal(t, 1, stats.Registrations)
	assert.Equal(t, 1, stats.PendingRegistrations)
	assert.Equal(t, 1, stats.ThisWeek)
}

// Each stats snapshot must stand alone: one broken table takes out its own
// section and nothing else. That independence is what lets the dashboard
// tolerate partial failure.
func TestStatsSectionsAreIndependent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	createTestProject(t, svc, "Atrium Roof", CategoryCommercial, false)

	require.NoError(t, svc.Write(func(tx *sql.Tx) error {
		_, err := tx.Exec(`DROP TABLE gallery;`)
		return err
	}))

	_, err := svc.GetCollectionStats(ctx, svc.DB(), TableGallery)
	var columnErr *ColumnError
	assert.ErrorAs(t, err, &columnErr)

	// Every other snapshot still works.
	projectStats, err := svc.GetCollectionStats(ctx, svc.DB(), TableProjects)
	require.NoError(t, err)
	assert.Equal(t, 1, projectStats.Total)

	_, err = svc.GetReviewStats(ctx, svc.DB())
	assert.NoError(t, err)
	_, err = svc.GetMeetingStats(ctx, svc.DB())
	assert.NoError(t, err)
	_, err = svc.GetContactStats(ctx, svc.DB())
	assert.NoError(t, err)
	_, err = svc.GetProfileStats(ctx, svc.DB())
	assert.NoError(t, err)
}
