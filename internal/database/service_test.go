package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestService opens a throwaway database with the full schema applied.
func newTestService(t *testing.T) *Service {
	t.Helper()

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	svc, err := NewService(filepath.Join(t.TempDir(), "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(svc.Close)

	require.NoError(t, svc.InitSchema())
	return svc
}

func TestInitSchemaIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	// A second run must be a no-op, not an error.
	require.NoError(t, svc.InitSchema())
}

func TestUserLifecycle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	var user *User
	err := svc.Write(func(tx *sql.Tx) error {
		var err error
		user, err = svc.CreateUser(ctx, tx, "mara@example.com", "hashed", false)
		return err
	})
	require.NoError(t, err)
	assert.True(t, user.PasswordHash.Valid)

	found, err := svc.GetUserByEmail(ctx, svc.DB(), "mara@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = svc.GetUserByEmail(ctx, svc.DB(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	// OAuth-only account stores NULL, not an empty string.
	err = svc.Write(func(tx *sql.Tx) error {
		oauthUser, err := svc.CreateUser(ctx, tx, "oauth@example.com", "", false)
		if err != nil {
			return err
		}
		assert.False(t, oauthUser.PasswordHash.Valid)
		return nil
	})
	require.NoError(t, err)
}

func TestProfileLazyCreationAndPartialUpdate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	var user *User
	require.NoError(t, svc.Write(func(tx *sql.Tx) error {
		var err error
		user, err = svc.CreateUser(ctx, tx, "pieter@example.com", "hash", false)
		return err
	}))

	// No profile yet: an expected state for a fresh account.
	_, err := svc.GetProfileByUserID(ctx, svc.DB(), user.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Write(func(tx *sql.Tx) error {
		_, err := svc.CreateProfile(ctx, tx, user.ID, "Pieter de Vries", "pieter")
		return err
	}))

	phone := "+31 6 1234 5678"
	require.NoError(t, svc.Write(func(tx *sql.Tx) error {
		return svc.UpdateProfile(ctx, tx, user.ID, ProfileUpdate{Phone: &phone})
	}))

	profile, err := svc.GetProfileByUserID(ctx, svc.DB(), user.ID)
	require.NoError(t, err)
	// Untouched fields survive the partial update.
	assert.Equal(t, "Pieter de Vries", profile.FullName)
	assert.Equal(t, "pieter", profile.Username)
	require.True(t, profile.Phone.Valid)
	assert.Equal(t, phone, profile.Phone.String)
	assert.True(t, profile.IsActive)
}

func createTestProject(t *testing.T, svc *Service, title, category string, featured bool) *Project {
	t.Helper()
	var created *Project
	require.NoError(t, svc.Write(func(tx *sql.Tx) error {
		var err error
		created, err = svc.CreateCollectionItem(context.Background(), tx, TableProjects, &Project{
			Title:       title,
			Description: "steel and glass",
			Category:    category,
			Featured:    featured,
		})
		return err
	}))
	return created
}

func TestCollectionFilters(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	createTestProject(t, svc, "Canal House Facade", CategoryResidential, true)
	createTestProject(t, svc, "Warehouse Partition", CategoryCommercial, false)
	createTestProject(t, svc, "Atrium Roof", CategoryCommercial, false)

	all, total, err := svc.ListCollection(ctx, svc.DB(), TableProjects, CollectionFilter{}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, all, 3)

	// The UI's conventional "all" means no category narrowing.
	_, total, err = svc.ListCollection(ctx, svc.DB(), TableProjects, CollectionFilter{Category: "all"}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	commercial, total, err := svc.ListCollection(ctx, svc.DB(), TableProjects, CollectionFilter{Category: CategoryCommercial}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, commercial, 2)

	_, _, err = svc.ListCollection(ctx, svc.DB(), TableProjects, CollectionFilter{Category: "bogus"}, 10, 0)
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)

	featured, total, err := svc.ListCollection(ctx, svc.DB(), TableProjects, CollectionFilter{FeaturedOnly: true}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, featured, 1)
	assert.Equal(t, "Canal House Facade", featured[0].Title)

	// Substring search across title, description, and category.
	matches, total, err := svc.ListCollection(ctx, svc.DB(), TableProjects, CollectionFilter{Search: "house"}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, matches, 1)
	assert.Equal(t, "Canal House Facade", matches[0].Title)

	// The total count honors the filter so page math stays exact.
	page, total, err := svc.ListCollection(ctx, svc.DB(), TableProjects, CollectionFilter{Category: CategoryCommercial}, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, page, 1)
}

func TestCollectionUpdateAndFeatured(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	item := createTestProject(t, svc, "Loft Stairs", CategoryCustom, false)

	newTitle := "Loft Staircase"
	require.NoError(t, svc.Write(func(tx *sql.Tx) error {
		return svc.UpdateCollectionItem(ctx, tx, TableProjects, item.ID, CollectionUpdate{
			Title:  &newTitle,
			Images: []string{"https://cdn.example.com/stairs.jpg"},
		})
	}))

	updated, err := svc.GetCollectionItem(ctx, svc.DB(), TableProjects, item.ID)
	require.NoError(t, err)
	assert.Equal(t, newTitle, updated.Title)
	assert.Equal(t, CategoryCustom, updated.Category) // untouched
	assert.Equal(t, []string{"https://cdn.example.com/stairs.jpg"}, updated.Images)

	require.NoError(t, svc.Write(func(tx *sql.Tx) error {
		return svc.SetCollectionFeatured(ctx, tx, TableProjects, item.ID, true)
	}))
	updated, err = svc.GetCollectionItem(ctx, svc.DB(), TableProjects, item.ID)
	require.NoError(t, err)
	assert.True(t, updated.Featured)

	require.NoError(t, svc.Write(func(tx *sql.Tx) error {
		return svc.DeleteCollectionItem(ctx, tx, TableProjects, item.ID)
	}))
	_, err = svc.GetCollectionItem(ctx, svc.DB(), TableProjects, item.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReviewModerationTriState(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	var review *Review
	require.NoError(t, svc.Write(func(tx *sql.Tx) error {
		var err error
		review, err = svc.CreateReview(ctx, tx, &Review{Rating: 5, Comment: "beautiful work"})
		return err
	}))

	// New reviews are pending: is_approved is NULL, not false.
	assert.False(t, review.IsApproved.Valid)
	assert.Equal(t, "pending", review.ApprovalState())

	pending, err := svc.PendingReviewCount(ctx, svc.DB())
	require.NoError(t, err)
	assert.Equal(t, 1, pending)

	require.NoError(t, svc.Write(func(tx *sql.Tx) error {
		return svc.SetReviewApproval(ctx, tx, review.ID, false)
	}))
	rejected, err := svc.GetReviewByID(ctx, svc.DB(), review.ID)
	require.NoError(t, err)
	assert.Equal(t, "rejected", rejected.ApprovalState())

	// Rejected is decided, not pending.
	pending, err = svc.PendingReviewCount(ctx, svc.DB())
	require.NoError(t, err)
	assert.Equal(t, 0, pending)

	// Repeating a decision is a no-op, not an error.
	require.NoError(t, svc.Write(func(tx *sql.Tx) error {
		return svc.SetReviewApproval(ctx, tx, review.ID, false)
	}))

	require.NoError(t, svc.Write(func(tx *sql.Tx) error {
		return svc.SetReviewApproval(ctx, tx, review.ID, true)
	}))
	approved, err := svc.GetReviewByID(ctx, svc.DB(), review.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.ApprovalState())
}

func TestReviewRatingBounds(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, rating := range []int{0, 6, -1} {
		err := svc.Write(func(tx *sql.Tx) error {
			_, err := svc.CreateReview(ctx, tx, &Review{Rating: rating, Comment: "x"})
			return err
		})
		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr, "rating %d", rating)
	}
}

func TestListReviewsByState(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	var first, second *Review
	require.NoError(t, svc.Write(func(tx *sql.Tx) error {
		var err error
		if first, err = svc.CreateReview(ctx, tx, &Review{Rating: 4, Comment: "solid"}); err != nil {
			return err
		}
		second, err = svc.CreateReview(ctx, tx, &Review{Rating: 2, Comment: "late delivery"})
		return err
	}))
	require.NoError(t, svc.Write(func(tx *sql.Tx) error {
		return svc.SetReviewApproval(ctx, tx, first.ID, true)
	}))

	approved, total, err := svc.ListReviews(ctx, svc.DB(), "approved", "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, approved, 1)
	assert.Equal(t, first.ID, approved[0].ID)

	pendingList, total, err := svc.ListReviews(ctx, svc.DB(), "pending", "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, pendingList, 1)
	assert.Equal(t, second.ID, pendingList[0].ID)

	_, total, err = svc.ListReviews(ctx, svc.DB(), "all", "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	_, _, err = svc.ListReviews(ctx, svc.DB(), "maybe", "", 10, 0)
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestRatingSummariesBatch(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	rated := createTestProject(t, svc, "Glass Pavilion", CategoryCommercial, false)
	unrated := createTestProject(t, svc, "Steel Gate", CategoryCustom, false)

	addReview := func(rating int, approve bool) {
		require.NoError(t, svc.Write(func(tx *sql.Tx) error {
			r, err := svc.CreateReview(ctx, tx, &Review{
				ProjectID: sql.NullString{String: rated.ID, Valid: true},
				Rating:    rating,
				Comment:   "review",
			})
			if err != nil {
				return err
			}
			if approve {
				return svc.SetReviewApproval(ctx, tx, r.ID, true)
			}
			return nil
		}))
	}
	addReview(5, true)
	addReview(3, true)
	addReview(1, false) // pending, must not count toward the public rating

	summaries, err := svc.RatingSummaries(ctx, svc.DB(), []string{rated.ID, unrated.ID})
	require.NoError(t, err)

	require.Contains(t, summaries, rated.ID)
	assert.InDelta(t, 4.0, summaries[rated.ID].Average, 0.001)
	assert.Equal(t, 2, summaries[rated.ID].Count)
	assert.NotContains(t, summaries, unrated.ID)

	// Empty input short-circuits without touching the database.
	empty, err := svc.RatingSummaries(ctx, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func createTestMeeting(t *testing.T, svc *Service, spots int) *Meeting {
	t.Helper()
	var meeting *Meeting
	require.NoError(t, svc.Write(func(tx *sql.Tx) error {
		var err error
		meeting, err = svc.CreateMeeting(context.Background(), tx, &Meeting{
			Title:    "Open Workshop Evening",
			Date:     "2030-06-15",
			Time:     "19:00",
			Location: "The Workshop",
			Spots:    spots,
		})
		return err
	}))
	return meeting
}

func TestMeetingCapacity(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	meeting := createTestMeeting(t, svc, 1)

	register := func(name string) (*Registration, error) {
		var reg *Registration
		err := svc.Write(func(tx *sql.Tx) error {
			var err error
			reg, err = svc.CreateRegistration(ctx, tx, &Registration{
				MeetingID: sql.NullString{String: meeting.ID, Valid: true},
				Name:      name,
				Email:     name + "@example.com",
			})
			return err
		})
		return reg, err
	}

	first, err := register("anna")
	require.NoError(t, err)
	assert.Equal(t, RegistrationPending, first.Status)

	// Pending registrations do not consume capacity.
	_, err = register("ben")
	require.NoError(t, err)

	require.NoError(t, svc.Write(func(tx *sql.Tx) error {
		return svc.SetRegistrationStatus(ctx, tx, first.ID, RegistrationApproved)
	}))

	// The single spot is now taken: the next attempt hits the capacity error.
	_, err = register("carla")
	var capacityErr *CapacityError
	require.ErrorAs(t, err, &capacityErr)
	assert.Equal(t, meeting.ID, capacityErr.MeetingID)
	assert.Equal(t, 1, capacityErr.Spots)

	got, err := svc.GetMeetingByID(ctx, svc.DB(), meeting.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ApprovedCount)
}

func TestRegistrationExactlyOneTarget(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	meeting := createTestMeeting(t, svc, 5)
	project := createTestProject(t, svc, "Bridge Railing", CategoryIndustrial, false)

	// Neither target set.
	err := svc.Write(func(tx *sql.Tx) error {
		_, err := svc.CreateRegistration(ctx, tx, &Registration{Name: "dana", Email: "dana@example.com"})
		return err
	})
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)

	// Both targets set.
	err = svc.Write(func(tx *sql.Tx) error {
		_, err := svc.CreateRegistration(ctx, tx, &Registration{
			MeetingID: sql.NullString{String: meeting.ID, Valid: true},
			ProjectID: sql.NullString{String: project.ID, Valid: true},
			Name:      "dana",
			Email:     "dana@example.com",
		})
		return err
	})
	assert.ErrorAs(t, err, &validationErr)

	// A consultation request targets only the project.
	require.NoError(t, svc.Write(func(tx *sql.Tx) error {
		reg, err := svc.CreateRegistration(ctx, tx, &Registration{
			ProjectID: sql.NullString{String: project.ID, Valid: true},
			Name:      "dana",
			Email:     "dana@example.com",
		})
		if err != nil {
			return err
		}
		assert.False(t, reg.MeetingID.Valid)
		return nil
	}))
}

func TestContactStatusTransitionsAreIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	var msg *ContactMessage
	require.NoError(t, svc.Write(func(tx *sql.Tx) error {
		var err error
		msg, err = svc.CreateContactMessage(ctx, tx, "Eva", "eva@example.com", "Can you quote a stair railing?")
		return err
	}))
	assert.Equal(t, ContactNew, msg.Status)

	archive := func() error {
		return svc.Write(func(tx *sql.Tx) error {
			return svc.SetContactMessageStatus(ctx, tx, msg.ID, ContactArchived)
		})
	}
	require.NoError(t, archive())
	// Archiving an archived message succeeds and leaves it archived.
	require.NoError(t, archive())

	got, err := svc.GetContactMessageByID(ctx, svc.DB(), msg.ID)
	require.NoError(t, err)
	assert.Equal(t, ContactArchived, got.Status)

	err = svc.Write(func(tx *sql.Tx) error {
		return svc.SetContactMessageStatus(ctx, tx, msg.ID, "deleted")
	})
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestNotificationsReadIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	var n *Notification
	require.NoError(t, svc.Write(func(tx *sql.Tx) error {
		var err error
		n, err = svc.CreateNotification(ctx, tx, "contact", "New contact message", "Eva sent a message.")
		return err
	}))
	assert.False(t, n.IsRead)

	unread, err := svc.UnreadNotificationCount(ctx, svc.DB())
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	markRead := func() error {
		return svc.Write(func(tx *sql.Tx) error {
			return svc.MarkNotificationRead(ctx, tx, n.ID)
		})
	}
	require.NoError(t, markRead())
	require.NoError(t, markRead())

	unread, err = svc.UnreadNotificationCount(ctx, svc.DB())
	require.NoError(t, err)
	assert.Equal(t, 0, unread)

	onlyUnread, total, err := svc.ListNotifications(ctx, svc.DB(), true, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, onlyUnread)
}
